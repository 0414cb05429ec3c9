package geospatial

// Planar segment predicates used for polygon validation. Shapes drawn on a
// slippy map are small enough that treating lon/lat as planar x/y is fine;
// the edge cases that matter (shared endpoints, collinear overlap) are
// handled exactly.

// orientation returns 0 for collinear points, 1 for clockwise, 2 for
// counter-clockwise.
func orientation(px, py, qx, qy, rx, ry float64) int {
	val := (qy-py)*(rx-qx) - (qx-px)*(ry-qy)
	switch {
	case val == 0:
		return 0
	case val > 0:
		return 1
	default:
		return 2
	}
}

// onSegment reports whether point q lies on segment pr, assuming the three
// points are collinear.
func onSegment(px, py, qx, qy, rx, ry float64) bool {
	return qx <= max(px, rx) && qx >= min(px, rx) &&
		qy <= max(py, ry) && qy >= min(py, ry)
}

// SegmentsIntersect reports whether segment (x1,y1)-(x2,y2) intersects
// segment (x3,y3)-(x4,y4), including collinear overlap.
func SegmentsIntersect(x1, y1, x2, y2, x3, y3, x4, y4 float64) bool {
	o1 := orientation(x1, y1, x2, y2, x3, y3)
	o2 := orientation(x1, y1, x2, y2, x4, y4)
	o3 := orientation(x3, y3, x4, y4, x1, y1)
	o4 := orientation(x3, y3, x4, y4, x2, y2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear cases
	if o1 == 0 && onSegment(x1, y1, x3, y3, x2, y2) {
		return true
	}
	if o2 == 0 && onSegment(x1, y1, x4, y4, x2, y2) {
		return true
	}
	if o3 == 0 && onSegment(x3, y3, x1, y1, x4, y4) {
		return true
	}
	if o4 == 0 && onSegment(x3, y3, x2, y2, x4, y4) {
		return true
	}
	return false
}

// RingSelfIntersects reports whether the closed ring formed by vertices
// (given as lon/lat pairs, not repeating the first point) crosses itself.
// Adjacent edges sharing an endpoint are not counted as intersections.
func RingSelfIntersects(ring [][2]float64) bool {
	n := len(ring)
	if n < 4 {
		// A triangle cannot self-intersect.
		return false
	}
	for i := 0; i < n; i++ {
		a1 := ring[i]
		a2 := ring[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip the edge itself and the two adjacent edges.
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1 := ring[j]
			b2 := ring[(j+1)%n]
			if SegmentsIntersect(a1[0], a1[1], a2[0], a2[1], b1[0], b1[1], b2[0], b2[1]) {
				return true
			}
		}
	}
	return false
}

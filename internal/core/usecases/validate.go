package usecases

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/pkg/geospatial"
)

// MaxVertices caps how many vertices a single shape may carry. Freehand
// drawing tools simplify before submitting, so this is generous.
const MaxVertices = 10000

// ValidateShape checks shape geometry: vertex counts per type, coordinate
// ranges, vertex distinctness, and polygon self-intersection. It returns a
// *domain.ValidationError describing the first problem found.
func ValidateShape(s *domain.Shape) error {
	if s == nil {
		return domain.Invalidf("shape", "missing payload")
	}
	if !s.Type.Known() {
		return domain.Invalidf("type", "unknown shape type %q", s.Type)
	}
	if n := len(s.Vertices); n < s.Type.MinVertices() {
		return domain.Invalidf("vertices", "%s requires at least %d vertices, got %d", s.Type, s.Type.MinVertices(), n)
	}
	if len(s.Vertices) > MaxVertices {
		return domain.Invalidf("vertices", "too many vertices (%d, max %d)", len(s.Vertices), MaxVertices)
	}
	if s.Type == domain.ShapePoint && len(s.Vertices) != 1 {
		return domain.Invalidf("vertices", "point must have exactly 1 vertex, got %d", len(s.Vertices))
	}

	for i, p := range s.Vertices {
		if !p.Valid() {
			return domain.Invalidf("vertices", "vertex %d out of range: lat=%v lon=%v", i, p.Lat, p.Lon)
		}
	}

	// Zero-length segments break both rendering and intersection tests.
	for i := 1; i < len(s.Vertices); i++ {
		if s.Vertices[i] == s.Vertices[i-1] {
			return domain.Invalidf("vertices", "consecutive duplicate vertex at index %d", i)
		}
	}

	if s.Type == domain.ShapePolygon {
		return validatePolygon(s.Vertices)
	}
	return nil
}

func validatePolygon(vertices []domain.GeoPoint) error {
	// The ring is stored open; a payload that repeats the first vertex at
	// the end is a client-side closing artifact and rejected as such.
	if len(vertices) > 1 && vertices[0] == vertices[len(vertices)-1] {
		return domain.Invalidf("vertices", "polygon ring must not repeat the first vertex")
	}

	distinct := mapset.NewThreadUnsafeSet[domain.GeoPoint]()
	for _, p := range vertices {
		distinct.Add(p)
	}
	if distinct.Cardinality() < 3 {
		return domain.Invalidf("vertices", "polygon requires at least 3 distinct vertices, got %d", distinct.Cardinality())
	}
	if distinct.Cardinality() != len(vertices) {
		return domain.Invalidf("vertices", "polygon vertices must be distinct")
	}

	ring := make([][2]float64, len(vertices))
	for i, p := range vertices {
		ring[i] = [2]float64{p.Lon, p.Lat}
	}
	if geospatial.RingSelfIntersects(ring) {
		return domain.Invalidf("vertices", "polygon ring is self-intersecting")
	}
	return nil
}

// validateOperation checks the operation envelope before touching geometry.
func validateOperation(op domain.EditOperation) error {
	switch op.Kind {
	case domain.OpCreate, domain.OpUpdate:
		if op.Shape == nil {
			return domain.Invalidf("shape", "%s operation requires a shape payload", op.Kind)
		}
		if op.ShapeID == "" {
			return domain.Invalidf("shape_id", "missing target shape id")
		}
		if op.Shape.ID != "" && op.Shape.ID != op.ShapeID {
			return domain.Invalidf("shape_id", "payload id %q does not match target %q", op.Shape.ID, op.ShapeID)
		}
	case domain.OpDelete:
		if op.ShapeID == "" {
			return domain.Invalidf("shape_id", "missing target shape id")
		}
	default:
		return domain.Invalidf("kind", "unknown operation kind %q", op.Kind)
	}
	return nil
}

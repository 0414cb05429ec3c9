package domain

import (
	"time"
)

// ShapeType identifies the geometry kind of a drawn shape.
type ShapeType string

const (
	ShapePoint   ShapeType = "point"
	ShapeLine    ShapeType = "line"
	ShapePolygon ShapeType = "polygon"
)

// Known reports whether t is one of the supported geometry kinds.
func (t ShapeType) Known() bool {
	switch t {
	case ShapePoint, ShapeLine, ShapePolygon:
		return true
	}
	return false
}

// MinVertices returns the minimum vertex count required for the type.
func (t ShapeType) MinVertices() int {
	switch t {
	case ShapePoint:
		return 1
	case ShapeLine:
		return 2
	case ShapePolygon:
		return 3
	}
	return 0
}

// Shape is a drawn geometric entity on a board.
type Shape struct {
	ID        string         `json:"id"`
	BoardID   string         `json:"board_id"`
	Type      ShapeType      `json:"type"`
	Vertices  []GeoPoint     `json:"vertices"`
	Version   uint64         `json:"version"`
	Style     map[string]any `json:"style,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a deep copy so callers can hold a shape without aliasing
// the store's instance.
func (s *Shape) Clone() *Shape {
	cp := *s
	cp.Vertices = make([]GeoPoint, len(s.Vertices))
	copy(cp.Vertices, s.Vertices)
	if s.Style != nil {
		cp.Style = make(map[string]any, len(s.Style))
		for k, v := range s.Style {
			cp.Style[k] = v
		}
	}
	return &cp
}

// BoundingBox returns the bounds covering all vertices.
func (s *Shape) BoundingBox() Bounds {
	if len(s.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLat: s.Vertices[0].Lat, MaxLat: s.Vertices[0].Lat,
		MinLon: s.Vertices[0].Lon, MaxLon: s.Vertices[0].Lon,
	}
	for _, p := range s.Vertices[1:] {
		b.Extend(p)
	}
	return b
}

// Board groups shapes drawn in one editing context.
type Board struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerID    string    `json:"owner_id,omitempty"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ShapeCount int       `json:"shape_count,omitempty"` // computed field
}

// Snapshot is a point-in-time capture of a board's geometry, stored as GeoJSON.
type Snapshot struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	GeoJSON   []byte    `json:"geojson"`
	ShapeN    int       `json:"shape_count"`
	CreatedAt time.Time `json:"created_at"`
}

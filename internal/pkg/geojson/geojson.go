// Package geojson encodes board geometry as GeoJSON (RFC 7946) for
// snapshots and exports.
package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/samirrijal/geosketch/internal/core/domain"
)

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Feature.
type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Properties map[string]any `json:"properties"`
	Geometry   Geometry       `json:"geometry"`
}

// Geometry is a GeoJSON Geometry object. Coordinates holds the raw
// positions in the nesting the geometry type requires.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// positions are GeoJSON [lon, lat] order.
func position(p domain.GeoPoint) [2]float64 {
	return [2]float64{p.Lon, p.Lat}
}

func geometryFor(s *domain.Shape) (Geometry, error) {
	switch s.Type {
	case domain.ShapePoint:
		raw, err := json.Marshal(position(s.Vertices[0]))
		return Geometry{Type: "Point", Coordinates: raw}, err

	case domain.ShapeLine:
		coords := make([][2]float64, len(s.Vertices))
		for i, v := range s.Vertices {
			coords[i] = position(v)
		}
		raw, err := json.Marshal(coords)
		return Geometry{Type: "LineString", Coordinates: raw}, err

	case domain.ShapePolygon:
		// Close the ring: first position repeated last.
		ring := make([][2]float64, 0, len(s.Vertices)+1)
		for _, v := range s.Vertices {
			ring = append(ring, position(v))
		}
		ring = append(ring, position(s.Vertices[0]))
		raw, err := json.Marshal([][][2]float64{ring})
		return Geometry{Type: "Polygon", Coordinates: raw}, err
	}
	return Geometry{}, fmt.Errorf("unsupported shape type %q", s.Type)
}

// EncodeGeometry renders a single shape's geometry object. The persistence
// layer feeds this to PostGIS (ST_GeomFromGeoJSON).
func EncodeGeometry(s *domain.Shape) ([]byte, error) {
	geom, err := geometryFor(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(geom)
}

// EncodeShapes renders shapes as a FeatureCollection document.
func EncodeShapes(shapes []*domain.Shape) ([]byte, error) {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(shapes))}
	for _, s := range shapes {
		if len(s.Vertices) == 0 {
			continue
		}
		geom, err := geometryFor(s)
		if err != nil {
			return nil, fmt.Errorf("shape %s: %w", s.ID, err)
		}
		props := map[string]any{
			"shape_type": string(s.Type),
			"version":    s.Version,
		}
		for k, v := range s.Style {
			props[k] = v
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			ID:         s.ID,
			Properties: props,
			Geometry:   geom,
		})
	}
	return json.Marshal(fc)
}

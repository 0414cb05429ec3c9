package usecases_test

import (
	"testing"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/usecases"
)

func TestValidateShape_Point(t *testing.T) {
	s := &domain.Shape{
		Type:     domain.ShapePoint,
		Vertices: []domain.GeoPoint{{Lat: 43.263, Lon: -2.935}},
	}
	if err := usecases.ValidateShape(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateShape_PointWithTwoVertices(t *testing.T) {
	s := &domain.Shape{
		Type: domain.ShapePoint,
		Vertices: []domain.GeoPoint{
			{Lat: 43.263, Lon: -2.935},
			{Lat: 43.264, Lon: -2.934},
		},
	}
	err := usecases.ValidateShape(s)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateShape_LineSingleVertex(t *testing.T) {
	s := &domain.Shape{
		Type:     domain.ShapeLine,
		Vertices: []domain.GeoPoint{{Lat: 43.263, Lon: -2.935}},
	}
	if err := usecases.ValidateShape(s); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for 1-vertex line, got %v", err)
	}
}

func TestValidateShape_UnknownType(t *testing.T) {
	s := &domain.Shape{
		Type:     domain.ShapeType("circle"),
		Vertices: []domain.GeoPoint{{Lat: 43.263, Lon: -2.935}},
	}
	if err := usecases.ValidateShape(s); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}

func TestValidateShape_NilShape(t *testing.T) {
	if err := usecases.ValidateShape(nil); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for nil shape, got %v", err)
	}
}

func TestValidateShape_CoordinateRanges(t *testing.T) {
	cases := []struct {
		name string
		p    domain.GeoPoint
	}{
		{"lat too high", domain.GeoPoint{Lat: 90.1, Lon: 0}},
		{"lat too low", domain.GeoPoint{Lat: -90.1, Lon: 0}},
		{"lon too high", domain.GeoPoint{Lat: 0, Lon: 180.1}},
		{"lon too low", domain.GeoPoint{Lat: 0, Lon: -180.1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &domain.Shape{Type: domain.ShapePoint, Vertices: []domain.GeoPoint{tc.p}}
			if err := usecases.ValidateShape(s); !domain.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestValidateShape_PoleAndAntimeridian(t *testing.T) {
	// Boundary coordinates are legal
	s := &domain.Shape{
		Type: domain.ShapeLine,
		Vertices: []domain.GeoPoint{
			{Lat: 90, Lon: 180},
			{Lat: -90, Lon: -180},
		},
	}
	if err := usecases.ValidateShape(s); err != nil {
		t.Fatalf("boundary coordinates must validate: %v", err)
	}
}

func TestValidateShape_ConsecutiveDuplicates(t *testing.T) {
	s := &domain.Shape{
		Type: domain.ShapeLine,
		Vertices: []domain.GeoPoint{
			{Lat: 43.263, Lon: -2.935},
			{Lat: 43.263, Lon: -2.935},
			{Lat: 43.264, Lon: -2.934},
		},
	}
	if err := usecases.ValidateShape(s); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for duplicate vertices, got %v", err)
	}
}

func TestValidateShape_ValidPolygon(t *testing.T) {
	s := &domain.Shape{
		Type: domain.ShapePolygon,
		Vertices: []domain.GeoPoint{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 1},
			{Lat: 1, Lon: 1},
			{Lat: 1, Lon: 0},
		},
	}
	if err := usecases.ValidateShape(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateShape_PolygonClosedRingRejected(t *testing.T) {
	s := &domain.Shape{
		Type: domain.ShapePolygon,
		Vertices: []domain.GeoPoint{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 1},
			{Lat: 1, Lon: 1},
			{Lat: 0, Lon: 0}, // client closed the ring
		},
	}
	if err := usecases.ValidateShape(s); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for closed ring, got %v", err)
	}
}

func TestValidateShape_PolygonRepeatedVertex(t *testing.T) {
	s := &domain.Shape{
		Type: domain.ShapePolygon,
		Vertices: []domain.GeoPoint{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 1},
			{Lat: 1, Lon: 1},
			{Lat: 0, Lon: 1}, // repeats an earlier vertex
		},
	}
	if err := usecases.ValidateShape(s); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for repeated vertex, got %v", err)
	}
}

func TestValidateShape_PolygonSelfIntersecting(t *testing.T) {
	// Bowtie: edges (0,0)-(1,1) and (1,0)-(0,1) cross
	s := &domain.Shape{
		Type: domain.ShapePolygon,
		Vertices: []domain.GeoPoint{
			{Lat: 0, Lon: 0},
			{Lat: 1, Lon: 1},
			{Lat: 1, Lon: 0},
			{Lat: 0, Lon: 1},
		},
	}
	if err := usecases.ValidateShape(s); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for bowtie polygon, got %v", err)
	}
}

func TestValidateShape_TooManyVertices(t *testing.T) {
	vertices := make([]domain.GeoPoint, usecases.MaxVertices+1)
	for i := range vertices {
		vertices[i] = domain.GeoPoint{
			Lat: float64(i%170) - 85,
			Lon: float64(i%350) - 175,
		}
	}
	s := &domain.Shape{Type: domain.ShapeLine, Vertices: vertices}
	if err := usecases.ValidateShape(s); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for oversized shape, got %v", err)
	}
}

package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/ports"
	"github.com/samirrijal/geosketch/internal/pkg/geospatial"
)

// ShapeService is the read side: it serves shape queries from the live
// session when one is open, falling back to the persisted mirror.
type ShapeService struct {
	shapes  ports.ShapeRepository
	editLog ports.EditLogRepository
	editor  *EditorService
	cache   ports.CacheService
}

// NewShapeService creates a new ShapeService.
func NewShapeService(shapes ports.ShapeRepository, editLog ports.EditLogRepository, editor *EditorService, cache ports.CacheService) *ShapeService {
	return &ShapeService{shapes: shapes, editLog: editLog, editor: editor, cache: cache}
}

// GetByID returns a single shape. Live session state wins over the
// persisted mirror, which may lag by in-flight events.
func (s *ShapeService) GetByID(ctx context.Context, boardID, shapeID string) (*domain.Shape, error) {
	if sess, ok := s.editor.Lookup(boardID); ok {
		return sess.Store().Get(shapeID)
	}
	if s.shapes == nil {
		return nil, domain.ErrNotFound
	}
	return s.shapes.GetByID(ctx, shapeID)
}

// ListByBoard returns all shapes on a board ordered by ID.
func (s *ShapeService) ListByBoard(ctx context.Context, boardID string) ([]*domain.Shape, error) {
	if sess, ok := s.editor.Lookup(boardID); ok {
		return sess.Store().List(), nil
	}
	if s.shapes == nil {
		return nil, nil
	}

	cacheKey := "shapes:board:" + boardID
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var out []*domain.Shape
			if err := json.Unmarshal(data, &out); err == nil {
				return out, nil
			}
		}
	}

	persisted, err := s.shapes.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list shapes: %w", err)
	}
	out := make([]*domain.Shape, len(persisted))
	for i := range persisted {
		out[i] = &persisted[i]
	}

	// Cache for 1 minute: closed boards change rarely.
	if s.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}
	return out, nil
}

// FindNearby returns shapes whose geometry falls within radiusMeters of a
// point. Open sessions are scanned in memory with a bounding-box prefilter
// and haversine check; closed boards go to the persisted mirror.
func (s *ShapeService) FindNearby(ctx context.Context, boardID string, lat, lon, radiusMeters float64, limit int) ([]*domain.Shape, error) {
	if !(domain.GeoPoint{Lat: lat, Lon: lon}).Valid() {
		return nil, domain.Invalidf("location", "invalid lat/lon")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	if sess, ok := s.editor.Lookup(boardID); ok {
		minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
		candidates := sess.Store().ListInBounds(domain.Bounds{
			MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon,
		})
		var out []*domain.Shape
		for _, sh := range candidates {
			if shapeWithin(sh, lat, lon, radiusMeters) {
				out = append(out, sh)
				if len(out) == limit {
					break
				}
			}
		}
		return out, nil
	}

	if s.shapes == nil {
		return nil, nil
	}
	persisted, err := s.shapes.FindNearby(ctx, boardID, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("find nearby shapes: %w", err)
	}
	out := make([]*domain.Shape, len(persisted))
	for i := range persisted {
		out[i] = &persisted[i]
	}
	return out, nil
}

// shapeWithin reports whether any vertex lies inside the radius.
func shapeWithin(sh *domain.Shape, lat, lon, radiusMeters float64) bool {
	for _, v := range sh.Vertices {
		if geospatial.Haversine(lat, lon, v.Lat, v.Lon) <= radiusMeters {
			return true
		}
	}
	return false
}

// EditLog returns the most recent durable edit-log entries for a board.
func (s *ShapeService) EditLog(ctx context.Context, boardID string, limit int) ([]domain.EditLogEntry, error) {
	if s.editLog == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.editLog.ListByBoard(ctx, boardID, limit)
}

package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/ports"
	"github.com/samirrijal/geosketch/internal/pkg/geojson"
)

// SnapshotService captures and restores point-in-time board geometry.
type SnapshotService struct {
	snapshots ports.SnapshotRepository
	shapes    ports.ShapeRepository
	editor    *EditorService
	publisher ports.EventPublisher
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(snapshots ports.SnapshotRepository, shapes ports.ShapeRepository, editor *EditorService, publisher ports.EventPublisher) *SnapshotService {
	return &SnapshotService{snapshots: snapshots, shapes: shapes, editor: editor, publisher: publisher}
}

// Capture encodes the board's current geometry as GeoJSON and stores it.
func (s *SnapshotService) Capture(ctx context.Context, boardID string) (*domain.Snapshot, error) {
	var shapes []*domain.Shape
	if sess, ok := s.editor.Lookup(boardID); ok {
		shapes = sess.Store().List()
	} else if s.shapes != nil {
		persisted, err := s.shapes.ListByBoard(ctx, boardID)
		if err != nil {
			return nil, fmt.Errorf("snapshot board %s: %w", boardID, err)
		}
		for i := range persisted {
			shapes = append(shapes, &persisted[i])
		}
	}

	doc, err := geojson.EncodeShapes(shapes)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	snap := &domain.Snapshot{
		ID:        uuid.NewString(),
		BoardID:   boardID,
		GeoJSON:   doc,
		ShapeN:    len(shapes),
		CreatedAt: time.Now().UTC(),
	}
	if s.snapshots != nil {
		if err := s.snapshots.Create(ctx, snap); err != nil {
			return nil, fmt.Errorf("store snapshot: %w", err)
		}
	}

	if s.publisher != nil {
		ev := &domain.BoardEvent{
			Kind:       "snapshotted",
			BoardID:    boardID,
			SnapshotID: snap.ID,
			Time:       snap.CreatedAt,
		}
		if err := s.publisher.PublishBoardEvent(ctx, ev); err != nil {
			slog.Warn("publish board event failed", "board_id", boardID, "kind", ev.Kind, "error", err)
		}
	}
	return snap, nil
}

// Latest returns the most recent snapshot for a board.
func (s *SnapshotService) Latest(ctx context.Context, boardID string) (*domain.Snapshot, error) {
	return s.snapshots.Latest(ctx, boardID)
}

// Discard deletes a snapshot. Used as the compensation step when an
// archival saga fails after capture.
func (s *SnapshotService) Discard(ctx context.Context, snapshotID string) error {
	return s.snapshots.Delete(ctx, snapshotID)
}

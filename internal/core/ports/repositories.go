package ports

import (
	"context"

	"github.com/samirrijal/geosketch/internal/core/domain"
)

// BoardRepository persists boards.
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	List(ctx context.Context, includeArchived bool) ([]domain.Board, error)
	SetArchived(ctx context.Context, id string, archived bool) error
}

// ShapeRepository persists shapes. This is the durable mirror of the
// in-memory geometry store, written asynchronously from change events.
type ShapeRepository interface {
	Upsert(ctx context.Context, shape *domain.Shape) error
	UpsertBatch(ctx context.Context, shapes []domain.Shape) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Shape, error)
	ListByBoard(ctx context.Context, boardID string) ([]domain.Shape, error)
	FindNearby(ctx context.Context, boardID string, lat, lon, radiusMeters float64, limit int) ([]domain.Shape, error)
	CountByBoard(ctx context.Context, boardID string) (int, error)
}

// EditLogRepository appends applied operations to the durable audit log.
type EditLogRepository interface {
	Append(ctx context.Context, entry *domain.EditLogEntry) error
	ListByBoard(ctx context.Context, boardID string, limit int) ([]domain.EditLogEntry, error)
}

// SnapshotRepository persists point-in-time board captures.
type SnapshotRepository interface {
	Create(ctx context.Context, snap *domain.Snapshot) error
	GetByID(ctx context.Context, id string) (*domain.Snapshot, error)
	Latest(ctx context.Context, boardID string) (*domain.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geosketch/internal/core/domain"
)

// SnapshotRepo implements ports.SnapshotRepository with pgx.
type SnapshotRepo struct {
	db *DB
}

// NewSnapshotRepo creates a new SnapshotRepo.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Create stores a snapshot.
func (r *SnapshotRepo) Create(ctx context.Context, s *domain.Snapshot) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO snapshots (id, board_id, geojson, shape_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.BoardID, s.GeoJSON, s.ShapeN, s.CreatedAt)
	return err
}

func (r *SnapshotRepo) scanOne(row pgx.Row) (*domain.Snapshot, error) {
	var s domain.Snapshot
	err := row.Scan(&s.ID, &s.BoardID, &s.GeoJSON, &s.ShapeN, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByID returns a snapshot.
func (r *SnapshotRepo) GetByID(ctx context.Context, id string) (*domain.Snapshot, error) {
	return r.scanOne(r.db.Pool.QueryRow(ctx, `
		SELECT id, board_id, geojson, shape_count, created_at FROM snapshots WHERE id = $1
	`, id))
}

// Latest returns the newest snapshot for a board.
func (r *SnapshotRepo) Latest(ctx context.Context, boardID string) (*domain.Snapshot, error) {
	return r.scanOne(r.db.Pool.QueryRow(ctx, `
		SELECT id, board_id, geojson, shape_count, created_at
		FROM snapshots WHERE board_id = $1
		ORDER BY created_at DESC LIMIT 1
	`, boardID))
}

// Delete removes a snapshot.
func (r *SnapshotRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM snapshots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

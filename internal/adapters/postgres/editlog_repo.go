package postgres

import (
	"context"

	"github.com/samirrijal/geosketch/internal/core/domain"
)

// EditLogRepo implements ports.EditLogRepository: an append-only audit
// trail of applied operations.
type EditLogRepo struct {
	db *DB
}

// NewEditLogRepo creates a new EditLogRepo.
func NewEditLogRepo(db *DB) *EditLogRepo {
	return &EditLogRepo{db: db}
}

// Append records one applied operation.
func (r *EditLogRepo) Append(ctx context.Context, e *domain.EditLogEntry) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO edit_log (board_id, shape_id, kind, version, payload, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.BoardID, e.ShapeID, string(e.Kind), e.Version, e.Payload, e.AppliedAt)
	return err
}

// ListByBoard returns the most recent entries for a board, newest first.
func (r *EditLogRepo) ListByBoard(ctx context.Context, boardID string, limit int) ([]domain.EditLogEntry, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, board_id, shape_id, kind, version, COALESCE(payload, ''::bytea), applied_at
		FROM edit_log
		WHERE board_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, boardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.EditLogEntry
	for rows.Next() {
		var e domain.EditLogEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.BoardID, &e.ShapeID, &kind, &e.Version, &e.Payload, &e.AppliedAt); err != nil {
			return nil, err
		}
		e.Kind = domain.ChangeKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

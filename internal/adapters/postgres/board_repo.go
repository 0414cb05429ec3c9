package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geosketch/internal/core/domain"
)

// BoardRepo implements ports.BoardRepository with pgx.
type BoardRepo struct {
	db *DB
}

// NewBoardRepo creates a new BoardRepo.
func NewBoardRepo(db *DB) *BoardRepo {
	return &BoardRepo{db: db}
}

// Create inserts a board.
func (r *BoardRepo) Create(ctx context.Context, b *domain.Board) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO boards (id, name, owner_id, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, b.ID, b.Name, b.OwnerID, b.Archived, b.CreatedAt, b.UpdatedAt)
	return err
}

// GetByID returns a board with its shape count.
func (r *BoardRepo) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	var b domain.Board
	err := r.db.Pool.QueryRow(ctx, `
		SELECT b.id, b.name, COALESCE(b.owner_id, ''), b.archived, b.created_at, b.updated_at,
		       (SELECT count(*) FROM shapes s WHERE s.board_id = b.id)
		FROM boards b WHERE b.id = $1
	`, id).Scan(&b.ID, &b.Name, &b.OwnerID, &b.Archived, &b.CreatedAt, &b.UpdatedAt, &b.ShapeCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns boards ordered by most recently updated.
func (r *BoardRepo) List(ctx context.Context, includeArchived bool) ([]domain.Board, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(owner_id, ''), archived, created_at, updated_at
		FROM boards
		WHERE archived = false OR $1
		ORDER BY updated_at DESC
	`, includeArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(&b.ID, &b.Name, &b.OwnerID, &b.Archived, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// SetArchived flips a board's archived flag.
func (r *BoardRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE boards SET archived = $2, updated_at = now() WHERE id = $1
	`, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

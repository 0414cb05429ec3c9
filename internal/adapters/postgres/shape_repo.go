package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/pkg/geojson"
)

// ShapeRepo implements ports.ShapeRepository with pgx. Vertices are stored
// as JSONB (the authoritative representation) plus a PostGIS geography
// column derived from them for spatial queries.
type ShapeRepo struct {
	db *DB
}

// NewShapeRepo creates a new ShapeRepo.
func NewShapeRepo(db *DB) *ShapeRepo {
	return &ShapeRepo{db: db}
}

const upsertShapeSQL = `
	INSERT INTO shapes (id, board_id, shape_type, vertices, version, style, geom, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, ST_SetSRID(ST_GeomFromGeoJSON($7), 4326)::geography, $8, $9)
	ON CONFLICT (id) DO UPDATE
	SET shape_type = EXCLUDED.shape_type, vertices = EXCLUDED.vertices,
	    version = EXCLUDED.version, style = EXCLUDED.style,
	    geom = EXCLUDED.geom, updated_at = EXCLUDED.updated_at
`

func upsertArgs(s *domain.Shape) ([]any, error) {
	vertices, err := json.Marshal(s.Vertices)
	if err != nil {
		return nil, fmt.Errorf("marshal vertices: %w", err)
	}
	geom, err := geojson.EncodeGeometry(s)
	if err != nil {
		return nil, fmt.Errorf("encode geometry: %w", err)
	}
	return []any{
		s.ID, s.BoardID, string(s.Type), vertices, s.Version, s.Style,
		string(geom), s.CreatedAt, s.UpdatedAt,
	}, nil
}

// Upsert inserts or updates a single shape.
func (r *ShapeRepo) Upsert(ctx context.Context, s *domain.Shape) error {
	args, err := upsertArgs(s)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, upsertShapeSQL, args...)
	return err
}

// UpsertBatch inserts many shapes using pgx.Batch.
func (r *ShapeRepo) UpsertBatch(ctx context.Context, shapes []domain.Shape) error {
	batch := &pgx.Batch{}
	for i := range shapes {
		args, err := upsertArgs(&shapes[i])
		if err != nil {
			return err
		}
		batch.Queue(upsertShapeSQL, args...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range shapes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Delete removes a shape from the mirror.
func (r *ShapeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM shapes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const selectShapeCols = `
	id, board_id, shape_type, vertices, version, COALESCE(style, '{}'), created_at, updated_at
`

func scanShape(row pgx.Row) (*domain.Shape, error) {
	var s domain.Shape
	var shapeType string
	var vertices []byte
	err := row.Scan(&s.ID, &s.BoardID, &shapeType, &vertices, &s.Version, &s.Style, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.Type = domain.ShapeType(shapeType)
	if err := json.Unmarshal(vertices, &s.Vertices); err != nil {
		return nil, fmt.Errorf("unmarshal vertices for %s: %w", s.ID, err)
	}
	return &s, nil
}

// GetByID returns a shape by UUID.
func (r *ShapeRepo) GetByID(ctx context.Context, id string) (*domain.Shape, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+selectShapeCols+` FROM shapes WHERE id = $1`, id)
	return scanShape(row)
}

// ListByBoard returns all shapes on a board ordered by ID.
func (r *ShapeRepo) ListByBoard(ctx context.Context, boardID string) ([]domain.Shape, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+selectShapeCols+` FROM shapes WHERE board_id = $1 ORDER BY id
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shapes []domain.Shape
	for rows.Next() {
		s, err := scanShape(rows)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, *s)
	}
	return shapes, rows.Err()
}

// FindNearby returns a board's shapes within radiusMeters using PostGIS
// ST_DWithin.
func (r *ShapeRepo) FindNearby(ctx context.Context, boardID string, lat, lon, radiusMeters float64, limit int) ([]domain.Shape, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+selectShapeCols+`
		FROM shapes
		WHERE board_id = $1
		  AND ST_DWithin(geom, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4)
		ORDER BY ST_Distance(geom, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography)
		LIMIT $5
	`, boardID, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shapes []domain.Shape
	for rows.Next() {
		s, err := scanShape(rows)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, *s)
	}
	return shapes, rows.Err()
}

// CountByBoard returns the number of persisted shapes on a board.
func (r *ShapeRepo) CountByBoard(ctx context.Context, boardID string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM shapes WHERE board_id = $1`, boardID).Scan(&n)
	return n, err
}

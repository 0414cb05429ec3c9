//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/geosketch/internal/adapters/http"
	"github.com/samirrijal/geosketch/internal/adapters/postgres"
	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/usecases"
	"github.com/samirrijal/geosketch/internal/pkg/config"
)

// setupTestDB connects to the test database.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("geosketch-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// setupTestDeps creates dependencies with real DB repos, no cache or broker.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	boardRepo := postgres.NewBoardRepo(db)
	shapeRepo := postgres.NewShapeRepo(db)
	editLogRepo := postgres.NewEditLogRepo(db)
	snapshotRepo := postgres.NewSnapshotRepo(db)

	editor := usecases.NewEditorService(nil, 0)
	return &http.Dependencies{
		Boards:    usecases.NewBoardService(boardRepo, shapeRepo, editor, nil),
		Shapes:    usecases.NewShapeService(shapeRepo, editLogRepo, editor, nil),
		Editor:    editor,
		Snapshots: usecases.NewSnapshotService(snapshotRepo, shapeRepo, editor, nil),
		DB:        db,
	}
}

// seedTestBoard inserts a board and returns its ID.
func seedTestBoard(t *testing.T, db *postgres.DB, name string) string {
	ctx := context.Background()
	id := uuid.NewString()
	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO boards (id, name, owner_id, archived, created_at, updated_at)
		VALUES ($1, $2, 'integration-test', false, now(), now())
	`, id, name); err != nil {
		t.Fatalf("seed board: %v", err)
	}
	return id
}

// seedTestShape inserts a point shape directly into the mirror.
func seedTestShape(t *testing.T, db *postgres.DB, boardID string, lat, lon float64) string {
	ctx := context.Background()
	id := uuid.NewString()
	vertices, _ := json.Marshal([]domain.GeoPoint{{Lat: lat, Lon: lon}})
	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO shapes (id, board_id, shape_type, vertices, version, geom, created_at, updated_at)
		VALUES ($1, $2, 'point', $3, 1,
			ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, now(), now())
	`, id, boardID, vertices, lon, lat); err != nil {
		t.Fatalf("seed shape: %v", err)
	}
	return id
}

// TestEditPipeline_Integration drives a full create/undo cycle against real repos.
func TestEditPipeline_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	boardID := seedTestBoard(t, db, "integration edit pipeline")

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	create := map[string]interface{}{
		"kind": "create",
		"shape": map[string]interface{}{
			"type":     "point",
			"vertices": []map[string]float64{{"lat": 43.263, "lon": -2.935}},
		},
	}
	req := httptest.NewRequest("POST", "/v1/boards/"+boardID+"/edits", jsonBody(t, create))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("POST", "/v1/boards/"+boardID+"/undo", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("undo request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 on undo, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/v1/boards/"+boardID+"/shapes", nil)
	resp, _ = app.Test(req, -1)
	var shapes []domain.Shape
	json.NewDecoder(resp.Body).Decode(&shapes)
	if len(shapes) != 0 {
		t.Errorf("expected empty board after undo, got %d shapes", len(shapes))
	}
}

// TestNearbyShapes_Integration exercises the PostGIS radius query.
func TestNearbyShapes_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	boardID := seedTestBoard(t, db, "integration spatial")
	// Bilbao coordinates: 43.263, -2.935
	seedTestShape(t, db, boardID, 43.263, -2.935)
	seedTestShape(t, db, boardID, 43.35, -3.01) // ~11km away

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/boards/"+boardID+"/shapes/nearby?lat=43.263&lon=-2.935&radius=500", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var shapes []domain.Shape
	if err := json.NewDecoder(resp.Body).Decode(&shapes); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(shapes) != 1 {
		t.Errorf("expected 1 shape within 500m, got %d", len(shapes))
	}
}

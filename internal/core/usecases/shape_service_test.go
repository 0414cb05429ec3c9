package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/usecases"
)

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
	sets int
	hits int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		m.hits++
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Mock EditLogRepository ---

type mockEditLogRepo struct {
	listFn func(ctx context.Context, boardID string, limit int) ([]domain.EditLogEntry, error)
}

func (m *mockEditLogRepo) Append(ctx context.Context, entry *domain.EditLogEntry) error { return nil }

func (m *mockEditLogRepo) ListByBoard(ctx context.Context, boardID string, limit int) ([]domain.EditLogEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, boardID, limit)
	}
	return nil, nil
}

// --- Tests ---

func TestShapeService_GetByID_LiveSessionWins(t *testing.T) {
	repo := &mockShapeRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Shape, error) {
			t.Error("repo must not be hit while a session is open")
			return nil, domain.ErrNotFound
		},
	}

	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	sess := editor.Session("board-1")
	_, _ = sess.Apply(context.Background(), createOp("s1", p1, p2))

	svc := usecases.NewShapeService(repo, &mockEditLogRepo{}, editor, nil)

	got, err := svc.GetByID(context.Background(), "board-1", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "s1" {
		t.Errorf("expected s1, got %s", got.ID)
	}
}

func TestShapeService_GetByID_FallsBackToMirror(t *testing.T) {
	repo := &mockShapeRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Shape, error) {
			return &domain.Shape{ID: id, Type: domain.ShapePoint, Vertices: []domain.GeoPoint{p1}}, nil
		},
	}

	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	svc := usecases.NewShapeService(repo, &mockEditLogRepo{}, editor, nil)

	got, err := svc.GetByID(context.Background(), "closed-board", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "s1" {
		t.Errorf("expected s1 from mirror, got %s", got.ID)
	}
}

func TestShapeService_ListByBoard_CachesMirrorReads(t *testing.T) {
	calls := 0
	repo := &mockShapeRepo{
		listByBoardFn: func(ctx context.Context, boardID string) ([]domain.Shape, error) {
			calls++
			return []domain.Shape{
				{ID: "s1", BoardID: boardID, Type: domain.ShapePoint, Vertices: []domain.GeoPoint{p1}},
			}, nil
		},
	}
	cache := newMockCache()

	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	svc := usecases.NewShapeService(repo, &mockEditLogRepo{}, editor, cache)

	first, err := svc.ListByBoard(context.Background(), "board-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(first))
	}

	second, err := svc.ListByBoard(context.Background(), "board-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected 1 cached shape, got %d", len(second))
	}
	if calls != 1 {
		t.Errorf("expected 1 repo read, got %d", calls)
	}
	if cache.hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", cache.hits)
	}
}

func TestShapeService_FindNearby_LiveSession(t *testing.T) {
	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	sess := editor.Session("board-1")
	ctx := context.Background()

	// ~55m east of the query point
	near := domain.GeoPoint{Lat: 43.2630, Lon: -2.9343}
	_, _ = sess.Apply(ctx, createOp("near", near))
	// ~20km away
	far := domain.GeoPoint{Lat: 43.45, Lon: -2.935}
	_, _ = sess.Apply(ctx, createOp("far", far))

	svc := usecases.NewShapeService(&mockShapeRepo{}, &mockEditLogRepo{}, editor, nil)

	got, err := svc.FindNearby(ctx, "board-1", 43.2630, -2.935, 500, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 shape within 500m, got %d", len(got))
	}
	if got[0].ID != "near" {
		t.Errorf("expected near, got %s", got[0].ID)
	}
}

func TestShapeService_FindNearby_InvalidLocation(t *testing.T) {
	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	svc := usecases.NewShapeService(&mockShapeRepo{}, &mockEditLogRepo{}, editor, nil)

	_, err := svc.FindNearby(context.Background(), "board-1", 120.0, -2.935, 500, 10)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestShapeService_FindNearby_ClampLimit(t *testing.T) {
	called := false
	repo := &mockShapeRepo{
		findNearbyFn: func(ctx context.Context, boardID string, lat, lon, radius float64, limit int) ([]domain.Shape, error) {
			called = true
			if limit != 50 {
				t.Errorf("expected limit clamped to 50, got %d", limit)
			}
			return nil, nil
		},
	}

	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	svc := usecases.NewShapeService(repo, &mockEditLogRepo{}, editor, nil)

	_, _ = svc.FindNearby(context.Background(), "closed-board", 43.0, -2.0, 500, 999)
	if !called {
		t.Error("repo was not called")
	}
}

func TestShapeService_EditLog_ClampLimit(t *testing.T) {
	repo := &mockEditLogRepo{
		listFn: func(ctx context.Context, boardID string, limit int) ([]domain.EditLogEntry, error) {
			if limit != 100 {
				t.Errorf("expected limit clamped to 100, got %d", limit)
			}
			return []domain.EditLogEntry{{ID: 1, BoardID: boardID}}, nil
		},
	}

	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	svc := usecases.NewShapeService(&mockShapeRepo{}, repo, editor, nil)

	entries, err := svc.EditLog(context.Background(), "board-1", 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

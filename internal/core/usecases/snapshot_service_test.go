package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/usecases"
)

// --- Mock SnapshotRepository ---

type mockSnapshotRepo struct {
	created  []*domain.Snapshot
	deleted  []string
	latestFn func(ctx context.Context, boardID string) (*domain.Snapshot, error)
}

func (m *mockSnapshotRepo) Create(ctx context.Context, snap *domain.Snapshot) error {
	m.created = append(m.created, snap)
	return nil
}

func (m *mockSnapshotRepo) GetByID(ctx context.Context, id string) (*domain.Snapshot, error) {
	return nil, domain.ErrNotFound
}

func (m *mockSnapshotRepo) Latest(ctx context.Context, boardID string) (*domain.Snapshot, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, boardID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSnapshotRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

// --- Tests ---

func TestSnapshotService_CaptureLiveSession(t *testing.T) {
	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	sess := editor.Session("board-1")
	ctx := context.Background()

	_, _ = sess.Apply(ctx, createOp("s1", p1, p2))
	_, _ = sess.Apply(ctx, createOp("s2", p3))

	repo := &mockSnapshotRepo{}
	pub := &mockPublisher{}
	svc := usecases.NewSnapshotService(repo, &mockShapeRepo{}, editor, pub)

	snap, err := svc.Capture(ctx, "board-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.ShapeN != 2 {
		t.Errorf("expected 2 shapes in snapshot, got %d", snap.ShapeN)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 stored snapshot, got %d", len(repo.created))
	}

	// The payload is a valid GeoJSON FeatureCollection
	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(snap.GeoJSON, &doc); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if doc.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection, got %s", doc.Type)
	}
	if len(doc.Features) != 2 {
		t.Errorf("expected 2 features, got %d", len(doc.Features))
	}

	// Snapshotted event announced
	found := false
	for _, ev := range pub.boardEvents {
		if ev.Kind == "snapshotted" && ev.SnapshotID == snap.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected snapshotted board event")
	}
}

func TestSnapshotService_CaptureFromMirror(t *testing.T) {
	shapes := &mockShapeRepo{
		listByBoardFn: func(ctx context.Context, boardID string) ([]domain.Shape, error) {
			return []domain.Shape{
				{ID: "s1", BoardID: boardID, Type: domain.ShapePoint, Vertices: []domain.GeoPoint{p1}},
			}, nil
		},
	}

	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	svc := usecases.NewSnapshotService(&mockSnapshotRepo{}, shapes, editor, nil)

	snap, err := svc.Capture(context.Background(), "closed-board")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.ShapeN != 1 {
		t.Errorf("expected 1 shape from mirror, got %d", snap.ShapeN)
	}
}

func TestSnapshotService_CapturePublishFailureStillStores(t *testing.T) {
	repo := &mockSnapshotRepo{}
	shapes := &mockShapeRepo{
		listByBoardFn: func(ctx context.Context, boardID string) ([]domain.Shape, error) {
			return []domain.Shape{
				{ID: "s1", BoardID: boardID, Type: domain.ShapePoint, Vertices: []domain.GeoPoint{p1}},
			}, nil
		},
	}

	pub := &mockPublisher{publishErr: errors.New("broker down")}
	editor := usecases.NewEditorService(nil, 0)
	svc := usecases.NewSnapshotService(repo, shapes, editor, pub)

	snap, err := svc.Capture(context.Background(), "board-1")
	if err != nil {
		t.Fatalf("broker failure must not fail the capture: %v", err)
	}
	if snap == nil || snap.ShapeN != 1 {
		t.Fatalf("expected stored snapshot, got %+v", snap)
	}
}

func TestSnapshotService_Discard(t *testing.T) {
	repo := &mockSnapshotRepo{}
	editor := usecases.NewEditorService(&mockPublisher{}, 0)
	svc := usecases.NewSnapshotService(repo, &mockShapeRepo{}, editor, nil)

	if err := svc.Discard(context.Background(), "snap-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "snap-1" {
		t.Errorf("expected snap-1 deleted, got %v", repo.deleted)
	}
}

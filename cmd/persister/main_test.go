package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/geosketch/internal/core/domain"
)

type mockShapeRepo struct {
	upsertFn func(ctx context.Context, shape *domain.Shape) error
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockShapeRepo) Upsert(ctx context.Context, shape *domain.Shape) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, shape)
	}
	return nil
}

func (m *mockShapeRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockShapeRepo) UpsertBatch(ctx context.Context, shapes []domain.Shape) error { return nil }
func (m *mockShapeRepo) GetByID(ctx context.Context, id string) (*domain.Shape, error) {
	return nil, domain.ErrNotFound
}
func (m *mockShapeRepo) ListByBoard(ctx context.Context, boardID string) ([]domain.Shape, error) {
	return nil, nil
}
func (m *mockShapeRepo) FindNearby(ctx context.Context, boardID string, lat, lon, radius float64, limit int) ([]domain.Shape, error) {
	return nil, nil
}
func (m *mockShapeRepo) CountByBoard(ctx context.Context, boardID string) (int, error) {
	return 0, nil
}

type mockEditLogRepo struct {
	appendFn func(ctx context.Context, entry *domain.EditLogEntry) error
}

func (m *mockEditLogRepo) Append(ctx context.Context, entry *domain.EditLogEntry) error {
	if m.appendFn != nil {
		return m.appendFn(ctx, entry)
	}
	return nil
}

func (m *mockEditLogRepo) ListByBoard(ctx context.Context, boardID string, limit int) ([]domain.EditLogEntry, error) {
	return nil, nil
}

func createdEvent() *domain.ShapeChangeEvent {
	return &domain.ShapeChangeEvent{
		Kind:    domain.ChangeCreated,
		ShapeID: "s1",
		BoardID: "b1",
		Version: 1,
		Shape: &domain.Shape{
			ID:       "s1",
			BoardID:  "b1",
			Type:     domain.ShapePoint,
			Vertices: []domain.GeoPoint{{Lat: 43.263, Lon: -2.935}},
			Version:  1,
		},
		Time: time.Now().UTC(),
	}
}

func TestPersistChange_CreatedMirrorsAndLogs(t *testing.T) {
	var upserted *domain.Shape
	var logged *domain.EditLogEntry
	shapes := &mockShapeRepo{
		upsertFn: func(ctx context.Context, s *domain.Shape) error {
			upserted = s
			return nil
		},
	}
	editLog := &mockEditLogRepo{
		appendFn: func(ctx context.Context, e *domain.EditLogEntry) error {
			logged = e
			return nil
		},
	}

	if err := persistChange(context.Background(), shapes, editLog, createdEvent()); err != nil {
		t.Fatalf("persistChange: %v", err)
	}
	if upserted == nil || upserted.ID != "s1" {
		t.Fatalf("expected shape s1 upserted, got %+v", upserted)
	}
	if logged == nil || logged.BoardID != "b1" || logged.Kind != domain.ChangeCreated {
		t.Fatalf("expected edit log entry for b1, got %+v", logged)
	}
}

func TestPersistChange_CreatedWithoutShapeIsDropped(t *testing.T) {
	ev := createdEvent()
	ev.Shape = nil

	upsertCalled := false
	shapes := &mockShapeRepo{
		upsertFn: func(ctx context.Context, s *domain.Shape) error {
			upsertCalled = true
			return nil
		},
	}

	// A malformed event must not error: an error would trigger redelivery
	// and the event can never become well formed.
	if err := persistChange(context.Background(), shapes, &mockEditLogRepo{}, ev); err != nil {
		t.Fatalf("malformed event must be dropped, got error: %v", err)
	}
	if upsertCalled {
		t.Error("malformed event must not reach the mirror")
	}
}

func TestPersistChange_DeleteOfMissingShapeTolerated(t *testing.T) {
	shapes := &mockShapeRepo{
		deleteFn: func(ctx context.Context, id string) error {
			return domain.ErrNotFound
		},
	}
	ev := &domain.ShapeChangeEvent{Kind: domain.ChangeDeleted, ShapeID: "gone", BoardID: "b1", Time: time.Now().UTC()}

	if err := persistChange(context.Background(), shapes, &mockEditLogRepo{}, ev); err != nil {
		t.Fatalf("delete of missing mirror row must not redeliver: %v", err)
	}
}

func TestPersistChange_UpsertFailureRedelivers(t *testing.T) {
	shapes := &mockShapeRepo{
		upsertFn: func(ctx context.Context, s *domain.Shape) error {
			return errors.New("db down")
		},
	}

	if err := persistChange(context.Background(), shapes, &mockEditLogRepo{}, createdEvent()); err == nil {
		t.Fatal("expected error so the event is redelivered")
	}
}

func TestRecordBoardEvent(t *testing.T) {
	for _, kind := range []string{"archived", "snapshotted", "bogus"} {
		ev := &domain.BoardEvent{Kind: kind, BoardID: "b1", Time: time.Now().UTC()}
		if err := recordBoardEvent(ev); err != nil {
			t.Fatalf("recordBoardEvent(%s): %v", kind, err)
		}
	}
}

package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/store"
)

func deleteOp(shapeID string) domain.EditOperation {
	return domain.EditOperation{Kind: domain.OpDelete, ShapeID: shapeID}
}

func TestHistory_PushPopLIFO(t *testing.T) {
	h := store.NewHistory(10)

	h.Push(deleteOp("a"))
	h.Push(deleteOp("b"))
	h.Push(deleteOp("c"))

	for _, want := range []string{"c", "b", "a"} {
		op, err := h.PopUndo()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if op.ShapeID != want {
			t.Errorf("expected %s, got %s", want, op.ShapeID)
		}
	}
}

func TestHistory_EmptyPop(t *testing.T) {
	h := store.NewHistory(10)

	if _, err := h.PopUndo(); !errors.Is(err, domain.ErrEmptyHistory) {
		t.Errorf("expected ErrEmptyHistory on empty undo, got %v", err)
	}
	if _, err := h.PopRedo(); !errors.Is(err, domain.ErrEmptyHistory) {
		t.Errorf("expected ErrEmptyHistory on empty redo, got %v", err)
	}
}

func TestHistory_BoundDropsOldest(t *testing.T) {
	h := store.NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Push(deleteOp(fmt.Sprintf("op%d", i)))
	}

	if h.UndoLen() != 3 {
		t.Fatalf("expected history bounded at 3, got %d", h.UndoLen())
	}

	// The three most recent survive, oldest two were dropped
	for _, want := range []string{"op4", "op3", "op2"} {
		op, err := h.PopUndo()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if op.ShapeID != want {
			t.Errorf("expected %s, got %s", want, op.ShapeID)
		}
	}
}

func TestHistory_PushClearsRedo(t *testing.T) {
	h := store.NewHistory(10)

	h.Push(deleteOp("a"))
	op, _ := h.PopUndo()
	h.PushRedo(op)

	if h.RedoLen() != 1 {
		t.Fatalf("expected 1 redoable op, got %d", h.RedoLen())
	}

	// A fresh edit forks the timeline
	h.Push(deleteOp("b"))
	if h.RedoLen() != 0 {
		t.Errorf("expected redo cleared after new push, got %d", h.RedoLen())
	}
}

func TestHistory_PushUndoOnlyKeepsRedo(t *testing.T) {
	h := store.NewHistory(10)

	h.PushRedo(deleteOp("r1"))
	h.PushRedo(deleteOp("r2"))

	h.PushUndoOnly(deleteOp("a"))
	if h.RedoLen() != 2 {
		t.Errorf("PushUndoOnly must not clear redo, got %d", h.RedoLen())
	}
	if h.UndoLen() != 1 {
		t.Errorf("expected 1 undoable op, got %d", h.UndoLen())
	}
}

func TestHistory_ZeroDepthUsesDefault(t *testing.T) {
	h := store.NewHistory(0)

	for i := 0; i < store.DefaultHistoryDepth+10; i++ {
		h.Push(deleteOp(fmt.Sprintf("op%d", i)))
	}
	if h.UndoLen() != store.DefaultHistoryDepth {
		t.Errorf("expected default depth %d, got %d", store.DefaultHistoryDepth, h.UndoLen())
	}
}

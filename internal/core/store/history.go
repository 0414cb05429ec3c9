package store

import "github.com/samirrijal/geosketch/internal/core/domain"

// DefaultHistoryDepth bounds how many edits can be undone per session.
const DefaultHistoryDepth = 100

// History is a bounded log of inverse operations enabling reversal of
// recent edits, plus a redo stack of re-appliable operations. When the
// bound is reached the oldest entry is dropped.
type History struct {
	depth int
	undo  []domain.EditOperation
	redo  []domain.EditOperation
}

// NewHistory creates a history bounded to depth entries. A depth of zero
// or less uses DefaultHistoryDepth.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// Push records the inverse of a freshly applied operation. Any redoable
// operations are discarded: a new edit forks the timeline.
func (h *History) Push(inverse domain.EditOperation) {
	if len(h.undo) == h.depth {
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:h.depth-1]
	}
	h.undo = append(h.undo, inverse)
	h.redo = h.redo[:0]
}

// PopUndo removes and returns the most recent inverse operation.
func (h *History) PopUndo() (domain.EditOperation, error) {
	if len(h.undo) == 0 {
		return domain.EditOperation{}, domain.ErrEmptyHistory
	}
	op := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return op, nil
}

// PushRedo records the operation that would redo the edit just undone.
func (h *History) PushRedo(op domain.EditOperation) {
	h.redo = append(h.redo, op)
}

// PopRedo removes and returns the most recently undone operation.
func (h *History) PopRedo() (domain.EditOperation, error) {
	if len(h.redo) == 0 {
		return domain.EditOperation{}, domain.ErrEmptyHistory
	}
	op := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return op, nil
}

// PushUndoOnly appends an inverse without clearing the redo stack. Used
// when replaying a redo, which must itself remain undoable.
func (h *History) PushUndoOnly(inverse domain.EditOperation) {
	if len(h.undo) == h.depth {
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:h.depth-1]
	}
	h.undo = append(h.undo, inverse)
}

// UndoLen returns how many operations can currently be undone.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns how many operations can currently be redone.
func (h *History) RedoLen() int { return len(h.redo) }

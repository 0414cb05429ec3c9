package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/ports"
	"github.com/samirrijal/geosketch/internal/core/store"
	"github.com/samirrijal/geosketch/internal/pkg/metrics"
)

// eventBuffer is the per-session change-event channel capacity. Consumers
// that fall this far behind lose the oldest events; the broker publish is
// the durable path.
const eventBuffer = 256

// EditorService owns the editing sessions: one in-memory geometry store
// and undo history per open board.
type EditorService struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	publisher ports.EventPublisher
	depth     int
}

// NewEditorService creates an EditorService. historyDepth bounds the undo
// history per session; zero uses the default.
func NewEditorService(publisher ports.EventPublisher, historyDepth int) *EditorService {
	return &EditorService{
		sessions:  make(map[string]*Session),
		publisher: publisher,
		depth:     historyDepth,
	}
}

// Session returns the open editing session for a board, creating one if
// needed.
func (e *EditorService) Session(boardID string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[boardID]; ok {
		return s
	}
	s := &Session{
		boardID:   boardID,
		store:     store.New(),
		history:   store.NewHistory(e.depth),
		events:    make(chan domain.ShapeChangeEvent, eventBuffer),
		publisher: e.publisher,
	}
	e.sessions[boardID] = s
	metrics.ActiveSessions.Inc()
	return s
}

// Lookup returns the session for a board if one is open.
func (e *EditorService) Lookup(boardID string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[boardID]
	return s, ok
}

// CloseSession closes and forgets a board's session. The session's event
// stream ends; it is not restartable.
func (e *EditorService) CloseSession(boardID string) {
	e.mu.Lock()
	s, ok := e.sessions[boardID]
	delete(e.sessions, boardID)
	e.mu.Unlock()
	if ok {
		s.close()
		metrics.ActiveSessions.Dec()
	}
}

// Session is a single board's edit engine. Apply, Undo, and Redo are
// serialized: each call runs to completion before the next is admitted.
type Session struct {
	boardID   string
	mu        sync.Mutex
	store     *store.GeometryStore
	history   *store.History
	events    chan domain.ShapeChangeEvent
	closed    bool
	publisher ports.EventPublisher
}

// BoardID returns the board this session edits.
func (s *Session) BoardID() string { return s.boardID }

// Store exposes read access to the session's geometry.
func (s *Session) Store() *store.GeometryStore { return s.store }

// Events returns the session's change-event stream. The stream is finite:
// it ends when the session closes and cannot be restarted.
func (s *Session) Events() <-chan domain.ShapeChangeEvent { return s.events }

// Apply validates and applies one edit operation, records its inverse for
// undo, and emits a change event. The returned shape is the stored state
// after the edit (nil for deletes). Callers may cancel via ctx only until
// validation completes; after that the apply runs to completion.
func (s *Session) Apply(ctx context.Context, op domain.EditOperation) (*domain.Shape, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrSessionClosed
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateOperation(op); err != nil {
		metrics.ValidationFailures.Inc()
		return nil, err
	}
	if op.Shape != nil {
		if err := ValidateShape(op.Shape); err != nil {
			metrics.ValidationFailures.Inc()
			return nil, err
		}
	}
	// Point of no return: cancellation is no longer honored.

	applied, prior, err := s.mutate(op)
	if err != nil {
		return nil, err
	}

	s.history.Push(op.Inverse(prior))
	s.emit(ctx, changeKind(op.Kind), op.ShapeID, applied)
	metrics.EditsApplied.WithLabelValues(string(op.Kind)).Inc()
	return applied, nil
}

// Undo pops and replays the inverse of the last applied operation,
// restoring the store to its exact prior state. It returns the restored
// shape, or nil when the undo removed one.
func (s *Session) Undo(ctx context.Context) (*domain.Shape, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrSessionClosed
	}

	inverse, err := s.history.PopUndo()
	if err != nil {
		return nil, err
	}

	restored, prior := s.replay(inverse)
	s.history.PushRedo(inverse.Inverse(prior))
	s.emit(ctx, changeKind(inverse.Kind), inverse.ShapeID, restored)
	metrics.UndosApplied.Inc()
	return restored, nil
}

// Redo replays the most recently undone operation. A fresh Apply clears
// the redo stack.
func (s *Session) Redo(ctx context.Context) (*domain.Shape, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrSessionClosed
	}

	op, err := s.history.PopRedo()
	if err != nil {
		return nil, err
	}

	applied, prior := s.replay(op)
	s.history.PushUndoOnly(op.Inverse(prior))
	s.emit(ctx, changeKind(op.Kind), op.ShapeID, applied)
	metrics.RedosApplied.Inc()
	return applied, nil
}

// UndoDepth reports how many edits can currently be undone.
func (s *Session) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.UndoLen()
}

// RedoDepth reports how many edits can currently be redone.
func (s *Session) RedoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.RedoLen()
}

// mutate applies a validated operation to the store and returns the stored
// shape (nil for deletes) and the state it replaced (nil for creates).
func (s *Session) mutate(op domain.EditOperation) (applied, prior *domain.Shape, err error) {
	switch op.Kind {
	case domain.OpCreate:
		if s.store.Has(op.ShapeID) {
			return nil, nil, domain.Invalidf("shape_id", "shape %s already exists", op.ShapeID)
		}
		sh := op.Shape.Clone()
		sh.ID = op.ShapeID
		sh.BoardID = s.boardID
		now := time.Now().UTC()
		sh.CreatedAt = now
		sh.UpdatedAt = now
		return s.store.Put(sh), nil, nil

	case domain.OpUpdate:
		prior, err := s.store.Get(op.ShapeID)
		if err != nil {
			return nil, nil, fmt.Errorf("update shape %s: %w", op.ShapeID, err)
		}
		sh := op.Shape.Clone()
		sh.ID = op.ShapeID
		sh.BoardID = s.boardID
		sh.UpdatedAt = time.Now().UTC()
		return s.store.Put(sh), prior, nil

	case domain.OpDelete:
		prior, err := s.store.Remove(op.ShapeID)
		if err != nil {
			return nil, nil, fmt.Errorf("delete shape %s: %w", op.ShapeID, err)
		}
		return nil, prior, nil
	}
	return nil, nil, domain.Invalidf("kind", "unknown operation kind %q", op.Kind)
}

// replay applies an inverse (or redo) operation without validation and
// without version bumps, so a round trip is exact. The payload is a state
// the store already held.
func (s *Session) replay(op domain.EditOperation) (applied, prior *domain.Shape) {
	switch op.Kind {
	case domain.OpCreate, domain.OpUpdate:
		prior, _ = s.store.Get(op.ShapeID)
		s.store.Restore(op.Shape)
		applied = op.Shape.Clone()
	case domain.OpDelete:
		prior, _ = s.store.Remove(op.ShapeID)
	}
	return applied, prior
}

func (s *Session) emit(ctx context.Context, kind domain.ChangeKind, shapeID string, sh *domain.Shape) {
	ev := domain.ShapeChangeEvent{
		Kind:    kind,
		ShapeID: shapeID,
		BoardID: s.boardID,
		Time:    time.Now().UTC(),
	}
	if sh != nil {
		ev.Version = sh.Version
		ev.Shape = sh
	}

	select {
	case s.events <- ev:
	default:
		// Slow consumer: drop rather than stall the edit path.
		metrics.EventsDropped.Inc()
	}

	if s.publisher != nil {
		if err := s.publisher.PublishShapeChange(ctx, &ev); err != nil {
			slog.Warn("publish shape change failed", "board_id", s.boardID, "shape_id", shapeID, "error", err)
		}
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

func changeKind(k domain.OpKind) domain.ChangeKind {
	switch k {
	case domain.OpCreate:
		return domain.ChangeCreated
	case domain.OpUpdate:
		return domain.ChangeUpdated
	default:
		return domain.ChangeDeleted
	}
}

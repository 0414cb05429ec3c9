package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/ports"
)

// BoardService handles board lifecycle and session hydration.
type BoardService struct {
	boards    ports.BoardRepository
	shapes    ports.ShapeRepository
	editor    *EditorService
	publisher ports.EventPublisher
}

// NewBoardService creates a new BoardService.
func NewBoardService(boards ports.BoardRepository, shapes ports.ShapeRepository, editor *EditorService, publisher ports.EventPublisher) *BoardService {
	return &BoardService{boards: boards, shapes: shapes, editor: editor, publisher: publisher}
}

// Create registers a new board and returns it.
func (s *BoardService) Create(ctx context.Context, name, ownerID string) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalidf("name", "board name must not be empty")
	}
	if len(name) > 200 {
		return nil, domain.Invalidf("name", "board name too long (max 200 characters)")
	}

	now := time.Now().UTC()
	board := &domain.Board{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.boards != nil {
		if err := s.boards.Create(ctx, board); err != nil {
			return nil, fmt.Errorf("create board: %w", err)
		}
	}
	return board, nil
}

// GetByID returns a board.
func (s *BoardService) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	return s.boards.GetByID(ctx, id)
}

// List returns boards, optionally including archived ones. Shape counts
// come from the mirror; a counting failure leaves the count at zero
// rather than failing the listing.
func (s *BoardService) List(ctx context.Context, includeArchived bool) ([]domain.Board, error) {
	boards, err := s.boards.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	if s.shapes != nil {
		for i := range boards {
			n, err := s.shapes.CountByBoard(ctx, boards[i].ID)
			if err != nil {
				slog.Warn("count shapes failed", "board_id", boards[i].ID, "error", err)
				continue
			}
			boards[i].ShapeCount = n
		}
	}
	return boards, nil
}

// Open returns the board's editing session, hydrating the in-memory store
// from persisted shapes the first time a board is opened.
func (s *BoardService) Open(ctx context.Context, boardID string) (*Session, error) {
	if s.boards != nil {
		board, err := s.boards.GetByID(ctx, boardID)
		if err != nil {
			return nil, fmt.Errorf("open board %s: %w", boardID, err)
		}
		if board.Archived {
			return nil, domain.Invalidf("board", "board %s is archived", boardID)
		}
	}

	if sess, ok := s.editor.Lookup(boardID); ok {
		return sess, nil
	}

	sess := s.editor.Session(boardID)
	if s.shapes != nil {
		persisted, err := s.shapes.ListByBoard(ctx, boardID)
		if err != nil {
			return nil, fmt.Errorf("hydrate board %s: %w", boardID, err)
		}
		for i := range persisted {
			sess.Store().Restore(&persisted[i])
		}
	}
	return sess, nil
}

// Close ends a board's editing session after flushing its live shapes to
// the mirror in one batch. Its event stream terminates.
func (s *BoardService) Close(ctx context.Context, boardID string) error {
	if err := s.flushSession(ctx, boardID); err != nil {
		return err
	}
	s.editor.CloseSession(boardID)
	return nil
}

// Archive marks a board archived, flushes and closes its session, and
// announces the change on the event bus.
func (s *BoardService) Archive(ctx context.Context, boardID string) error {
	if err := s.boards.SetArchived(ctx, boardID, true); err != nil {
		return fmt.Errorf("archive board %s: %w", boardID, err)
	}
	if err := s.flushSession(ctx, boardID); err != nil {
		return err
	}
	s.editor.CloseSession(boardID)

	if s.publisher != nil {
		ev := &domain.BoardEvent{Kind: "archived", BoardID: boardID, Time: time.Now().UTC()}
		if err := s.publisher.PublishBoardEvent(ctx, ev); err != nil {
			slog.Warn("publish board event failed", "board_id", boardID, "kind", ev.Kind, "error", err)
		}
	}
	return nil
}

// flushSession batch-upserts a live session's shapes into the mirror so
// edits whose change events were dropped still converge before the
// session goes away.
func (s *BoardService) flushSession(ctx context.Context, boardID string) error {
	sess, ok := s.editor.Lookup(boardID)
	if !ok || s.shapes == nil {
		return nil
	}
	listed := sess.Store().List()
	if len(listed) == 0 {
		return nil
	}
	shapes := make([]domain.Shape, 0, len(listed))
	for _, sh := range listed {
		shapes = append(shapes, *sh)
	}
	if err := s.shapes.UpsertBatch(ctx, shapes); err != nil {
		return fmt.Errorf("flush board %s: %w", boardID, err)
	}
	return nil
}

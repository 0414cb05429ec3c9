package workflows

import (
	"context"
	"fmt"
	"log"

	"github.com/samirrijal/geosketch/internal/core/ports"
	"github.com/samirrijal/geosketch/internal/core/usecases"
)

// ArchiveActivities holds the activity implementations for the archival workflow.
type ArchiveActivities struct {
	Snapshots *usecases.SnapshotService
	Boards    *usecases.BoardService
	Notifier  ports.NotificationService
}

// CaptureFinalSnapshot captures a GeoJSON snapshot of the board and returns its ID.
func (a *ArchiveActivities) CaptureFinalSnapshot(ctx context.Context, boardID string) (string, error) {
	snap, err := a.Snapshots.Capture(ctx, boardID)
	if err != nil {
		return "", fmt.Errorf("capture snapshot for board %s: %w", boardID, err)
	}
	return snap.ID, nil
}

// MarkBoardArchived flips the archived flag and closes the board's live session.
func (a *ArchiveActivities) MarkBoardArchived(ctx context.Context, boardID string) error {
	if err := a.Boards.Archive(ctx, boardID); err != nil {
		return fmt.Errorf("archive board %s: %w", boardID, err)
	}
	return nil
}

// NotifyOwner sends a push notification to the board owner.
func (a *ArchiveActivities) NotifyOwner(ctx context.Context, ownerID, boardID, snapshotID string) error {
	if a.Notifier == nil {
		log.Printf("PUSH (no notifier) → owner=%s board=%s snapshot=%s", ownerID, boardID, snapshotID)
		return nil
	}
	title := "Your board has been archived"
	body := fmt.Sprintf("Board %s is now read-only. A final snapshot (%s) was saved.", boardID, snapshotID)
	return a.Notifier.SendPush(ctx, ownerID, title, body)
}

// DiscardSnapshot removes a snapshot (saga compensation / rollback).
func (a *ArchiveActivities) DiscardSnapshot(ctx context.Context, snapshotID string) error {
	if err := a.Snapshots.Discard(ctx, snapshotID); err != nil {
		return fmt.Errorf("discard snapshot %s: %w", snapshotID, err)
	}
	log.Printf("Snapshot %s discarded (saga compensation)", snapshotID)
	return nil
}

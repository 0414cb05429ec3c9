package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ArchiveInput is the input for the board archival workflow.
type ArchiveInput struct {
	BoardID string
	OwnerID string
}

// ArchiveBoardWorkflow orchestrates capturing a final snapshot, marking the
// board archived, and notifying the owner. If marking the board archived
// fails, the snapshot is discarded (saga compensation).
func ArchiveBoardWorkflow(ctx workflow.Context, input ArchiveInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting board archival workflow", "boardID", input.BoardID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Capture a final snapshot of the board
	var snapshotID string
	err := workflow.ExecuteActivity(ctx, "CaptureFinalSnapshot", input.BoardID).Get(ctx, &snapshotID)
	if err != nil {
		return err
	}

	// Step 2: Mark the board archived and tear down its live session
	err = workflow.ExecuteActivity(ctx, "MarkBoardArchived", input.BoardID).Get(ctx, nil)
	if err != nil {
		logger.Warn("archive failed, discarding snapshot", "error", err)
		// Compensate: discard the snapshot taken in step 1
		_ = workflow.ExecuteActivity(ctx, "DiscardSnapshot", snapshotID).Get(ctx, nil)
		return err
	}

	// Step 3: Notify the owner. Best effort: the board is already
	// archived, so a notification failure does not roll anything back.
	err = workflow.ExecuteActivity(ctx, "NotifyOwner", input.OwnerID, input.BoardID, snapshotID).Get(ctx, nil)
	if err != nil {
		logger.Warn("owner notification failed", "error", err)
	}

	logger.Info("Board archived", "boardID", input.BoardID, "snapshotID", snapshotID)
	return nil
}

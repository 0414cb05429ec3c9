package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/geosketch/internal/adapters/nats"
	"github.com/samirrijal/geosketch/internal/adapters/postgres"
	"github.com/samirrijal/geosketch/internal/core/ports"
	"github.com/samirrijal/geosketch/internal/core/usecases"
	"github.com/samirrijal/geosketch/internal/pkg/config"
	"github.com/samirrijal/geosketch/internal/pkg/logging"
	"github.com/samirrijal/geosketch/internal/workflows"
)

func main() {
	cfg, err := config.Load("geosketch-archiver")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("geosketch-archiver", logLevel, "json")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Only a live publisher reaches the services; a nil interface means
	// board events are skipped rather than attempted on a dead broker.
	var pub ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, board events will not be published", "error", err)
	} else {
		pub = p
		defer p.Close()
	}

	boardRepo := postgres.NewBoardRepo(db)
	shapeRepo := postgres.NewShapeRepo(db)
	snapshotRepo := postgres.NewSnapshotRepo(db)

	editorSvc := usecases.NewEditorService(pub, cfg.Editor.HistoryDepth)
	boardSvc := usecases.NewBoardService(boardRepo, shapeRepo, editorSvc, pub)
	snapshotSvc := usecases.NewSnapshotService(snapshotRepo, shapeRepo, editorSvc, pub)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ArchiveBoardWorkflow)
	w.RegisterActivity(&workflows.ArchiveActivities{
		Snapshots: snapshotSvc,
		Boards:    boardSvc,
		// Notifier is nil in this deployment; NotifyOwner logs instead.
	})

	slog.Info("archiver worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	natsadapter "github.com/samirrijal/geosketch/internal/adapters/nats"
	"github.com/samirrijal/geosketch/internal/adapters/postgres"
	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/core/ports"
	"github.com/samirrijal/geosketch/internal/pkg/config"
	"github.com/samirrijal/geosketch/internal/pkg/logging"
	"github.com/samirrijal/geosketch/internal/pkg/metrics"
)

// The persister mirrors live shape changes into Postgres. Boards edit
// in memory; this worker trails behind on the JetStream consumer so the
// database converges without ever sitting on the edit hot path.
func main() {
	cfg, err := config.Load("geosketch-persister")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("geosketch-persister", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	shapeRepo := postgres.NewShapeRepo(db)
	editLogRepo := postgres.NewEditLogRepo(db)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeShapeChanges(ctx, func(ctx context.Context, ev *domain.ShapeChangeEvent) error {
		return persistChange(ctx, shapeRepo, editLogRepo, ev)
	})
	if err != nil {
		log.Fatalf("subscribe shape changes: %v", err)
	}

	// Board lifecycle events drain the interest stream and feed the
	// archival/snapshot counters.
	err = sub.SubscribeBoardEvents(ctx, func(ctx context.Context, ev *domain.BoardEvent) error {
		return recordBoardEvent(ev)
	})
	if err != nil {
		log.Fatalf("subscribe board events: %v", err)
	}

	// Expose /metrics for Prometheus scraping
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		slog.Info("metrics listening", "addr", ":9102")
		if err := http.ListenAndServe(":9102", mux); err != nil {
			slog.Error("metrics server", "error", err)
		}
	}()

	slog.Info("persister started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down persister", "signal", sig.String())
	cancel()
	// Let in-flight handlers finish before the NATS drain
	time.Sleep(2 * time.Second)
}

func persistChange(ctx context.Context, shapes ports.ShapeRepository, editLog ports.EditLogRepository, ev *domain.ShapeChangeEvent) error {
	switch ev.Kind {
	case domain.ChangeCreated, domain.ChangeUpdated:
		if ev.Shape == nil {
			slog.Warn("change event without shape payload", "kind", ev.Kind, "shape_id", ev.ShapeID)
			return nil // malformed, do not redeliver
		}
		if err := shapes.Upsert(ctx, ev.Shape); err != nil {
			metrics.PersistErrors.Inc()
			return err
		}
	case domain.ChangeDeleted:
		if err := shapes.Delete(ctx, ev.ShapeID); err != nil {
			// Deleting a shape that never reached the mirror is fine:
			// create and delete can land inside one consumer window.
			if !errors.Is(err, domain.ErrNotFound) {
				metrics.PersistErrors.Inc()
				return err
			}
		}
	default:
		slog.Warn("unknown change kind", "kind", ev.Kind)
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	entry := &domain.EditLogEntry{
		BoardID:   ev.BoardID,
		ShapeID:   ev.ShapeID,
		Kind:      ev.Kind,
		Version:   ev.Version,
		Payload:   payload,
		AppliedAt: ev.Time,
	}
	if err := editLog.Append(ctx, entry); err != nil {
		metrics.PersistErrors.Inc()
		return err
	}

	metrics.ShapesPersisted.WithLabelValues(string(ev.Kind)).Inc()
	return nil
}

func recordBoardEvent(ev *domain.BoardEvent) error {
	switch ev.Kind {
	case "archived", "snapshotted":
		metrics.BoardEventsSeen.WithLabelValues(ev.Kind).Inc()
		slog.Info("board event", "kind", ev.Kind, "board_id", ev.BoardID, "snapshot_id", ev.SnapshotID)
	default:
		slog.Warn("unknown board event kind", "kind", ev.Kind)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/geosketch/internal/adapters/http"
	natsadapter "github.com/samirrijal/geosketch/internal/adapters/nats"
	"github.com/samirrijal/geosketch/internal/adapters/postgres"
	"github.com/samirrijal/geosketch/internal/adapters/valkey"
	"github.com/samirrijal/geosketch/internal/core/ports"
	"github.com/samirrijal/geosketch/internal/core/usecases"
	"github.com/samirrijal/geosketch/internal/pkg/config"
	"github.com/samirrijal/geosketch/internal/pkg/logging"
	"github.com/samirrijal/geosketch/internal/pkg/metrics"
	"github.com/samirrijal/geosketch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geosketch-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("geosketch-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Pool gauges for Prometheus
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Cache. The interface stays nil on failure so usecases skip the
	// cache path instead of calling through a nil adapter.
	var cache *valkey.Cache
	var cacheSvc ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		cache = vc
		cacheSvc = vc
		defer vc.Close()
	}

	// NATS (JetStream publisher for durable change events). Same rule:
	// only a live publisher is handed to the services.
	var pub ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, change events disabled", "error", err)
	} else {
		pub = p
		defer p.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	boardRepo := postgres.NewBoardRepo(db)
	shapeRepo := postgres.NewShapeRepo(db)
	editLogRepo := postgres.NewEditLogRepo(db)
	snapshotRepo := postgres.NewSnapshotRepo(db)

	// Use cases
	editorSvc := usecases.NewEditorService(pub, cfg.Editor.HistoryDepth)
	boardSvc := usecases.NewBoardService(boardRepo, shapeRepo, editorSvc, pub)
	shapeSvc := usecases.NewShapeService(shapeRepo, editLogRepo, editorSvc, cacheSvc)
	snapshotSvc := usecases.NewSnapshotService(snapshotRepo, shapeRepo, editorSvc, pub)

	deps := &http.Dependencies{
		Boards:    boardSvc,
		Shapes:    shapeSvc,
		Editor:    editorSvc,
		Snapshots: snapshotSvc,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // polygon payloads can get big
		AppName:      "GeoSketch API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.geosketch.app",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

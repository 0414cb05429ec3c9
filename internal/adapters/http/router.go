package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/samirrijal/geosketch/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/boards", timeout.NewWithContext(ListBoardsHandler(deps), 15*time.Second))
	v1.Post("/boards", timeout.NewWithContext(CreateBoardHandler(deps), 15*time.Second))
	v1.Get("/boards/:id", timeout.NewWithContext(GetBoardHandler(deps), 15*time.Second))
	v1.Post("/boards/:id/archive", timeout.NewWithContext(ArchiveBoardHandler(deps), 15*time.Second))
	v1.Delete("/boards/:id/session", timeout.NewWithContext(CloseSessionHandler(deps), 15*time.Second))

	// Edit pipeline: apply / undo / redo
	v1.Post("/boards/:id/edits", timeout.NewWithContext(ApplyEditHandler(deps), 15*time.Second))
	v1.Post("/boards/:id/undo", timeout.NewWithContext(UndoHandler(deps), 15*time.Second))
	v1.Post("/boards/:id/redo", timeout.NewWithContext(RedoHandler(deps), 15*time.Second))
	v1.Get("/boards/:id/edits", timeout.NewWithContext(EditLogHandler(deps), 15*time.Second))

	// Shape reads
	v1.Get("/boards/:id/shapes", timeout.NewWithContext(ListShapesHandler(deps), 15*time.Second))
	v1.Get("/boards/:id/shapes/nearby", timeout.NewWithContext(NearbyShapesHandler(deps), 15*time.Second))
	v1.Get("/boards/:id/shapes/:shapeID", timeout.NewWithContext(GetShapeHandler(deps), 15*time.Second))

	// Export & snapshots
	v1.Get("/boards/:id/export", timeout.NewWithContext(ExportBoardHandler(deps), 15*time.Second))
	v1.Post("/boards/:id/snapshots", timeout.NewWithContext(CaptureSnapshotHandler(deps), 15*time.Second))
	v1.Get("/boards/:id/snapshots/latest", timeout.NewWithContext(LatestSnapshotHandler(deps), 15*time.Second))

	// Operational stats
	v1.Get("/stats", timeout.NewWithContext(StatsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

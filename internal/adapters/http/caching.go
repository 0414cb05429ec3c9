package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case strings.Contains(path, "/shapes"):
			// Live geometry: clients poll between WebSocket events
			ttl = "private, max-age=0, must-revalidate"

		case strings.Contains(path, "/snapshots"):
			ttl = "public, max-age=300" // Snapshots are immutable once taken

		case strings.HasPrefix(path, "/v1/boards"):
			ttl = "private, max-age=30"

		default:
			ttl = "no-store"
		}

		c.Set("Cache-Control", ttl)
		return err
	}
}

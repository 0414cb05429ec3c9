package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geosketch/internal/adapters/postgres"
	"github.com/samirrijal/geosketch/internal/adapters/valkey"
	"github.com/samirrijal/geosketch/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Boards    *usecases.BoardService
	Shapes    *usecases.ShapeService
	Editor    *usecases.EditorService
	Snapshots *usecases.SnapshotService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}

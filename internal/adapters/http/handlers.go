package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/geosketch/internal/core/domain"
	"github.com/samirrijal/geosketch/internal/pkg/geojson"
)

// BoardStats holds row counts from the durable mirror.
type BoardStats struct {
	Boards     int    `json:"boards"`
	Shapes     int    `json:"shapes"`
	EditLog    int    `json:"edit_log_entries"`
	Snapshots  int    `json:"snapshots"`
	LastChange string `json:"last_change,omitempty"`
}

// StatsHandler returns row counts from the geometry tables.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats BoardStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM boards),
				(SELECT count(*) FROM shapes),
				(SELECT count(*) FROM edit_log),
				(SELECT count(*) FROM snapshots),
				COALESCE((SELECT max(applied_at)::text FROM edit_log), '')
		`)
		if err := row.Scan(&stats.Boards, &stats.Shapes, &stats.EditLog,
			&stats.Snapshots, &stats.LastChange); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// ListBoardsHandler returns boards with offset/limit pagination.
func ListBoardsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		includeArchived := c.QueryBool("archived", false)
		boards, err := deps.Boards.List(c.Context(), includeArchived)
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(boards)
		if offset >= total {
			boards = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			boards = boards[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: boards, Pagination: pg})
	}
}

type createBoardRequest struct {
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// CreateBoardHandler registers a new board.
func CreateBoardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createBoardRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		board, err := deps.Boards.Create(c.Context(), req.Name, req.OwnerID)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(201).JSON(board)
	}
}

// GetBoardHandler returns a single board.
func GetBoardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		board, err := deps.Boards.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(board)
	}
}

// ArchiveBoardHandler archives a board and closes its editing session.
func ArchiveBoardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Boards.Archive(c.Context(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(204)
	}
}

// CloseSessionHandler ends a board's editing session without archiving.
func CloseSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Boards.Close(c.Context(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(204)
	}
}

type editRequest struct {
	Kind    domain.OpKind `json:"kind"`
	ShapeID string        `json:"shape_id"`
	Shape   *domain.Shape `json:"shape,omitempty"`
}

type editResponse struct {
	Shape     *domain.Shape `json:"shape,omitempty"`
	UndoDepth int           `json:"undo_depth"`
	RedoDepth int           `json:"redo_depth"`
}

// ApplyEditHandler validates and applies one edit operation on a board.
// Create operations without a shape_id get a server-generated UUID.
func ApplyEditHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req editRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if req.Kind == domain.OpCreate && req.ShapeID == "" {
			req.ShapeID = uuid.NewString()
		}

		sess, err := deps.Boards.Open(c.Context(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}

		shape, err := sess.Apply(c.Context(), domain.EditOperation{
			Kind:    req.Kind,
			ShapeID: req.ShapeID,
			Shape:   req.Shape,
		})
		if err != nil {
			return errFromDomain(c, err)
		}

		invalidateBoardCache(c, deps, c.Params("id"))
		return c.Status(statusForEdit(req.Kind)).JSON(editResponse{
			Shape:     shape,
			UndoDepth: sess.UndoDepth(),
			RedoDepth: sess.RedoDepth(),
		})
	}
}

func statusForEdit(kind domain.OpKind) int {
	if kind == domain.OpCreate {
		return 201
	}
	return 200
}

// UndoHandler reverses the last applied edit on a board.
func UndoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Boards.Open(c.Context(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}

		shape, err := sess.Undo(c.Context())
		if err != nil {
			return errFromDomain(c, err)
		}

		invalidateBoardCache(c, deps, c.Params("id"))
		return c.JSON(editResponse{
			Shape:     shape,
			UndoDepth: sess.UndoDepth(),
			RedoDepth: sess.RedoDepth(),
		})
	}
}

// RedoHandler replays the most recently undone edit on a board.
func RedoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Boards.Open(c.Context(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}

		shape, err := sess.Redo(c.Context())
		if err != nil {
			return errFromDomain(c, err)
		}

		invalidateBoardCache(c, deps, c.Params("id"))
		return c.JSON(editResponse{
			Shape:     shape,
			UndoDepth: sess.UndoDepth(),
			RedoDepth: sess.RedoDepth(),
		})
	}
}

// ListShapesHandler returns all shapes on a board.
func ListShapesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shapes, err := deps.Shapes.ListByBoard(c.Context(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(shapes)
	}
}

// GetShapeHandler returns a single shape.
func GetShapeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shape, err := deps.Shapes.GetByID(c.Context(), c.Params("id"), c.Params("shapeID"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(shape)
	}
}

// NearbyShapesHandler returns shapes near a point.
func NearbyShapesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 500)
		limit := c.QueryInt("limit", 50)
		if radius <= 0 || radius > 100000 {
			return errBadRequest(c, "radius must be between 1 and 100000 meters")
		}

		shapes, err := deps.Shapes.FindNearby(c.Context(), c.Params("id"), lat, lon, radius, limit)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("Cache-Control", "public, max-age=10")
		return c.JSON(shapes)
	}
}

// EditLogHandler returns the durable edit log for a board, newest first.
func EditLogHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		entries, err := deps.Shapes.EditLog(c.Context(), c.Params("id"), limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(entries)
	}
}

// ExportBoardHandler streams the board's current geometry as GeoJSON.
func ExportBoardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shapes, err := deps.Shapes.ListByBoard(c.Context(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		doc, err := geojson.EncodeShapes(shapes)
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Content-Type", "application/geo+json")
		return c.Send(doc)
	}
}

// CaptureSnapshotHandler stores a point-in-time capture of a board.
func CaptureSnapshotHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Snapshots.Capture(c.Context(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(201).JSON(fiber.Map{
			"id":          snap.ID,
			"board_id":    snap.BoardID,
			"shape_count": snap.ShapeN,
			"created_at":  snap.CreatedAt,
		})
	}
}

// LatestSnapshotHandler returns the newest snapshot document for a board.
func LatestSnapshotHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Snapshots.Latest(c.Context(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Content-Type", "application/geo+json")
		c.Set("X-Snapshot-ID", snap.ID)
		return c.Send(snap.GeoJSON)
	}
}

// invalidateBoardCache drops the cached shape list after a successful edit.
func invalidateBoardCache(c *fiber.Ctx, deps *Dependencies, boardID string) {
	if deps.Cache != nil {
		_ = deps.Cache.Delete(c.Context(), "shapes:board:"+boardID)
	}
}

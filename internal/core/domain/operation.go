package domain

import "time"

// OpKind tags an edit operation variant.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// EditOperation is a single mutation request against a board's geometry.
// Create and Update carry the full shape payload; Delete only needs the
// target ID.
type EditOperation struct {
	Kind    OpKind `json:"kind"`
	ShapeID string `json:"shape_id"`
	Shape   *Shape `json:"shape,omitempty"`
}

// EditLogEntry is a durably recorded applied operation. The edit log is an
// audit trail written asynchronously by the persister; the in-session undo
// history never reads it back.
type EditLogEntry struct {
	ID        int64      `json:"id"`
	BoardID   string     `json:"board_id"`
	ShapeID   string     `json:"shape_id"`
	Kind      ChangeKind `json:"kind"`
	Version   uint64     `json:"version"`
	Payload   []byte     `json:"payload,omitempty"` // shape JSON for created/updated
	AppliedAt time.Time  `json:"applied_at"`
}

// Inverse returns the operation that reverses op, given the shape state
// that op replaced (nil for Create).
func (op EditOperation) Inverse(prior *Shape) EditOperation {
	switch op.Kind {
	case OpCreate:
		return EditOperation{Kind: OpDelete, ShapeID: op.ShapeID}
	case OpUpdate:
		return EditOperation{Kind: OpUpdate, ShapeID: op.ShapeID, Shape: prior}
	case OpDelete:
		return EditOperation{Kind: OpCreate, ShapeID: op.ShapeID, Shape: prior}
	}
	return EditOperation{}
}

package domain

import "time"

// ChangeKind tags a shape change event.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ShapeChangeEvent is emitted after every successful edit (including undo
// and redo replays). Consumers such as the persister and websocket relay
// render or store it themselves; the core never formats user-facing messages.
type ShapeChangeEvent struct {
	Kind    ChangeKind `json:"kind"`
	ShapeID string     `json:"shape_id"`
	BoardID string     `json:"board_id"`
	Version uint64     `json:"version,omitempty"` // shape version after the change; zero for deletes
	Shape   *Shape     `json:"shape,omitempty"`   // populated for created/updated
	Time    time.Time  `json:"time"`
}

// BoardEvent is emitted for board lifecycle changes (archived, snapshotted).
type BoardEvent struct {
	Kind       string    `json:"kind"` // "archived" | "snapshotted"
	BoardID    string    `json:"board_id"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	Time       time.Time `json:"time"`
}

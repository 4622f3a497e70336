package domain

import "time"

// Cursor is a point-in-time copy of the sync position.
type Cursor struct {
	BlockHeight uint64
	GroupHeight uint64
	Epoch       uint64
	State       CursorState
	UpdatedAt   time.Time
}

type CursorState string

const (
	CursorStateInit      CursorState = "init"
	CursorStateTracking  CursorState = "tracking"
	CursorStateResetting CursorState = "resetting"
)

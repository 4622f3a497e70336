// Package cursor tracks how far the local caches are synchronized with the node.
//
// # Purpose
//
// The cursor remembers two heights:
//   - Block height: the last block fetched into the contiguous block cache
//   - Group height: the height the next ranged group query starts from
//
// Both are process-lifetime values. A reset (node restart or endpoint change)
// drops them back to zero and bumps the epoch so that responses belonging to
// the previous node are discarded when they arrive late.
//
// # State Machine
//
//	INIT → TRACKING → RESETTING → TRACKING
//
// # Quick Start
//
//	c := cursor.New()
//	epoch := c.Epoch()
//
//	// Sync engines advance with the epoch captured at the start of their pass
//	c.AdvanceBlock(epoch, 3)   // ✓ OK
//	c.AdvanceBlock(epoch, 2)   // ignored, cursor never moves back
//
//	// Node restarted
//	c.Reset("node restarted")
//	c.AdvanceBlock(epoch, 4)   // ✗ ErrStaleEpoch
//
// # Package Structure
//
//   - state.go   - State machine definitions and valid transitions
//   - manager.go - Cursor implementation
//   - metrics.go - Throughput metrics and state history
package cursor

import (
	"github.com/vietddude/gtasmon/internal/core/domain"
)

// Snapshot is a point-in-time copy of a cursor.
type Snapshot = domain.Cursor

// State constants re-exported for convenience.
const (
	StateInit      = domain.CursorStateInit
	StateTracking  = domain.CursorStateTracking
	StateResetting = domain.CursorStateResetting
)

// New creates a cursor at height zero in the init state.
func New() *Cursor {
	return &Cursor{
		state:   StateInit,
		metrics: NewMetricsCollector(100),
	}
}

// NewMetricsCollector creates a new metrics collector with the given window size.
func NewMetricsCollector(windowSize int) *MetricsCollector {
	if windowSize <= 0 {
		windowSize = 100
	}
	return &MetricsCollector{
		windowSize:  windowSize,
		blockTimes:  make([]blockRecord, 0, windowSize),
		transitions: make([]Transition, 0, 10),
	}
}

// Package syncer reconciles the local block and group caches with the node.
//
// # Block Sync
//
// One GTAS_getBlock per missing height, fetched concurrently:
//
//	cursor=3, reported=7  →  fetch 4,5,6,7 in parallel
//	4 ✓  5 ✓  6 ✗  7 ✓     →  apply 4,5; drop 7; cursor=5
//
// Results are applied in height order and only while contiguous, so the cache
// never has a gap whatever order the responses arrive in. Heights after a
// failure are fetched again on a later pass.
//
// # Group Sync
//
// One ranged GTAS_getGroupsAfter from the group cursor. Records are
// deduplicated by group id and the cursor moves to the newest cached
// group's height plus one.
//
// # Epochs
//
// Both engines capture the cursor epoch when a pass starts. If the cursor was
// reset while the pass was in flight (node restart, endpoint change) the
// results are discarded.
package syncer

import (
	"context"
	"errors"

	"github.com/vietddude/gtasmon/internal/core/domain"
)

var (
	// ErrBlockGap is reported when the node returns a block whose height is
	// not the one requested, which would break contiguity.
	ErrBlockGap = errors.New("block gap detected")

	// ErrStaleEpoch is reported when a pass finished after a reset.
	ErrStaleEpoch = errors.New("results belong to a previous epoch")
)

// BlockFetcher fetches a block summary by height.
type BlockFetcher interface {
	GetBlock(ctx context.Context, height uint64) (*domain.Block, error)
}

// GroupFetcher fetches all groups from a height on.
type GroupFetcher interface {
	GetGroupsAfter(ctx context.Context, height uint64) ([]*domain.Group, error)
}

// SyncReport summarizes one pass. Engines never fail a poll cycle; callers
// read the report instead.
type SyncReport struct {
	Epoch      uint64
	From       uint64 // first height requested
	To         uint64 // last height requested
	Requested  int    // RPC calls issued
	Applied    int    // records added or replaced
	Duplicates int    // records ignored as already known
	Failed     int    // calls that failed
	Dropped    int    // successful fetches not applied because of an earlier gap
	Skipped    bool   // nothing to do
	Discarded  bool   // results dropped because the epoch changed
	Cursor     uint64 // cursor after the pass
	Err        error  // first error seen
}

// Changed reports whether the pass mutated the cache.
func (r SyncReport) Changed() bool {
	return r.Applied > 0
}

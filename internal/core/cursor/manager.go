package cursor

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrStaleEpoch is returned when an update carries an epoch older than
	// the cursor's current one, i.e. it was computed before a reset.
	ErrStaleEpoch = errors.New("stale cursor epoch")
)

// Cursor holds the block and group heights with state machine enforcement.
// All methods are safe for concurrent use.
type Cursor struct {
	mu            sync.RWMutex
	block         uint64
	group         uint64
	epoch         uint64
	state         State
	updatedAt     time.Time
	stateCallback func(Transition)
	metrics       *MetricsCollector
}

// Block returns the last contiguous block height held in the cache.
func (c *Cursor) Block() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.block
}

// Group returns the height the next group query starts from.
func (c *Cursor) Group() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.group
}

// Epoch returns the current reset generation.
func (c *Cursor) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// State returns the current state.
func (c *Cursor) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// AdvanceBlock moves the block height forward to height.
// Heights at or below the current one are ignored; the cursor never moves back
// except through Reset.
func (c *Cursor) AdvanceBlock(epoch, height uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkEpochLocked(epoch); err != nil {
		return err
	}
	if height <= c.block {
		return nil
	}

	c.block = height
	c.updatedAt = time.Now()
	c.metrics.RecordBlock(height, c.updatedAt)
	c.enterTrackingLocked("first block synced")
	return nil
}

// SetGroup sets the group height. Unlike the block height it may be set to
// any value, since it is derived from the last cached group.
func (c *Cursor) SetGroup(epoch, height uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkEpochLocked(epoch); err != nil {
		return err
	}

	c.group = height
	c.updatedAt = time.Now()
	c.enterTrackingLocked("first group synced")
	return nil
}

// Reset drops both heights to zero and starts a new epoch.
// It returns the new epoch.
func (c *Cursor) Reset(reason string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transitionLocked(StateResetting, reason)
	c.block = 0
	c.group = 0
	c.epoch++
	c.updatedAt = time.Now()
	c.transitionLocked(StateTracking, fmt.Sprintf("epoch %d started", c.epoch))
	return c.epoch
}

// Snapshot returns a copy of the cursor.
func (c *Cursor) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		BlockHeight: c.block,
		GroupHeight: c.group,
		Epoch:       c.epoch,
		State:       c.state,
		UpdatedAt:   c.updatedAt,
	}
}

// Lag returns how many blocks the cache is behind the reported node height.
func (c *Cursor) Lag(nodeHeight uint64) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(nodeHeight) - int64(c.block)
}

// GetMetrics returns throughput metrics.
func (c *Cursor) GetMetrics() Metrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metrics.GetMetrics()
}

// SetStateChangeCallback registers callback for state changes.
func (c *Cursor) SetStateChangeCallback(fn func(t Transition)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateCallback = fn
}

func (c *Cursor) checkEpochLocked(epoch uint64) error {
	if epoch != c.epoch {
		return fmt.Errorf("%w: got %d, current %d", ErrStaleEpoch, epoch, c.epoch)
	}
	return nil
}

func (c *Cursor) enterTrackingLocked(reason string) {
	if c.state == StateInit {
		c.transitionLocked(StateTracking, reason)
	}
}

// transitionLocked applies a transition. Must be called with mu held.
func (c *Cursor) transitionLocked(to State, reason string) {
	t := NewTransition(c.state, to, reason)
	if !t.IsValid() {
		return
	}
	c.state = to
	c.metrics.RecordTransition(t)
	if c.stateCallback != nil {
		c.stateCallback(t)
	}
}

package throttle

import (
	"sync"
	"time"
)

// CatchupController computes the next poll interval from the block lag.
type CatchupController struct {
	baseInterval time.Duration
	config       CatchupConfig

	mu              sync.Mutex
	currentInterval time.Duration
}

// NewCatchupController creates a new catch-up controller.
func NewCatchupController(baseInterval time.Duration, config CatchupConfig) *CatchupController {
	return &CatchupController{
		baseInterval:    baseInterval,
		config:          config,
		currentInterval: baseInterval,
	}
}

// ComputeInterval calculates the next poll interval based on lag.
//
// Algorithm:
//   - lag ≤ 0: Use base interval (caught up)
//   - lag < normal: Use base interval × 0.5 (slightly behind)
//   - lag < burst: Use min interval × 2 (catching up)
//   - lag ≥ burst: Use min interval (maximum catchup speed)
func (c *CatchupController) ComputeInterval(lag int64) time.Duration {
	if !c.config.Enabled {
		return c.baseInterval
	}

	var interval time.Duration

	switch {
	case lag <= 0:
		interval = c.baseInterval

	case lag < c.config.LagNormalThreshold:
		interval = c.baseInterval / 2

	case lag < c.config.LagBurstThreshold:
		interval = c.config.MinInterval * 2

	default:
		interval = c.config.MinInterval
	}

	// Enforce bounds
	if interval < c.config.MinInterval {
		interval = c.config.MinInterval
	}
	if c.config.MaxInterval > 0 && interval > c.config.MaxInterval {
		interval = c.config.MaxInterval
	}

	c.mu.Lock()
	c.currentInterval = interval
	c.mu.Unlock()
	return interval
}

// GetCurrentInterval returns the last computed interval (for metrics).
func (c *CatchupController) GetCurrentInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentInterval
}

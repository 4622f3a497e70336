package throttle

import "time"

// CatchupConfig holds configuration for polling faster while the block
// cursor lags the node.
type CatchupConfig struct {
	// Enabled controls whether the poll interval adapts to lag
	Enabled bool `yaml:"enabled"`

	// Interval bounds
	MinInterval time.Duration `yaml:"min_interval"` // Fastest polling rate (default: 250ms)
	MaxInterval time.Duration `yaml:"max_interval"` // Slowest polling rate (default: 10s)

	// Lag thresholds for interval adjustment
	LagNormalThreshold int64 `yaml:"lag_normal_threshold"` // Below this = half the base interval (default: 5)
	LagBurstThreshold  int64 `yaml:"lag_burst_threshold"`  // Above this = max speed (default: 50)
}

// DefaultCatchupConfig returns defaults. Catch-up is off unless enabled;
// the poller then runs at its fixed interval.
func DefaultCatchupConfig() CatchupConfig {
	return CatchupConfig{
		Enabled:            false,
		MinInterval:        250 * time.Millisecond,
		MaxInterval:        10 * time.Second,
		LagNormalThreshold: 5,
		LagBurstThreshold:  50,
	}
}

// Package reset detects node restarts from the status string the node reports.
//
// # Design: Edge Detection
//
// A node that was observed as stopped and then reports running again has
// restarted; every height cached from it may be stale. Only that edge fires:
//   - running -> running: no-op
//   - running -> stopped: no-op (the node may come back with the same chain)
//   - stopped -> running: reset
//   - first observation: no-op, whatever the status
//
// # Usage
//
//	detector := reset.NewDetector(reset.DefaultConfig())
//
//	// On every dashboard poll, before any sync pass
//	if detector.Observe(dashboard.NodeInfo.Status) {
//	    // clear caches and cursors
//	}
package reset

import "github.com/vietddude/gtasmon/internal/core/domain"

// Config holds the status sentinels. Nodes may localize their status
// strings, so they are configurable.
type Config struct {
	RunningStatus string
	StoppedStatus string
}

// DefaultConfig returns the English sentinels.
func DefaultConfig() Config {
	return Config{
		RunningStatus: domain.NodeStatusRunning,
		StoppedStatus: domain.NodeStatusStopped,
	}
}

// NewDetector creates a new reset detector. Empty sentinels fall back to
// the defaults.
func NewDetector(config Config) *Detector {
	def := DefaultConfig()
	if config.RunningStatus == "" {
		config.RunningStatus = def.RunningStatus
	}
	if config.StoppedStatus == "" {
		config.StoppedStatus = def.StoppedStatus
	}
	return &Detector{config: config}
}

package cursor

import (
	"time"
)

// blockRecord holds timing data for an advanced block height.
type blockRecord struct {
	Height     uint64
	AdvancedAt time.Time
}

// Metrics holds cursor throughput data.
type Metrics struct {
	BlocksPerSecond  float64       `json:"blocks_per_second"`
	AverageBlockTime time.Duration `json:"average_block_time"`
	LastResetAt      *time.Time    `json:"last_reset_at,omitempty"`
	ResetCount       int           `json:"reset_count"`
	StateHistory     []Transition  `json:"state_history"`
}

// MetricsCollector tracks cursor progress over time.
// It is not safe for concurrent use; the owning Cursor serializes access.
type MetricsCollector struct {
	windowSize  int           // number of heights to track
	blockTimes  []blockRecord // ring buffer of advance records
	transitions []Transition  // recent state changes
	lastResetAt *time.Time
	resetCount  int
}

// RecordBlock records the time the block cursor reached a height.
func (mc *MetricsCollector) RecordBlock(height uint64, at time.Time) {
	record := blockRecord{
		Height:     height,
		AdvancedAt: at,
	}

	if len(mc.blockTimes) >= mc.windowSize {
		copy(mc.blockTimes, mc.blockTimes[1:])
		mc.blockTimes[len(mc.blockTimes)-1] = record
	} else {
		mc.blockTimes = append(mc.blockTimes, record)
	}
}

// RecordTransition records a state transition.
func (mc *MetricsCollector) RecordTransition(t Transition) {
	// Keep only last 10 transitions
	if len(mc.transitions) >= 10 {
		copy(mc.transitions, mc.transitions[1:])
		mc.transitions[len(mc.transitions)-1] = t
	} else {
		mc.transitions = append(mc.transitions, t)
	}

	if t.To == StateResetting {
		at := t.Timestamp
		mc.lastResetAt = &at
		mc.resetCount++
		// Throughput across a reset is meaningless.
		mc.blockTimes = mc.blockTimes[:0]
	}
}

// GetMetrics returns current metrics.
func (mc *MetricsCollector) GetMetrics() Metrics {
	m := Metrics{
		LastResetAt:  mc.lastResetAt,
		ResetCount:   mc.resetCount,
		StateHistory: make([]Transition, len(mc.transitions)),
	}
	copy(m.StateHistory, mc.transitions)

	if len(mc.blockTimes) >= 2 {
		first := mc.blockTimes[0]
		last := mc.blockTimes[len(mc.blockTimes)-1]
		duration := last.AdvancedAt.Sub(first.AdvancedAt)
		heights := float64(last.Height - first.Height)

		if duration > 0 && heights > 0 {
			m.BlocksPerSecond = heights / duration.Seconds()
			m.AverageBlockTime = time.Duration(float64(duration) / heights)
		}
	}

	return m
}

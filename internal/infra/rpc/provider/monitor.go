package provider

import (
	"sync"
	"time"
)

// ProviderStatus represents the health state of a provider.
type ProviderStatus int

const (
	StatusHealthy  ProviderStatus = iota // Provider is working normally
	StatusDegraded                       // Provider is slow or failing intermittently
	StatusDown                           // Provider has failed repeatedly
)

func (s ProviderStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

// MonitorStats holds monitoring statistics for a provider.
type MonitorStats struct {
	Status              ProviderStatus `json:"status"`
	AverageLatency      time.Duration  `json:"average_latency"`
	ConsecutiveFailures int            `json:"consecutive_failures"`
	RequestsLastMinute  int            `json:"requests_last_minute"`
	TotalRequests       int            `json:"total_requests"`
	TotalFailures       int            `json:"total_failures"`
}

// ProviderMonitor tracks provider latency and failure streaks.
type ProviderMonitor struct {
	mu sync.RWMutex

	// Response time tracking
	recentLatencies  []time.Duration
	maxLatencyWindow int

	// Failure tracking
	consecutiveFailures int
	totalFailures       int
	totalRequests       int

	// Sliding window
	requestTimestamps []time.Time
	windowDuration    time.Duration

	// Thresholds
	slowResponseThreshold time.Duration
	downAfterFailures     int
}

// NewProviderMonitor creates a new monitor with default settings.
func NewProviderMonitor() *ProviderMonitor {
	return &ProviderMonitor{
		recentLatencies:       make([]time.Duration, 0, 100),
		maxLatencyWindow:      100,
		requestTimestamps:     make([]time.Time, 0),
		windowDuration:        time.Minute,
		slowResponseThreshold: 3 * time.Second,
		downAfterFailures:     3,
	}
}

// RecordRequest records a successful request with its latency.
func (pm *ProviderMonitor) RecordRequest(latency time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	now := time.Now()

	pm.recentLatencies = append(pm.recentLatencies, latency)
	if len(pm.recentLatencies) > pm.maxLatencyWindow {
		pm.recentLatencies = pm.recentLatencies[1:]
	}

	pm.consecutiveFailures = 0
	pm.totalRequests++
	pm.trackLocked(now)
}

// RecordFailure records a failed request.
func (pm *ProviderMonitor) RecordFailure() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.consecutiveFailures++
	pm.totalFailures++
	pm.totalRequests++
	pm.trackLocked(time.Now())
}

func (pm *ProviderMonitor) trackLocked(now time.Time) {
	pm.requestTimestamps = append(pm.requestTimestamps, now)

	cutoff := now.Add(-pm.windowDuration)
	i := 0
	for i < len(pm.requestTimestamps) && !pm.requestTimestamps[i].After(cutoff) {
		i++
	}
	pm.requestTimestamps = pm.requestTimestamps[i:]
}

// CheckProviderStatus returns the current status of the provider.
func (pm *ProviderMonitor) CheckProviderStatus() ProviderStatus {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.consecutiveFailures >= pm.downAfterFailures {
		return StatusDown
	}
	if pm.consecutiveFailures > 0 {
		return StatusDegraded
	}

	if avg := pm.averageLatencyLocked(); len(pm.recentLatencies) > 10 && avg > pm.slowResponseThreshold {
		return StatusDegraded
	}

	return StatusHealthy
}

func (pm *ProviderMonitor) averageLatencyLocked() time.Duration {
	if len(pm.recentLatencies) == 0 {
		return 0
	}

	var total time.Duration
	for _, lat := range pm.recentLatencies {
		total += lat
	}
	return total / time.Duration(len(pm.recentLatencies))
}

// GetRequestCount returns number of requests in the given duration.
func (pm *ProviderMonitor) GetRequestCount(duration time.Duration) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	cutoff := time.Now().Add(-duration)
	count := 0
	for _, t := range pm.requestTimestamps {
		if t.After(cutoff) {
			count++
		}
	}
	return count
}

// GetStats returns current monitoring statistics.
func (pm *ProviderMonitor) GetStats() MonitorStats {
	status := pm.CheckProviderStatus()
	lastMinute := pm.GetRequestCount(time.Minute)

	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return MonitorStats{
		Status:              status,
		AverageLatency:      pm.averageLatencyLocked(),
		ConsecutiveFailures: pm.consecutiveFailures,
		RequestsLastMinute:  lastMinute,
		TotalRequests:       pm.totalRequests,
		TotalFailures:       pm.totalFailures,
	}
}

// Reset clears all tracked state.
func (pm *ProviderMonitor) Reset() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.recentLatencies = pm.recentLatencies[:0]
	pm.requestTimestamps = pm.requestTimestamps[:0]
	pm.consecutiveFailures = 0
	pm.totalFailures = 0
	pm.totalRequests = 0
}

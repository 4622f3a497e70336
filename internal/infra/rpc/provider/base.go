package provider

import (
	"sync"
	"time"
)

// BaseProvider implements common provider functionality.
// It handles health tracking and basic status checks.
type BaseProvider struct {
	Name string

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int

	Monitor *ProviderMonitor
}

// NewBaseProvider creates a new BaseProvider.
func NewBaseProvider(name string) *BaseProvider {
	return &BaseProvider{
		Name: name,
		health: HealthStatus{
			Available: true,
		},
		Monitor: NewProviderMonitor(),
	}
}

// GetName returns the provider's name.
func (p *BaseProvider) GetName() string {
	return p.Name
}

// GetHealth returns the provider's health status.
func (p *BaseProvider) GetHealth() HealthStatus {
	p.mu.RLock()
	h := p.health
	p.mu.RUnlock()

	stats := p.Monitor.GetStats()
	h.MonitorStats = &stats
	return h
}

// IsAvailable checks if the provider is available.
func (p *BaseProvider) IsAvailable() bool {
	return p.Monitor.CheckProviderStatus() != StatusDown
}

// RecordSuccess records a completed round trip.
func (p *BaseProvider) RecordSuccess(latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.successCount++
	p.requestCount++
	p.totalLatency += latency
	p.health.LastSuccessAt = time.Now()
	p.health.Available = true

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}
	if p.successCount > 0 {
		p.health.Latency = p.totalLatency / time.Duration(p.successCount)
	}

	p.Monitor.RecordRequest(latency)
}

// RecordFailure records a transport failure.
func (p *BaseProvider) RecordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failureCount++
	p.requestCount++
	p.health.LastFailureAt = time.Now()

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}

	if p.health.ErrorRate > 0.5 {
		p.health.Available = false
	}

	p.Monitor.RecordFailure()
}

// ResetHealth clears counters, used when the provider is pointed at a new node.
func (p *BaseProvider) ResetHealth() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.health = HealthStatus{Available: true}
	p.totalLatency = 0
	p.successCount = 0
	p.failureCount = 0
	p.requestCount = 0
	p.Monitor.Reset()
}

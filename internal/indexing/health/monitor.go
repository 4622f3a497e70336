package health

import (
	"context"
	"time"

	"github.com/vietddude/gtasmon/internal/core/cursor"
	"github.com/vietddude/gtasmon/internal/indexing/poller"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

// StatusSource reports the poller's state.
type StatusSource interface {
	Status() poller.Status
}

// ProviderHealth reports transport health.
type ProviderHealth interface {
	GetHealth() rpc.HealthStatus
}

// CursorMetrics reports cursor throughput and reset history.
type CursorMetrics interface {
	GetMetrics() cursor.Metrics
}

// Thresholds decide when the monitor is degraded or critical.
type Thresholds struct {
	DegradedLag int64         // block lag above which status is degraded
	CriticalLag int64         // block lag above which status is critical
	StaleAfter  time.Duration // no successful poll for this long is critical
}

// DefaultThresholds returns defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DegradedLag: 10,
		CriticalLag: 100,
		StaleAfter:  30 * time.Second,
	}
}

// Monitor aggregates health status from the poller and the RPC transport.
type Monitor struct {
	source     StatusSource
	provider   ProviderHealth
	cursor     CursorMetrics
	thresholds Thresholds
	now        func() time.Time
}

// NewMonitor creates a new health monitor. provider and metrics may be nil.
func NewMonitor(source StatusSource, provider ProviderHealth, metrics CursorMetrics, thresholds Thresholds) *Monitor {
	return &Monitor{
		source:     source,
		provider:   provider,
		cursor:     metrics,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// CheckHealth builds a report from the current state.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	st := m.source.Status()

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Node: NodeHealth{
			Endpoint:    st.Endpoint,
			Status:      st.NodeStatus,
			BlockHeight: st.NodeBlockHeight,
			GroupHeight: st.NodeGroupHeight,
		},
		Cursor:   st.Cursor,
		BlockLag: st.Lag,
		Caches: CacheHealth{
			Blocks: st.BlockCount,
			Groups: st.GroupCount,
			Recent: st.RecentCount,
		},
		Session:    st.Session,
		Resets:     st.Resets,
		LastPollAt: st.LastPollAt,
		LastError:  st.LastError,
	}

	if m.cursor != nil {
		cm := m.cursor.GetMetrics()
		report.Throughput = &cm
	}

	var providerStatus rpc.ProviderStatus
	if m.provider != nil {
		h := m.provider.GetHealth()
		report.RPC = &h
		if h.MonitorStats != nil {
			providerStatus = h.MonitorStats.Status
		}
	}

	switch {
	case st.LastSuccessAt.IsZero() && st.Polls > 0,
		!st.LastSuccessAt.IsZero() && m.now().Sub(st.LastSuccessAt) > m.thresholds.StaleAfter,
		st.Lag > m.thresholds.CriticalLag,
		providerStatus == rpc.StatusDown:
		report.SystemStatus = StatusCritical
	case st.LastError != "",
		st.Lag > m.thresholds.DegradedLag,
		providerStatus == rpc.StatusDegraded:
		report.SystemStatus = StatusDegraded
	}

	return report
}

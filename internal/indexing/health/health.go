// Package health provides system health monitoring and the HTTP API that
// serves cache snapshots to renderers.
package health

import (
	"time"

	"github.com/vietddude/gtasmon/internal/core/cursor"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

// SystemStatus represents the overall health state of the monitor.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// NodeHealth describes the node being watched.
type NodeHealth struct {
	Endpoint    string `json:"endpoint"`
	Status      string `json:"status"`
	BlockHeight uint64 `json:"block_height"`
	GroupHeight uint64 `json:"group_height"`
}

// CacheHealth holds cache sizes.
type CacheHealth struct {
	Blocks int `json:"blocks"`
	Groups int `json:"groups"`
	Recent int `json:"recent"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus      `json:"system_status"`
	Node         NodeHealth        `json:"node"`
	Cursor       cursor.Snapshot   `json:"cursor"`
	Throughput   *cursor.Metrics   `json:"throughput,omitempty"`
	BlockLag     int64             `json:"block_lag"`
	Caches       CacheHealth       `json:"caches"`
	Session      string            `json:"session"`
	Resets       uint64            `json:"resets"`
	LastPollAt   time.Time         `json:"last_poll_at"`
	LastError    string            `json:"last_error,omitempty"`
	RPC          *rpc.HealthStatus `json:"rpc,omitempty"`
}

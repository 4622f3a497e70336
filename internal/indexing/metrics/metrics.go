package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCCallsTotal tracks node RPC calls per method
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtasmon_rpc_calls_total",
			Help: "Total number of node RPC calls",
		},
		[]string{"method"},
	)

	// RPCErrorsTotal tracks node RPC errors per method and kind
	// (transport, rpc, application)
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtasmon_rpc_errors_total",
			Help: "Total number of node RPC errors",
		},
		[]string{"method", "kind"},
	)

	// RPCLatency tracks node RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gtasmon_rpc_latency_seconds",
			Help:    "Node RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// BlockFetches tracks per-height block fetches by result
	BlockFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtasmon_block_fetches_total",
			Help: "Total number of per-height block fetches",
		},
		[]string{"result"},
	)

	// GroupFetches tracks ranged group queries by result
	GroupFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtasmon_group_fetches_total",
			Help: "Total number of ranged group queries",
		},
		[]string{"result"},
	)

	// SyncDuration tracks sync pass duration per view
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gtasmon_sync_duration_seconds",
			Help:    "Sync pass duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	// NodeHeight tracks the heights reported by the node
	NodeHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gtasmon_node_height",
			Help: "Height reported by the node dashboard",
		},
		[]string{"view"},
	)

	// CursorHeight tracks the local sync cursor
	CursorHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gtasmon_cursor_height",
			Help: "Local sync cursor height",
		},
		[]string{"view"},
	)

	// CacheSize tracks the number of cached records per view
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gtasmon_cache_size",
			Help: "Number of cached records",
		},
		[]string{"view"},
	)

	// ResetsTotal tracks cache resets by reason (restart, endpoint)
	ResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtasmon_resets_total",
			Help: "Total number of cache resets",
		},
		[]string{"reason"},
	)

	// PollsTotal tracks dashboard polls by result
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtasmon_polls_total",
			Help: "Total number of dashboard polls",
		},
		[]string{"result"},
	)

	// EventsEmitted tracks cache change events per view
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtasmon_events_emitted_total",
			Help: "Total number of cache changed events emitted",
		},
		[]string{"view"},
	)
)

// Package provider implements the transport to a node's JSON-RPC endpoint.
//
// This package contains:
//   - Provider interface: core abstraction for an RPC endpoint
//   - HTTPProvider: JSON-RPC 2.0 over HTTP POST
//   - BaseProvider: shared health bookkeeping
//   - ProviderMonitor: latency and failure tracking
package provider

import (
	"context"
	"encoding/json"
	"time"
)

// Provider defines the interface for a node RPC endpoint.
type Provider interface {
	// GetName returns provider identifier
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// IsAvailable checks if the provider is healthy enough to use
	IsAvailable() bool

	// Call performs a single JSON-RPC request and returns the decoded envelope.
	// Transport and decoding failures are returned as errors; an envelope
	// carrying an "error" member is returned as-is for the caller to classify.
	Call(ctx context.Context, method string, params []any) (*Response, error)

	// Close cleans up resources
	Close() error
}

// Request is the JSON-RPC 2.0 request body.
type Request struct {
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
}

// Response is the JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is the "error" member of a JSON-RPC response.
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	MonitorStats  *MonitorStats `json:"monitor_stats,omitempty"`
}

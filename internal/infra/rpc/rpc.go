// Package rpc provides the JSON-RPC client used to talk to a TAS node.
//
// Every call resolves to exactly one of four outcomes:
//   - success: the result envelope's message is "success" and Data holds the payload
//   - *AppError: the node answered with a non-success result message
//   - *RPCError: the response carried a JSON-RPC "error" member
//   - *TransportError: the request could not be completed or decoded
//
// # Quick Start
//
//	import "github.com/vietddude/gtasmon/internal/infra/rpc"
//
//	p := rpc.NewHTTPProvider("node", "http://127.0.0.1:8101", 10*time.Second)
//	client := rpc.NewClient(p)
//
//	res, err := client.Call(ctx, "GTAS_getBlock", 42)
//	switch {
//	case rpc.IsTransport(err):
//	    // node unreachable
//	case err != nil:
//	    // node answered with an error
//	}
//
// # Package Structure
//
//   - provider/ - HTTP transport, health and latency monitoring
//   - client.go - Envelope classification
//   - retry.go  - Backoff for one-shot user calls
//   - errors.go - Error taxonomy
//
// Provider types are re-exported at the root level for convenience.
package rpc

import (
	"time"

	"github.com/vietddude/gtasmon/internal/infra/rpc/provider"
)

// =============================================================================
// Re-exported types from provider package
// =============================================================================

// Provider is the core interface for RPC endpoints.
type Provider = provider.Provider

// HTTPProvider implements Provider for JSON-RPC over HTTP.
type HTTPProvider = provider.HTTPProvider

// HealthStatus represents the health state of a provider.
type HealthStatus = provider.HealthStatus

// MonitorStats holds latency and failure counters of a provider.
type MonitorStats = provider.MonitorStats

// ProviderStatus represents the health state of a provider.
type ProviderStatus = provider.ProviderStatus

// Provider status constants.
const (
	StatusHealthy  = provider.StatusHealthy
	StatusDegraded = provider.StatusDegraded
	StatusDown     = provider.StatusDown
)

// NewHTTPProvider creates a new HTTP-based RPC provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return provider.NewHTTPProvider(name, endpoint, timeout)
}

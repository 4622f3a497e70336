package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrNoEndpoint is returned when Call is made before an endpoint is set.
var ErrNoEndpoint = errors.New("no endpoint configured")

// requestID is sent with every call. Requests are never multiplexed on one
// connection, so a fixed id is enough.
const requestID = "1"

// HTTPProvider implements Provider for JSON-RPC 2.0 over HTTP.
type HTTPProvider struct {
	*BaseProvider

	endpointMu sync.RWMutex
	endpoint   string
	httpClient *http.Client
}

// NewHTTPProvider creates a new HTTP-based RPC provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		BaseProvider: NewBaseProvider(name),
		endpoint:     endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Endpoint returns the URL calls are currently sent to.
func (p *HTTPProvider) Endpoint() string {
	p.endpointMu.RLock()
	defer p.endpointMu.RUnlock()
	return p.endpoint
}

// SetEndpoint points the provider at another node.
// Calls already in flight complete against the old URL.
func (p *HTTPProvider) SetEndpoint(endpoint string) {
	p.endpointMu.Lock()
	p.endpoint = endpoint
	p.endpointMu.Unlock()

	p.httpClient.CloseIdleConnections()
	p.ResetHealth()
}

// Call makes a single JSON-RPC call.
func (p *HTTPProvider) Call(ctx context.Context, method string, params []any) (*Response, error) {
	start := time.Now()

	endpoint := p.Endpoint()
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}

	if params == nil {
		params = []any{}
	}
	jsonData, err := json.Marshal(Request{
		Method:  method,
		Params:  params,
		JSONRPC: "2.0",
		ID:      requestID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		p.RecordFailure()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.RecordFailure()
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.RecordFailure()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.RecordFailure()
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp Response
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		p.RecordFailure()
		return nil, fmt.Errorf("parse response: %w", err)
	}

	p.RecordSuccess(time.Since(start))
	return &rpcResp, nil
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

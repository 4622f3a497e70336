package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/gtasmon/internal/indexing/metrics"
)

// SuccessMessage is the result message a node sets on successful calls.
const SuccessMessage = "success"

// ErrNoData is wrapped in a TransportError when a successful result carries no data.
var ErrNoData = errors.New("missing result data")

// Result is the node's result envelope.
type Result struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is the high-level interface for making RPC calls.
// This is what application layers should use.
type Client struct {
	provider Provider
	retry    RetryConfig
}

// NewClient creates a new RPC client.
func NewClient(p Provider) *Client {
	return &Client{
		provider: p,
		retry:    DefaultRetryConfig,
	}
}

// WithRetry returns a copy of the client using the given retry config for CallWithRetry.
func (c *Client) WithRetry(cfg RetryConfig) *Client {
	cp := *c
	cp.retry = cfg
	return &cp
}

// Call makes a single RPC call and classifies the outcome.
func (c *Client) Call(ctx context.Context, method string, params ...any) (*Result, error) {
	start := time.Now()
	result, err := c.call(ctx, method, params)

	metrics.RPCCallsTotal.WithLabelValues(method).Inc()
	metrics.RPCLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RPCErrorsTotal.WithLabelValues(method, errorKind(err)).Inc()
	}
	return result, err
}

func (c *Client) call(ctx context.Context, method string, params []any) (*Result, error) {
	resp, err := c.provider.Call(ctx, method, params)
	if err != nil {
		return nil, &TransportError{Op: method, Err: err}
	}

	if resp.Error != nil {
		return nil, &RPCError{Method: method, Code: resp.Error.Code, Message: resp.Error.Message}
	}

	var result Result
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("empty result")}
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("parse result: %w", err)}
	}

	if result.Message != SuccessMessage {
		return nil, &AppError{Method: method, Message: result.Message}
	}

	return &result, nil
}

// CallInto makes a call and decodes the result data into out.
func (c *Client) CallInto(ctx context.Context, out any, method string, params ...any) error {
	result, err := c.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	return decodeData(method, result, out)
}

// CallWithRetry is like CallInto but retries transport failures with backoff.
func (c *Client) CallWithRetry(ctx context.Context, out any, method string, params ...any) error {
	result, err := callWithRetry(ctx, c.retry, func(ctx context.Context) (*Result, error) {
		return c.Call(ctx, method, params...)
	})
	if err != nil {
		return err
	}
	return decodeData(method, result, out)
}

func errorKind(err error) string {
	switch {
	case IsTransport(err):
		return "transport"
	case IsRPC(err):
		return "rpc"
	default:
		return "application"
	}
}

func decodeData(method string, result *Result, out any) error {
	if out == nil {
		return nil
	}
	if len(result.Data) == 0 || string(result.Data) == "null" {
		return &TransportError{Op: method, Err: ErrNoData}
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return &TransportError{Op: method, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

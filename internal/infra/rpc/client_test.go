package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vietddude/gtasmon/internal/infra/rpc/provider"
)

// MockProvider implements provider.Provider with canned envelopes.
type MockProvider struct {
	name      string
	responses []mockResponse
	callCount int
	methods   []string
}

type mockResponse struct {
	resp *provider.Response
	err  error
}

func (m *MockProvider) GetName() string {
	return m.name
}

func (m *MockProvider) Call(ctx context.Context, method string, params []any) (*provider.Response, error) {
	m.methods = append(m.methods, method)
	i := m.callCount
	m.callCount++
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	r := m.responses[i]
	return r.resp, r.err
}

func (m *MockProvider) GetHealth() provider.HealthStatus {
	return provider.HealthStatus{Available: true}
}

func (m *MockProvider) IsAvailable() bool {
	return true
}

func (m *MockProvider) Close() error {
	return nil
}

func resultEnvelope(message string, data string) mockResponse {
	raw, _ := json.Marshal(map[string]json.RawMessage{
		"message": json.RawMessage(fmt.Sprintf("%q", message)),
		"data":    json.RawMessage(data),
	})
	return mockResponse{resp: &provider.Response{JSONRPC: "2.0", Result: raw}}
}

func TestClient_Call_Classification(t *testing.T) {
	tests := []struct {
		name      string
		response  mockResponse
		wantErr   bool
		transport bool
		rpcErr    bool
		appErr    bool
	}{
		{
			name:     "success",
			response: resultEnvelope("success", `{"height":3}`),
		},
		{
			name:     "application message",
			response: resultEnvelope("block not found", `null`),
			wantErr:  true,
			appErr:   true,
		},
		{
			name: "error member",
			response: mockResponse{resp: &provider.Response{
				Error: &provider.ErrorObject{Code: -32000, Message: "boom"},
			}},
			wantErr: true,
			rpcErr:  true,
			appErr:  true,
		},
		{
			name:      "transport failure",
			response:  mockResponse{err: errors.New("connection refused")},
			wantErr:   true,
			transport: true,
		},
		{
			name:      "missing result",
			response:  mockResponse{resp: &provider.Response{JSONRPC: "2.0"}},
			wantErr:   true,
			transport: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(&MockProvider{name: "mock", responses: []mockResponse{tt.response}})

			res, err := c.Call(context.Background(), "GTAS_getBlock", 3)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Call() error = %v, wantErr %v", err, tt.wantErr)
			}
			if IsTransport(err) != tt.transport {
				t.Errorf("IsTransport = %v, want %v", IsTransport(err), tt.transport)
			}
			if IsRPC(err) != tt.rpcErr {
				t.Errorf("IsRPC = %v, want %v", IsRPC(err), tt.rpcErr)
			}
			if IsApplication(err) != tt.appErr {
				t.Errorf("IsApplication = %v, want %v", IsApplication(err), tt.appErr)
			}
			if !tt.wantErr && res.Message != SuccessMessage {
				t.Errorf("unexpected message %q", res.Message)
			}
		})
	}
}

func TestClient_AppErrorCarriesMessage(t *testing.T) {
	c := NewClient(&MockProvider{responses: []mockResponse{resultEnvelope("group not found", `null`)}})

	_, err := c.Call(context.Background(), "GTAS_getGroupsAfter", 0)

	var ae *AppError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if ae.Message != "group not found" {
		t.Errorf("expected node message, got %q", ae.Message)
	}
}

func TestClient_CallInto(t *testing.T) {
	c := NewClient(&MockProvider{responses: []mockResponse{resultEnvelope("success", `{"height":9,"hash":"0xab"}`)}})

	var out struct {
		Height uint64 `json:"height"`
		Hash   string `json:"hash"`
	}
	if err := c.CallInto(context.Background(), &out, "GTAS_getBlock", 9); err != nil {
		t.Fatalf("CallInto failed: %v", err)
	}
	if out.Height != 9 || out.Hash != "0xab" {
		t.Errorf("unexpected decode: %+v", out)
	}
}

func TestClient_CallInto_NullData(t *testing.T) {
	c := NewClient(&MockProvider{responses: []mockResponse{resultEnvelope("success", `null`)}})

	var out map[string]any
	if err := c.CallInto(context.Background(), &out, "GTAS_getBlock", 9); !IsTransport(err) {
		t.Fatalf("expected transport error for null data, got %v", err)
	}
}

func TestClient_CallWithRetry(t *testing.T) {
	fast := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiple: 1}

	t.Run("retries transport then succeeds", func(t *testing.T) {
		m := &MockProvider{responses: []mockResponse{
			{err: errors.New("timeout")},
			resultEnvelope("success", `{"hash":"0x1"}`),
		}}
		c := NewClient(m).WithRetry(fast)

		var out map[string]any
		if err := c.CallWithRetry(context.Background(), &out, "GTAS_blockDetail", "0x1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.callCount != 2 {
			t.Errorf("expected 2 calls, got %d", m.callCount)
		}
	})

	t.Run("does not retry application error", func(t *testing.T) {
		m := &MockProvider{responses: []mockResponse{resultEnvelope("no such block", `null`)}}
		c := NewClient(m).WithRetry(fast)

		err := c.CallWithRetry(context.Background(), nil, "GTAS_blockDetail", "0x1")
		if !IsApplication(err) {
			t.Fatalf("expected application error, got %v", err)
		}
		if m.callCount != 1 {
			t.Errorf("expected 1 call, got %d", m.callCount)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		m := &MockProvider{responses: []mockResponse{{err: errors.New("refused")}}}
		c := NewClient(m).WithRetry(fast)

		err := c.CallWithRetry(context.Background(), nil, "GTAS_blockDetail", "0x1")
		if !IsTransport(err) {
			t.Fatalf("expected wrapped transport error, got %v", err)
		}
		if m.callCount != 3 {
			t.Errorf("expected 3 calls, got %d", m.callCount)
		}
	})
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffMultiple: 2}

	if d := calculateBackoff(0, cfg); d != 100*time.Millisecond {
		t.Errorf("attempt 0: got %v", d)
	}
	if d := calculateBackoff(1, cfg); d != 200*time.Millisecond {
		t.Errorf("attempt 1: got %v", d)
	}
	if d := calculateBackoff(5, cfg); d != 300*time.Millisecond {
		t.Errorf("attempt 5: expected cap, got %v", d)
	}
}

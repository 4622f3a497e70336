package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/gtasmon/internal/core/cursor"
	"github.com/vietddude/gtasmon/internal/core/domain"
	"github.com/vietddude/gtasmon/internal/indexing/poller"
	"github.com/vietddude/gtasmon/internal/infra/chain/tas"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

// =============================================================================
// Mocks
// =============================================================================

type stubSource struct {
	status poller.Status
}

func (s *stubSource) Status() poller.Status { return s.status }

type stubProvider struct {
	status rpc.ProviderStatus
}

func (s *stubProvider) GetHealth() rpc.HealthStatus {
	return rpc.HealthStatus{
		Available:    s.status != rpc.StatusDown,
		MonitorStats: &rpc.MonitorStats{Status: s.status},
	}
}

type stubAPI struct {
	dashboard   *domain.Dashboard
	blocks      []*domain.Block
	groups      []*domain.Group
	recent      []string
	detailErr   error
	endpoint    string
	endpointErr error
	workGroups  []*domain.Group
	workHeight  uint64
	node        *tas.Adapter // when set, lookups go to a real adapter
}

func (s *stubAPI) Dashboard() *domain.Dashboard { return s.dashboard }
func (s *stubAPI) Blocks() []*domain.Block      { return s.blocks }
func (s *stubAPI) Groups() []*domain.Group      { return s.groups }
func (s *stubAPI) Recent() []string             { return s.recent }

func (s *stubAPI) QueryBlock(ctx context.Context, hash string) (*domain.BlockDetail, error) {
	if s.node != nil {
		return s.node.BlockDetail(ctx, hash)
	}
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	s.recent = append([]string{hash}, s.recent...)
	return &domain.BlockDetail{Block: domain.Block{Hash: hash, Height: 9}}, nil
}

func (s *stubAPI) WorkGroup(ctx context.Context, height uint64) ([]*domain.Group, error) {
	if s.node != nil {
		return s.node.WorkGroup(ctx, height)
	}
	s.workHeight = height
	return s.workGroups, nil
}

func (s *stubAPI) SetEndpoint(endpoint string) error {
	if s.endpointErr != nil {
		return s.endpointErr
	}
	s.endpoint = endpoint
	return nil
}

func healthyStatus() poller.Status {
	now := time.Now()
	return poller.Status{
		Endpoint:        "http://127.0.0.1:8101",
		NodeStatus:      "running",
		NodeBlockHeight: 100,
		Lag:             5,
		Polls:           10,
		LastPollAt:      now,
		LastSuccessAt:   now,
	}
}

// =============================================================================
// Monitor Tests
// =============================================================================

func TestMonitor_CheckHealth(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *poller.Status)
		provider rpc.ProviderStatus
		want     SystemStatus
	}{
		{"healthy", func(s *poller.Status) {}, rpc.StatusHealthy, StatusHealthy},
		{"lagging", func(s *poller.Status) { s.Lag = 50 }, rpc.StatusHealthy, StatusDegraded},
		{"far behind", func(s *poller.Status) { s.Lag = 200 }, rpc.StatusHealthy, StatusCritical},
		{"last poll failed", func(s *poller.Status) { s.LastError = "connection refused" }, rpc.StatusHealthy, StatusDegraded},
		{"provider degraded", func(s *poller.Status) {}, rpc.StatusDegraded, StatusDegraded},
		{"provider down", func(s *poller.Status) {}, rpc.StatusDown, StatusCritical},
		{"stale", func(s *poller.Status) { s.LastSuccessAt = time.Now().Add(-time.Minute) }, rpc.StatusHealthy, StatusCritical},
		{"never succeeded", func(s *poller.Status) { s.LastSuccessAt = time.Time{} }, rpc.StatusHealthy, StatusCritical},
		{"not polled yet", func(s *poller.Status) { s.Polls = 0; s.LastSuccessAt = time.Time{} }, rpc.StatusHealthy, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := healthyStatus()
			tt.mutate(&st)
			m := NewMonitor(&stubSource{status: st}, &stubProvider{status: tt.provider}, nil, DefaultThresholds())

			report := m.CheckHealth(context.Background())
			if report.SystemStatus != tt.want {
				t.Errorf("expected %s, got %s", tt.want, report.SystemStatus)
			}
		})
	}
}

func TestMonitor_ReportFields(t *testing.T) {
	st := healthyStatus()
	st.BlockCount = 3
	st.GroupCount = 2
	st.RecentCount = 1
	m := NewMonitor(&stubSource{status: st}, nil, nil, DefaultThresholds())

	report := m.CheckHealth(context.Background())
	if report.Node.BlockHeight != 100 || report.Node.Status != "running" {
		t.Errorf("unexpected node health: %+v", report.Node)
	}
	if report.Caches != (CacheHealth{Blocks: 3, Groups: 2, Recent: 1}) {
		t.Errorf("unexpected caches: %+v", report.Caches)
	}
	if report.RPC != nil {
		t.Errorf("expected no rpc section without provider")
	}
	if report.Throughput != nil {
		t.Errorf("expected no throughput section without cursor")
	}
}

func TestMonitor_CursorThroughput(t *testing.T) {
	c := cursor.New()
	for h := uint64(1); h <= 3; h++ {
		if err := c.AdvanceBlock(c.Epoch(), h); err != nil {
			t.Fatalf("AdvanceBlock failed: %v", err)
		}
	}
	c.Reset("node restarted")

	m := NewMonitor(&stubSource{status: healthyStatus()}, nil, c, DefaultThresholds())
	report := m.CheckHealth(context.Background())
	if report.Throughput == nil {
		t.Fatal("expected throughput section")
	}
	if report.Throughput.ResetCount != 1 || report.Throughput.LastResetAt == nil {
		t.Errorf("unexpected reset history: %+v", report.Throughput)
	}
	if len(report.Throughput.StateHistory) == 0 {
		t.Error("expected state history")
	}
}

func TestServer_DetailedIncludesThroughput(t *testing.T) {
	c := cursor.New()
	c.Reset("endpoint")
	m := NewMonitor(&stubSource{status: healthyStatus()}, nil, c, DefaultThresholds())
	srv := httptest.NewServer(NewServer(m, &stubAPI{}, 0, nil).Handler())
	defer srv.Close()

	var report struct {
		Throughput *struct {
			ResetCount int `json:"reset_count"`
		} `json:"throughput"`
	}
	getJSON(t, srv.URL+"/health/detailed", http.StatusOK, &report)
	if report.Throughput == nil || report.Throughput.ResetCount != 1 {
		t.Errorf("unexpected throughput: %+v", report.Throughput)
	}
}

// =============================================================================
// Server Tests
// =============================================================================

func newTestServer(st poller.Status, api *stubAPI) *httptest.Server {
	m := NewMonitor(&stubSource{status: st}, nil, nil, DefaultThresholds())
	return httptest.NewServer(NewServer(m, api, 0, nil).Handler())
}

func TestServer_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := newTestServer(healthyStatus(), &stubAPI{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		var body map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if body["status"] != "healthy" {
			t.Errorf("expected healthy, got %q", body["status"])
		}
	})

	t.Run("critical", func(t *testing.T) {
		st := healthyStatus()
		st.Lag = 500
		srv := newTestServer(st, &stubAPI{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", resp.StatusCode)
		}
	})
}

func TestServer_Snapshots(t *testing.T) {
	api := &stubAPI{
		dashboard: &domain.Dashboard{BlockHeight: 3, GroupHeight: 2},
		blocks:    []*domain.Block{{Height: 1}, {Height: 2}, {Height: 3}},
		groups:    []*domain.Group{{GroupID: "g1"}},
		recent:    []string{"0xb", "0xa"},
	}
	srv := newTestServer(healthyStatus(), api)
	defer srv.Close()

	var blocks []domain.Block
	getJSON(t, srv.URL+"/api/blocks", http.StatusOK, &blocks)
	if len(blocks) != 3 || blocks[2].Height != 3 {
		t.Errorf("unexpected blocks: %+v", blocks)
	}

	var groups []domain.Group
	getJSON(t, srv.URL+"/api/groups", http.StatusOK, &groups)
	if len(groups) != 1 || groups[0].GroupID != "g1" {
		t.Errorf("unexpected groups: %+v", groups)
	}

	var recent []string
	getJSON(t, srv.URL+"/api/recent", http.StatusOK, &recent)
	if len(recent) != 2 || recent[0] != "0xb" {
		t.Errorf("unexpected recent: %v", recent)
	}

	var dash domain.Dashboard
	getJSON(t, srv.URL+"/api/dashboard", http.StatusOK, &dash)
	if dash.BlockHeight != 3 {
		t.Errorf("unexpected dashboard: %+v", dash)
	}
}

func TestServer_EmptySnapshots(t *testing.T) {
	srv := newTestServer(healthyStatus(), &stubAPI{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/blocks")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if got := bytes.TrimSpace(buf.Bytes()); string(got) != "[]" {
		t.Errorf("expected [], got %s", got)
	}

	var body map[string]string
	getJSON(t, srv.URL+"/api/dashboard", http.StatusServiceUnavailable, &body)
}

func TestServer_BlockDetail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"found", nil, http.StatusOK},
		{"not found", &rpc.AppError{Method: "GTAS_blockDetail", Message: "block not found"}, http.StatusNotFound},
		{"node down", &rpc.TransportError{Op: "GTAS_blockDetail", Err: errors.New("connection refused")}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubAPI{detailErr: tt.err}
			srv := newTestServer(healthyStatus(), api)
			defer srv.Close()

			var detail domain.BlockDetail
			getJSON(t, srv.URL+"/api/blocks/0xabc", tt.code, &detail)
			if tt.err == nil {
				if detail.Hash != "0xabc" {
					t.Errorf("unexpected detail: %+v", detail)
				}
				if len(api.recent) != 1 || api.recent[0] != "0xabc" {
					t.Errorf("expected hash recorded, got %v", api.recent)
				}
			}
		})
	}
}

// nullNode answers every call with success and null data.
func nullNode(t *testing.T) *tas.Adapter {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":{"message":"success","data":null}}`))
	}))
	t.Cleanup(srv.Close)
	return tas.NewAdapter(rpc.NewClient(rpc.NewHTTPProvider("node", srv.URL, time.Second)))
}

func TestServer_BlockDetail_UnknownHash(t *testing.T) {
	srv := newTestServer(healthyStatus(), &stubAPI{node: nullNode(t)})
	defer srv.Close()

	var body map[string]string
	getJSON(t, srv.URL+"/api/blocks/0xdeadbeef", http.StatusNotFound, &body)
	if body["error"] == "" {
		t.Error("expected error message")
	}
}

func TestServer_WorkGroup(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		api := &stubAPI{workGroups: []*domain.Group{{GroupID: "w1", Height: 30}, {GroupID: "w2", Height: 31}}}
		srv := newTestServer(healthyStatus(), api)
		defer srv.Close()

		var groups []domain.Group
		getJSON(t, srv.URL+"/api/workgroups/30", http.StatusOK, &groups)
		if len(groups) != 2 || groups[1].GroupID != "w2" {
			t.Errorf("unexpected groups: %+v", groups)
		}
		if api.workHeight != 30 {
			t.Errorf("expected height 30, got %d", api.workHeight)
		}
	})

	t.Run("empty", func(t *testing.T) {
		srv := newTestServer(healthyStatus(), &stubAPI{node: nullNode(t)})
		defer srv.Close()

		var groups []domain.Group
		getJSON(t, srv.URL+"/api/workgroups/7", http.StatusOK, &groups)
		if len(groups) != 0 {
			t.Errorf("expected no groups, got %d", len(groups))
		}
	})

	t.Run("bad height", func(t *testing.T) {
		srv := newTestServer(healthyStatus(), &stubAPI{})
		defer srv.Close()

		var body map[string]string
		getJSON(t, srv.URL+"/api/workgroups/abc", http.StatusBadRequest, &body)
	})
}

func TestServer_SetEndpoint(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		api := &stubAPI{}
		srv := newTestServer(healthyStatus(), api)
		defer srv.Close()

		resp := postJSON(t, srv.URL+"/api/endpoint", `{"url":"http://10.0.0.2:8101"}`)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if api.endpoint != "http://10.0.0.2:8101" {
			t.Errorf("expected endpoint set, got %q", api.endpoint)
		}
	})

	t.Run("bad body", func(t *testing.T) {
		srv := newTestServer(healthyStatus(), &stubAPI{})
		defer srv.Close()

		resp := postJSON(t, srv.URL+"/api/endpoint", `not json`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		srv := newTestServer(healthyStatus(), &stubAPI{endpointErr: poller.ErrInvalidEndpoint})
		defer srv.Close()

		resp := postJSON(t, srv.URL+"/api/endpoint", `{"url":"nope"}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		srv := newTestServer(healthyStatus(), &stubAPI{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/endpoint")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(healthyStatus(), &stubAPI{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func getJSON(t *testing.T, url string, code int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != code {
		t.Fatalf("GET %s: expected %d, got %d", url, code, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("GET %s: decode failed: %v", url, err)
	}
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	resp.Body.Close()
	return resp
}

package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vietddude/gtasmon/internal/core/domain"
	"github.com/vietddude/gtasmon/internal/indexing/poller"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

// API is what the snapshot endpoints read from.
type API interface {
	Dashboard() *domain.Dashboard
	Blocks() []*domain.Block
	Groups() []*domain.Group
	Recent() []string
	QueryBlock(ctx context.Context, hash string) (*domain.BlockDetail, error)
	WorkGroup(ctx context.Context, height uint64) ([]*domain.Group, error)
	SetEndpoint(endpoint string) error
}

// Server provides HTTP endpoints for health monitoring and cache snapshots.
type Server struct {
	monitor *Monitor
	api     API
	server  *http.Server
	log     *slog.Logger
}

// NewServer creates a new health server.
func NewServer(monitor *Monitor, api API, port int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()
	s := &Server{
		monitor: monitor,
		api:     api,
		log:     log.With("component", "http"),
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/detailed", s.handleDetailed)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/blocks", s.handleBlocks)
	mux.HandleFunc("GET /api/blocks/{hash}", s.handleBlockDetail)
	mux.HandleFunc("GET /api/groups", s.handleGroups)
	mux.HandleFunc("GET /api/recent", s.handleRecent)
	mux.HandleFunc("GET /api/workgroups/{height}", s.handleWorkGroup)
	mux.HandleFunc("POST /api/endpoint", s.handleEndpoint)

	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())

	code := http.StatusOK
	if report.SystemStatus == StatusCritical {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]string{"status": string(report.SystemStatus)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.monitor.CheckHealth(r.Context()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := s.api.Dashboard()
	if d == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no dashboard yet")
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.api.Blocks()))
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.api.Groups()))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.api.Recent()))
}

func (s *Server) handleBlockDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.api.QueryBlock(r.Context(), r.PathValue("hash"))
	if err != nil {
		s.writeNodeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleWorkGroup(w http.ResponseWriter, r *http.Request) {
	height, err := strconv.ParseUint(r.PathValue("height"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid height")
		return
	}
	groups, err := s.api.WorkGroup(r.Context(), height)
	if err != nil {
		s.writeNodeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(groups))
}

// writeNodeError maps node lookup failures to status codes.
func (s *Server) writeNodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, poller.ErrEmptyHash):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case rpc.IsTransport(err):
		s.writeError(w, http.StatusBadGateway, err.Error())
	case rpc.IsApplication(err):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type endpointRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	var req endpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.api.SetEndpoint(req.URL); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"endpoint": req.URL})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("Failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}

// nonNil keeps empty caches encoded as [] instead of null.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Package poller drives the sync engines from the node's dashboard.
//
// Each cycle:
//
//	GTAS_dashboard → reset detector → block sync → group sync → refresh gate → emit
//
// Cycles run one at a time on the poller goroutine. A reset (node restart or
// endpoint change) clears the caches before any engine runs in that cycle.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/gtasmon/internal/core/cursor"
	"github.com/vietddude/gtasmon/internal/core/domain"
	"github.com/vietddude/gtasmon/internal/indexing/emitter"
	"github.com/vietddude/gtasmon/internal/indexing/metrics"
	"github.com/vietddude/gtasmon/internal/indexing/recent"
	"github.com/vietddude/gtasmon/internal/indexing/reset"
	"github.com/vietddude/gtasmon/internal/indexing/syncer"
	"github.com/vietddude/gtasmon/internal/indexing/throttle"
	"github.com/vietddude/gtasmon/internal/infra/chain"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

var (
	// ErrAlreadyRunning is returned by Start when the loop is active.
	ErrAlreadyRunning = errors.New("poller already running")

	// ErrInvalidEndpoint is returned by SetEndpoint for unusable URLs.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrEmptyHash is returned by QueryBlock for an empty hash.
	ErrEmptyHash = errors.New("empty block hash")
)

// Reset reasons, also used as metric labels.
const (
	ReasonRestart  = "restart"
	ReasonEndpoint = "endpoint"
)

// DefaultInterval is the fixed poll interval.
const DefaultInterval = time.Second

// EndpointSwitcher repoints the RPC transport at another node.
type EndpointSwitcher interface {
	Endpoint() string
	SetEndpoint(endpoint string)
}

// Config holds poller dependencies. Endpoint, Emitter and Catchup are
// optional.
type Config struct {
	Adapter  chain.Adapter
	Endpoint EndpointSwitcher
	Cursor   *cursor.Cursor
	Blocks   *syncer.BlockEngine
	Groups   *syncer.GroupEngine
	Detector *reset.Detector
	Recent   *recent.Cache
	Emitter  emitter.Emitter
	Catchup  *throttle.CatchupController
	Interval time.Duration
	Logger   *slog.Logger
}

// Status is a point-in-time summary for health reporting.
type Status struct {
	Running         bool            `json:"running"`
	Endpoint        string          `json:"endpoint"`
	Session         string          `json:"session"`
	Cursor          cursor.Snapshot `json:"cursor"`
	NodeStatus      string          `json:"node_status"`
	NodeBlockHeight uint64          `json:"node_block_height"`
	NodeGroupHeight uint64          `json:"node_group_height"`
	Lag             int64           `json:"lag"`
	BlockCount      int             `json:"block_count"`
	GroupCount      int             `json:"group_count"`
	RecentCount     int             `json:"recent_count"`
	Polls           uint64          `json:"polls"`
	Resets          uint64          `json:"resets"`
	LastPollAt      time.Time       `json:"last_poll_at"`
	LastSuccessAt   time.Time       `json:"last_success_at"`
	LastError       string          `json:"last_error,omitempty"`
}

// Poller runs dashboard poll cycles.
type Poller struct {
	cfg     Config
	log     *slog.Logger
	running atomic.Bool
	stop    chan struct{}
	once    sync.Once

	refresh map[domain.View]*throttle.Refresh

	// stateMu makes a cycle's reset decision atomic with endpoint changes.
	stateMu sync.Mutex

	mu            sync.RWMutex
	dashboard     *domain.Dashboard
	session       string
	lastPollAt    time.Time
	lastSuccessAt time.Time
	lastErr       error
	polls         uint64
	resets        uint64
}

// New creates a poller.
func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Recent == nil {
		cfg.Recent = recent.NewCache(recent.DefaultCapacity)
	}
	if cfg.Detector == nil {
		cfg.Detector = reset.NewDetector(reset.DefaultConfig())
	}
	return &Poller{
		cfg:  cfg,
		log:  cfg.Logger.With("component", "poller"),
		stop: make(chan struct{}),
		refresh: map[domain.View]*throttle.Refresh{
			domain.ViewBlocks: throttle.NewRefresh(),
			domain.ViewGroups: throttle.NewRefresh(),
		},
		session: uuid.NewString(),
	}
}

// Start runs poll cycles until ctx ends or Stop is called.
// The first cycle runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	interval := p.cfg.Interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.log.Info("Poller started", "interval", interval, "endpoint", p.endpoint())

	for {
		p.Poll(ctx)

		if next := p.nextInterval(); next != interval {
			interval = next
			ticker.Reset(interval)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-p.stop:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop stops the poll loop.
func (p *Poller) Stop() error {
	p.once.Do(func() { close(p.stop) })
	return nil
}

// IsRunning reports whether the poll loop is active.
func (p *Poller) IsRunning() bool {
	return p.running.Load()
}

// Poll runs one cycle. Sync failures never fail the cycle; the returned error
// is the dashboard call's, if any.
func (p *Poller) Poll(ctx context.Context) error {
	start := time.Now()
	epoch := p.cfg.Cursor.Epoch()

	dash, err := p.cfg.Adapter.Dashboard(ctx)
	if err != nil {
		p.stateMu.Lock()
		// An unreachable node counts as stopped so its return is seen as a restart.
		if rpc.IsTransport(err) && p.cfg.Cursor.Epoch() == epoch {
			p.cfg.Detector.ObserveStopped()
		}
		p.stateMu.Unlock()

		p.recordPoll(start, nil, err)
		metrics.PollsTotal.WithLabelValues("error").Inc()
		p.log.Warn("Dashboard poll failed", "error", err)
		return err
	}

	p.stateMu.Lock()
	if p.cfg.Cursor.Epoch() != epoch {
		// Endpoint changed while the call was in flight.
		p.stateMu.Unlock()
		p.log.Debug("Discarding dashboard from previous endpoint")
		return nil
	}
	if p.cfg.Detector.Observe(dash.NodeInfo.Status) {
		p.log.Info("Node restart detected, clearing caches",
			"status", dash.NodeInfo.Status,
			"block_height", dash.BlockHeight,
		)
		p.resetLocked(ReasonRestart)
	}
	epoch = p.cfg.Cursor.Epoch()
	p.stateMu.Unlock()

	metrics.NodeHeight.WithLabelValues(string(domain.ViewBlocks)).Set(float64(dash.BlockHeight))
	metrics.NodeHeight.WithLabelValues(string(domain.ViewGroups)).Set(float64(dash.GroupHeight))

	blockReport := p.cfg.Blocks.Sync(ctx, dash.BlockHeight)
	if p.cfg.Cursor.Epoch() == epoch {
		p.cfg.Groups.Sync(ctx, dash.GroupHeight)
	}

	p.recordPoll(start, dash, nil)
	metrics.PollsTotal.WithLabelValues("ok").Inc()

	snap := p.cfg.Cursor.Snapshot()
	metrics.CursorHeight.WithLabelValues(string(domain.ViewBlocks)).Set(float64(snap.BlockHeight))
	metrics.CursorHeight.WithLabelValues(string(domain.ViewGroups)).Set(float64(snap.GroupHeight))

	if blockReport.Applied > 0 {
		p.log.Debug("Blocks synced",
			"from", blockReport.From,
			"to", blockReport.To,
			"applied", blockReport.Applied,
			"cursor", blockReport.Cursor,
		)
	}

	p.emitChanges(ctx, snap.Epoch)
	return nil
}

// emitChanges emits one event per view whose size changed since last render.
func (p *Poller) emitChanges(ctx context.Context, epoch uint64) {
	sizes := map[domain.View]int{
		domain.ViewBlocks: p.cfg.Blocks.Len(),
		domain.ViewGroups: p.cfg.Groups.Len(),
	}
	session := p.Session()

	for _, view := range []domain.View{domain.ViewBlocks, domain.ViewGroups} {
		size := sizes[view]
		metrics.CacheSize.WithLabelValues(string(view)).Set(float64(size))

		if !p.refresh[view].ShouldRefresh(size) {
			continue
		}
		metrics.EventsEmitted.WithLabelValues(string(view)).Inc()
		if p.cfg.Emitter == nil {
			continue
		}
		if err := p.cfg.Emitter.Emit(ctx, emitter.NewEvent(view, size, epoch, session)); err != nil {
			p.log.Warn("Failed to emit cache change", "view", view, "error", err)
		}
	}
}

// SetEndpoint points the poller at another node and drops everything cached
// from the previous one. The recency cache is kept.
func (p *Poller) SetEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	if p.cfg.Endpoint == nil {
		return fmt.Errorf("%w: endpoint is fixed", ErrInvalidEndpoint)
	}

	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	old := p.cfg.Endpoint.Endpoint()
	p.cfg.Endpoint.SetEndpoint(endpoint)
	p.resetLocked(ReasonEndpoint)
	p.cfg.Detector.Forget()

	p.mu.Lock()
	p.dashboard = nil
	p.lastErr = nil
	p.mu.Unlock()

	p.log.Info("Endpoint changed", "from", old, "to", endpoint)
	return nil
}

// resetLocked clears caches and cursors. Must be called with stateMu held.
func (p *Poller) resetLocked(reason string) {
	epoch := p.cfg.Cursor.Reset(reason)
	p.cfg.Blocks.Reset()
	p.cfg.Groups.Reset()
	for _, r := range p.refresh {
		r.Forget()
	}

	p.mu.Lock()
	p.session = uuid.NewString()
	p.resets++
	p.mu.Unlock()

	metrics.ResetsTotal.WithLabelValues(reason).Inc()
	p.log.Debug("Caches reset", "reason", reason, "epoch", epoch)
}

// QueryBlock fetches a block's detail and records the hash as recently queried.
func (p *Poller) QueryBlock(ctx context.Context, hash string) (*domain.BlockDetail, error) {
	if hash == "" {
		return nil, ErrEmptyHash
	}
	detail, err := p.cfg.Adapter.BlockDetail(ctx, hash)
	if err != nil {
		return nil, err
	}
	p.cfg.Recent.Add(hash)
	return detail, nil
}

// WorkGroup returns the groups qualified to cast at height. It is a
// read-only lookup and touches no cache.
func (p *Poller) WorkGroup(ctx context.Context, height uint64) ([]*domain.Group, error) {
	return p.cfg.Adapter.WorkGroup(ctx, height)
}

// Dashboard returns the last dashboard snapshot, or nil before the first
// successful poll.
func (p *Poller) Dashboard() *domain.Dashboard {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dashboard
}

// Blocks returns the block cache ordered by height.
func (p *Poller) Blocks() []*domain.Block {
	return p.cfg.Blocks.Snapshot()
}

// Groups returns the group cache in insertion order.
func (p *Poller) Groups() []*domain.Group {
	return p.cfg.Groups.Snapshot()
}

// Recent returns recently queried hashes, newest first.
func (p *Poller) Recent() []string {
	return p.cfg.Recent.Recent()
}

// Session identifies the current epoch's cache contents.
func (p *Poller) Session() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

// Status returns a point-in-time summary.
func (p *Poller) Status() Status {
	p.mu.RLock()
	s := Status{
		Running:       p.running.Load(),
		Session:       p.session,
		Polls:         p.polls,
		Resets:        p.resets,
		LastPollAt:    p.lastPollAt,
		LastSuccessAt: p.lastSuccessAt,
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	if p.dashboard != nil {
		s.NodeStatus = p.dashboard.NodeInfo.Status
		s.NodeBlockHeight = p.dashboard.BlockHeight
		s.NodeGroupHeight = p.dashboard.GroupHeight
	}
	p.mu.RUnlock()

	s.Endpoint = p.endpoint()
	s.Cursor = p.cfg.Cursor.Snapshot()
	s.Lag = p.cfg.Cursor.Lag(s.NodeBlockHeight)
	s.BlockCount = p.cfg.Blocks.Len()
	s.GroupCount = p.cfg.Groups.Len()
	s.RecentCount = p.cfg.Recent.Len()
	return s
}

func (p *Poller) recordPoll(at time.Time, dash *domain.Dashboard, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.polls++
	p.lastPollAt = at
	p.lastErr = err
	if dash != nil {
		p.dashboard = dash
		p.lastSuccessAt = at
	}
}

func (p *Poller) nextInterval() time.Duration {
	if p.cfg.Catchup == nil {
		return p.cfg.Interval
	}
	p.mu.RLock()
	dash := p.dashboard
	p.mu.RUnlock()
	if dash == nil {
		return p.cfg.Interval
	}
	return p.cfg.Catchup.ComputeInterval(p.cfg.Cursor.Lag(dash.BlockHeight))
}

func (p *Poller) endpoint() string {
	if p.cfg.Endpoint == nil {
		return ""
	}
	return p.cfg.Endpoint.Endpoint()
}

// Package control wires the node monitor together and owns its lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/gtasmon/internal/core/config"
	"github.com/vietddude/gtasmon/internal/core/cursor"
	"github.com/vietddude/gtasmon/internal/indexing/emitter"
	"github.com/vietddude/gtasmon/internal/indexing/health"
	"github.com/vietddude/gtasmon/internal/indexing/poller"
	"github.com/vietddude/gtasmon/internal/indexing/recent"
	"github.com/vietddude/gtasmon/internal/indexing/reset"
	"github.com/vietddude/gtasmon/internal/indexing/syncer"
	"github.com/vietddude/gtasmon/internal/indexing/throttle"
	"github.com/vietddude/gtasmon/internal/infra/chain/tas"
	redisclient "github.com/vietddude/gtasmon/internal/infra/redis"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

// Monitor is the main application struct that manages the poller lifecycle.
type Monitor struct {
	cfg          *config.AppConfig
	provider     *rpc.HTTPProvider
	poller       *poller.Poller
	bus          *emitter.BusEmitter
	emitter      emitter.Emitter
	healthServer *health.Server
	redisClient  *redisclient.Client
	log          *slog.Logger

	// done is closed when the poller goroutine exits.
	done chan struct{}
}

// NewMonitor creates a new Monitor with all dependencies initialized.
func NewMonitor(cfg *config.AppConfig, log *slog.Logger) (*Monitor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}

	// 1. Transport
	provider := rpc.NewHTTPProvider("tas", cfg.Node.Endpoint, cfg.Node.Timeout)
	client := rpc.NewClient(provider)
	adapter := tas.NewAdapter(client)

	// 2. Cursor and caches
	c := cursor.New()
	c.SetStateChangeCallback(func(tr cursor.Transition) {
		log.Debug("Cursor state changed", "from", tr.From, "to", tr.To, "reason", tr.Reason)
	})

	blocks := syncer.NewBlockEngine(adapter, c, syncer.BlockConfig{
		Concurrency: cfg.Sync.BlockConcurrency,
		MaxPerPass:  cfg.Sync.MaxBlocksPerPass,
	}, log)
	groups := syncer.NewGroupEngine(adapter, c, log)

	// 3. Change signals
	bus := emitter.NewBusEmitter()
	emitters := emitter.Multi{bus, &emitter.LogEmitter{Log: log}}

	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, mirroring disabled", "error", err)
		} else {
			emitters = append(emitters, emitter.NewRedisEmitter(redisClient, cfg.Redis.Channel))
			log.Info("Mirroring cache changes to Redis", "channel", cfg.Redis.Channel)
		}
	}

	// 4. Poller
	var catchup *throttle.CatchupController
	if cfg.Sync.Catchup.Enabled {
		catchup = throttle.NewCatchupController(cfg.Node.PollInterval, cfg.Sync.Catchup)
	}

	p := poller.New(poller.Config{
		Adapter:  adapter,
		Endpoint: provider,
		Cursor:   c,
		Blocks:   blocks,
		Groups:   groups,
		Detector: reset.NewDetector(reset.Config{
			RunningStatus: cfg.Node.RunningStatus,
			StoppedStatus: cfg.Node.StoppedStatus,
		}),
		Recent:   recent.NewCache(cfg.Recent.Capacity),
		Emitter:  emitters,
		Catchup:  catchup,
		Interval: cfg.Node.PollInterval,
		Logger:   log,
	})

	// 5. Health and snapshot API
	healthMon := health.NewMonitor(p, provider, c, health.DefaultThresholds())
	healthServer := health.NewServer(healthMon, p, cfg.Server.Port, log)

	return &Monitor{
		cfg:          cfg,
		provider:     provider,
		poller:       p,
		bus:          bus,
		emitter:      emitters,
		healthServer: healthServer,
		redisClient:  redisClient,
		log:          log,
	}, nil
}

// Start starts the HTTP server and the poller. It returns immediately.
func (m *Monitor) Start(ctx context.Context) error {
	go func() {
		if err := m.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error("Health server failed", "error", err)
		}
	}()

	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		if err := m.poller.Start(ctx); err != nil {
			m.log.Error("Poller failed", "error", err)
		}
	}()

	m.log.Info("Monitor started",
		"endpoint", m.cfg.Node.Endpoint,
		"port", m.cfg.Server.Port,
		"interval", m.cfg.Node.PollInterval,
	)
	return nil
}

// Stop stops the monitor.
func (m *Monitor) Stop(ctx context.Context) error {
	m.log.Info("Stopping monitor...")

	_ = m.poller.Stop()

	var errs []error
	// The emitters must outlive the last poll cycle.
	if m.done != nil {
		select {
		case <-m.done:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("wait for poller: %w", ctx.Err()))
		}
	}
	if err := m.emitter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close emitters: %w", err))
	}
	if err := m.provider.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close provider: %w", err))
	}
	if err := m.healthServer.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop health server: %w", err))
	}
	return errors.Join(errs...)
}

// Poller returns the poller.
func (m *Monitor) Poller() *poller.Poller {
	return m.poller
}

// Bus returns the in-process change bus renderers subscribe to.
func (m *Monitor) Bus() *emitter.BusEmitter {
	return m.bus
}

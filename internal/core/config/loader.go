package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/vietddude/gtasmon/internal/core/domain"
	"github.com/vietddude/gtasmon/internal/indexing/emitter"
	"github.com/vietddude/gtasmon/internal/indexing/recent"
	"github.com/vietddude/gtasmon/internal/indexing/throttle"
	"gopkg.in/yaml.v2"
)

// Defaults.
const (
	DefaultPort             = 8080
	DefaultEndpoint         = "http://127.0.0.1:8101"
	DefaultTimeout          = 10 * time.Second
	DefaultPollInterval     = time.Second
	DefaultBlockConcurrency = 8
)

// Default returns a configuration with every default applied.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}

	if cfg.Node.Endpoint == "" {
		cfg.Node.Endpoint = DefaultEndpoint
	}
	if cfg.Node.Timeout == 0 {
		cfg.Node.Timeout = DefaultTimeout
	}
	if cfg.Node.PollInterval == 0 {
		cfg.Node.PollInterval = DefaultPollInterval
	}
	if cfg.Node.RunningStatus == "" {
		cfg.Node.RunningStatus = domain.NodeStatusRunning
	}
	if cfg.Node.StoppedStatus == "" {
		cfg.Node.StoppedStatus = domain.NodeStatusStopped
	}

	if cfg.Sync.BlockConcurrency == 0 {
		cfg.Sync.BlockConcurrency = DefaultBlockConcurrency
	}
	catchup := throttle.DefaultCatchupConfig()
	if cfg.Sync.Catchup.MinInterval == 0 {
		cfg.Sync.Catchup.MinInterval = catchup.MinInterval
	}
	if cfg.Sync.Catchup.MaxInterval == 0 {
		cfg.Sync.Catchup.MaxInterval = catchup.MaxInterval
	}
	if cfg.Sync.Catchup.LagNormalThreshold == 0 {
		cfg.Sync.Catchup.LagNormalThreshold = catchup.LagNormalThreshold
	}
	if cfg.Sync.Catchup.LagBurstThreshold == 0 {
		cfg.Sync.Catchup.LagBurstThreshold = catchup.LagBurstThreshold
	}

	if cfg.Recent.Capacity == 0 {
		cfg.Recent.Capacity = recent.DefaultCapacity
	}

	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = emitter.DefaultRedisChannel
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks values defaults cannot fix.
func (c *AppConfig) Validate() error {
	u, err := url.Parse(c.Node.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid node.endpoint %q", c.Node.Endpoint)
	}
	if c.Node.RunningStatus == c.Node.StoppedStatus {
		return errors.New("node.running_status and node.stopped_status must differ")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Sync.BlockConcurrency < 0 {
		return fmt.Errorf("invalid sync.block_concurrency %d", c.Sync.BlockConcurrency)
	}
	if c.Recent.Capacity < 0 {
		return fmt.Errorf("invalid recent.capacity %d", c.Recent.Capacity)
	}
	return nil
}

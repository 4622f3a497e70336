package config

import (
	"time"

	"github.com/vietddude/gtasmon/internal/indexing/throttle"
	redisclient "github.com/vietddude/gtasmon/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server  ServerConfig       `yaml:"server"`
	Node    NodeConfig         `yaml:"node"`
	Sync    SyncConfig         `yaml:"sync"`
	Recent  RecentConfig       `yaml:"recent"`
	Redis   redisclient.Config `yaml:"redis"`
	Logging LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// NodeConfig holds settings for the watched TAS node.
type NodeConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`

	// Status sentinels reported in node_info.status. Some nodes localize
	// these, e.g. "运行中" / "已停止".
	RunningStatus string `yaml:"running_status"`
	StoppedStatus string `yaml:"stopped_status"`
}

// SyncConfig tunes the sync engines.
type SyncConfig struct {
	BlockConcurrency int                    `yaml:"block_concurrency"`
	MaxBlocksPerPass uint64                 `yaml:"max_blocks_per_pass"` // 0 = unlimited
	Catchup          throttle.CatchupConfig `yaml:"catchup"`
}

// RecentConfig sizes the recently queried block cache.
type RecentConfig struct {
	Capacity int `yaml:"capacity"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/gtasmon/internal/control"
	"github.com/vietddude/gtasmon/internal/core/config"
	"github.com/vietddude/stylelog"
)

var (
	cfgPath  string
	isDebug  bool
	endpoint string
)

var rootCmd = &cobra.Command{
	Use:              "gtasmon",
	Short:            "TAS node monitor",
	Long:             `gtasmon polls a TAS node, keeps gapless block and group caches, and serves them over HTTP.`,
	PersistentPreRun: loadDotEnv,
	Run:              runMonitor,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "node JSON-RPC endpoint, overrides node.endpoint")
}

// loadDotEnv loads .env before any command reads its config, so ${ENV}
// values resolve the same way for every subcommand.
func loadDotEnv(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()
}

// loadConfig reads the config file. A missing default config file is not an
// error; defaults are used instead.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	if endpoint != "" {
		cfg.Node.Endpoint = endpoint
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func setupLogging(cfg *config.AppConfig) {
	slogLevel := slog.LevelInfo
	switch {
	case isDebug || cfg.Logging.Level == "debug":
		slogLevel = slog.LevelDebug
	case cfg.Logging.Level == "warn":
		slogLevel = slog.LevelWarn
	case cfg.Logging.Level == "error":
		slogLevel = slog.LevelError
	}

	if cfg.Logging.Format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})))
		return
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
}

func runMonitor(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	app, err := control.NewMonitor(cfg, slog.Default())
	if err != nil {
		slog.Error("Failed to initialize monitor", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start monitor", "error", err)
		os.Exit(1)
	}

	slog.Info("gtasmon started", "config", cfgPath, "endpoint", cfg.Node.Endpoint)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}

package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/gtasmon/internal/infra/chain/tas"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

var blockCmd = &cobra.Command{
	Use:   "block [hash]",
	Short: "Print the detail of a block by hash",
	Args:  cobra.ExactArgs(1),
	Run:   runBlock,
}

func init() {
	rootCmd.AddCommand(blockCmd)
}

func runBlock(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	provider := rpc.NewHTTPProvider("tas", cfg.Node.Endpoint, cfg.Node.Timeout)
	defer func() {
		_ = provider.Close()
	}()
	adapter := tas.NewAdapter(rpc.NewClient(provider))

	d, err := adapter.BlockDetail(context.Background(), args[0])
	if err != nil {
		slog.Error("Failed to query block", "hash", args[0], "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		slog.Error("Failed to print block", "error", err)
		os.Exit(1)
	}
}

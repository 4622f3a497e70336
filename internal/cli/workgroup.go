package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vietddude/gtasmon/internal/core/domain"
	"github.com/vietddude/gtasmon/internal/infra/chain/tas"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

var workGroupCmd = &cobra.Command{
	Use:   "workgroup [height]",
	Short: "List the groups qualified to cast at a block height",
	Args:  cobra.ExactArgs(1),
	Run:   runWorkGroup,
}

func init() {
	rootCmd.AddCommand(workGroupCmd)
}

func runWorkGroup(cmd *cobra.Command, args []string) {
	height, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Invalid block height: %v\n", err)
		os.Exit(1)
	}

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

	groups, err := adapter.WorkGroup(context.Background(), height)
	if err != nil {
		slog.Error("Failed to query work groups", "height", height, "error", err)
		os.Exit(1)
	}

	printWorkGroups(os.Stdout, groups)
}

func printWorkGroups(out io.Writer, groups []*domain.Group) {
	if len(groups) == 0 {
		_, _ = fmt.Fprintln(out, "no work groups")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "HEIGHT\tGROUP\tBEGIN\tDISMISS\tMEMBERS")
	for _, g := range groups {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", g.Height, g.GroupID, g.BeginHeight, g.DismissHeight, len(g.Members))
	}
	_ = w.Flush()
}

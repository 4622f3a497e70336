package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vietddude/gtasmon/internal/core/domain"
	"github.com/vietddude/gtasmon/internal/infra/chain/tas"
	"github.com/vietddude/gtasmon/internal/infra/rpc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the node's dashboard",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Node.Timeout)
	defer cancel()

	d, err := adapter.Dashboard(ctx)
	if err != nil {
		slog.Error("Failed to query dashboard", "endpoint", cfg.Node.Endpoint, "error", err)
		os.Exit(1)
	}

	printDashboard(os.Stdout, cfg.Node.Endpoint, d)
}

func printDashboard(out io.Writer, endpoint string, d *domain.Dashboard) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintf(w, "ENDPOINT\t%s\n", endpoint)
	_, _ = fmt.Fprintf(w, "NODE\t%s\n", d.NodeInfo.ID)
	_, _ = fmt.Fprintf(w, "TYPE\t%s\n", d.NodeInfo.NType)
	_, _ = fmt.Fprintf(w, "STATUS\t%s\n", d.NodeInfo.Status)
	_, _ = fmt.Fprintf(w, "BALANCE\t%g\n", d.NodeInfo.Balance)
	_, _ = fmt.Fprintf(w, "BLOCK HEIGHT\t%d\n", d.BlockHeight)
	_, _ = fmt.Fprintf(w, "GROUP HEIGHT\t%d\n", d.GroupHeight)
	_, _ = fmt.Fprintf(w, "WORKING GROUPS\t%d\n", d.WorkGNum)
	_, _ = fmt.Fprintf(w, "TX POOL\t%d\n", d.NodeInfo.TxPoolNum)
	_ = w.Flush()

	if len(d.Conns) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "PEER\tIP\tPORT")
	for _, c := range d.Conns {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.IP, c.TCPPort)
	}
	_ = w.Flush()
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/vietddude/gtasmon/internal/core/domain"
)

func TestPrintDashboard(t *testing.T) {
	d := &domain.Dashboard{
		BlockHeight: 120,
		GroupHeight: 4,
		NodeInfo:    domain.NodeInfo{ID: "0xnode", Status: "running", NType: "proposer"},
		Conns:       []domain.ConnInfo{{ID: "0xpeer", IP: "10.0.0.2", TCPPort: "1122"}},
	}

	var buf bytes.Buffer
	printDashboard(&buf, "http://127.0.0.1:8101", d)
	out := buf.String()

	for _, want := range []string{"http://127.0.0.1:8101", "0xnode", "running", "120", "10.0.0.2", "PEER"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintDashboard_NoPeers(t *testing.T) {
	var buf bytes.Buffer
	printDashboard(&buf, "http://node", &domain.Dashboard{})
	if strings.Contains(buf.String(), "PEER") {
		t.Errorf("expected no peer table:\n%s", buf.String())
	}
}

func TestPrintWorkGroups(t *testing.T) {
	var buf bytes.Buffer
	printWorkGroups(&buf, []*domain.Group{
		{GroupID: "0xw1", Height: 40, BeginHeight: 10, DismissHeight: 90, Members: []string{"a", "b"}},
	})
	out := buf.String()
	for _, want := range []string{"HEIGHT", "0xw1", "40", "90"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printWorkGroups(&buf, nil)
	if !strings.Contains(buf.String(), "no work groups") {
		t.Errorf("unexpected empty output: %s", buf.String())
	}
}

func TestDotEnvLoadedForSubcommands(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GTASMON_TEST_NODE=http://10.1.1.1:8101\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("GTASMON_TEST_NODE") })

	for _, cmd := range []*cobra.Command{statusCmd, blockCmd, workGroupCmd} {
		os.Unsetenv("GTASMON_TEST_NODE")
		if cmd.PersistentPreRun != nil || cmd.PersistentPreRunE != nil {
			t.Errorf("%s: own persistent pre-run hides the root one", cmd.Name())
		}
		if rootCmd.PersistentPreRun == nil {
			t.Fatal("root command has no persistent pre-run")
		}
		rootCmd.PersistentPreRun(cmd, nil)
		if got := os.Getenv("GTASMON_TEST_NODE"); got != "http://10.1.1.1:8101" {
			t.Errorf("%s: expected .env loaded, got %q", cmd.Name(), got)
		}
	}
}

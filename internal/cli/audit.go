package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/panelgap/internal/config"
	"github.com/dshills/panelgap/internal/lens"
	"github.com/dshills/panelgap/internal/review"
	"github.com/dshills/panelgap/internal/sagastore"
)

var (
	flagAuditPacket string
	flagAuditNode   string
)

var auditCmd = &cobra.Command{
	Use:   "audit <file>",
	Short: "Run the analyzer on one source file",
	Long: "Run the analyzer CLI on a single file and list its findings. With --packet, " +
		"the packet's panel issues are read from the saga store and reconciled against them.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("file not found: %s", args[0])
		}

		ctx := cmd.Context()
		var store *sagastore.Store
		if flagAuditPacket != "" {
			store, err = sagastore.New(ctx, storeOptions(cfg))
			if err != nil {
				fail(ExitStoreError, err)
				return nil
			}
			defer store.Close()
		}

		report, err := runAudit(ctx, cfg, args[0], store, flagAuditPacket)
		if err != nil {
			fail(ExitRuntimeError, err)
			return nil
		}
		writeReport(report, cfg)
		return nil
	},
}

func runAudit(ctx context.Context, cfg config.Config, file string, store *sagastore.Store, packet string) (*review.Report, error) {
	start := time.Now()
	res, err := lens.Runner{Node: flagAuditNode, CLIPath: cfg.Lens.CLIPath}.Audit(ctx, file)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Analyzer: %d findings, pass=%t\n", len(res.Findings), res.Pass)
	loadMs := time.Since(start).Milliseconds()

	var issues []review.Issue
	if store != nil {
		results, err := store.PacketResults(ctx, packet)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			issues = append(issues, r.Issues...)
		}
	}

	rec, err := newReconciler(cfg)
	if err != nil {
		return nil, err
	}
	return review.BuildReport(rec, review.Run{
		Repo:     repoInfo(),
		Inputs:   review.InputInfo{Mode: "audit", Packet: packet, Documents: []string{file}},
		Findings: res.Findings,
		Issues:   issues,
		Timing:   review.Timing{LoadMs: loadMs, TotalMs: time.Since(start).Milliseconds()},
	}), nil
}

func init() {
	addReportFlags(auditCmd)
	auditCmd.Flags().StringVar(&flagAuditPacket, "packet", "", "Reconcile with this packet's panel issues")
	auditCmd.Flags().StringVar(&flagAuditNode, "node", "", "Node binary used to run the analyzer (default: node)")
}

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

// dedupePrefix is how many description runes identify a repeated issue.
const dedupePrefix = 50

var (
	flagRecentLimit int
	flagPacketLens  string
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Read panel verdicts from the saga event store",
}

var panelPacketCmd = &cobra.Command{
	Use:   "packet <id>",
	Short: "List the panel issues recorded for a work packet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		store, err := sagastore.New(ctx, storeOptions(cfg))
		if err != nil {
			fail(ExitStoreError, err)
			return nil
		}
		defer store.Close()

		report, err := runPacket(ctx, store, cfg, args[0], flagPacketLens)
		if err != nil {
			fail(ExitRuntimeError, err)
			return nil
		}
		writeReport(report, cfg)
		return nil
	},
}

// runPacket reconciles a packet's panel issues against analyzer output in
// lensDir, or against nothing when lensDir is empty.
func runPacket(ctx context.Context, store *sagastore.Store, cfg config.Config, packet, lensDir string) (*review.Report, error) {
	start := time.Now()
	results, err := store.PacketResults(ctx, packet)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		fmt.Fprintf(os.Stderr, "No panel results found for %s.\n", packet)
	}

	var issues []review.Issue
	for _, r := range results {
		verdict := "REJECTED"
		if r.Approved {
			verdict = "APPROVED"
		}
		fmt.Fprintf(os.Stderr, "Panel run %s: %s (%d issues)\n", r.EventID, verdict, len(r.Issues))
		issues = append(issues, r.Issues...)
	}

	var findings []review.Finding
	if lensDir != "" {
		findings, _, err = lens.Loader{Glob: cfg.Lens.Glob, Log: logger}.LoadDir(lensDir)
		if err != nil {
			return nil, err
		}
	}

	rec, err := newReconciler(cfg)
	if err != nil {
		return nil, err
	}
	return review.BuildReport(rec, review.Run{
		Repo:     repoInfo(),
		Inputs:   review.InputInfo{Mode: "packet", Packet: packet, LensDir: lensDir},
		Findings: findings,
		Issues:   issues,
		Timing:   review.Timing{TotalMs: time.Since(start).Milliseconds()},
	}), nil
}

var panelRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recent panel rejections and the rules they call for",
	Long: "Collect issues from rejected panel runs across all packets, drop repeats, and " +
		"reconcile them against an empty analyzer result so every mapped rule is listed.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		store, err := sagastore.New(ctx, storeOptions(cfg))
		if err != nil {
			fail(ExitStoreError, err)
			return nil
		}
		defer store.Close()

		report, err := runRecent(ctx, store, cfg, flagRecentLimit)
		if err != nil {
			fail(ExitRuntimeError, err)
			return nil
		}
		writeReport(report, cfg)
		return nil
	},
}

func runRecent(ctx context.Context, store *sagastore.Store, cfg config.Config, limit int) (*review.Report, error) {
	start := time.Now()
	issues, err := store.RecentRejections(ctx, limit)
	if err != nil {
		return nil, err
	}

	rec, err := newReconciler(cfg)
	if err != nil {
		return nil, err
	}
	report := review.BuildReport(rec, review.Run{
		Inputs: review.InputInfo{Mode: "recent"},
		Issues: issues,
		Timing: review.Timing{TotalMs: time.Since(start).Milliseconds()},
	})
	// Gaps cover every rejection; only the listing drops repeats.
	report.Issues = review.DedupeIssues(report.Issues, dedupePrefix)
	return report, nil
}

func init() {
	panelCmd.AddCommand(panelPacketCmd)
	panelCmd.AddCommand(panelRecentCmd)

	for _, cmd := range []*cobra.Command{panelPacketCmd, panelRecentCmd} {
		addReportFlags(cmd)
	}
	panelPacketCmd.Flags().StringVar(&flagPacketLens, "lens-dir", "", "Reconcile against analyzer outputs in this directory")
	panelRecentCmd.Flags().IntVar(&flagRecentLimit, "limit", 5, "Scale of the scan; up to limit*10 issues are read")
}

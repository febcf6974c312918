package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/panelgap/internal/config"
	"github.com/dshills/panelgap/internal/github"
	"github.com/dshills/panelgap/internal/output"
	"github.com/dshills/panelgap/internal/review"
)

var (
	flagGHPR     int
	flagGHOwner  string
	flagGHRepo   string
	flagGHDryRun bool
)

func addGitHubFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagGHPR, "github-pr", 0, "Post the markdown report as a comment on this pull request")
	cmd.Flags().StringVar(&flagGHOwner, "owner", "", "GitHub repository owner (auto-detected if omitted)")
	cmd.Flags().StringVar(&flagGHRepo, "repo", "", "GitHub repository name (auto-detected if omitted)")
	cmd.Flags().BoolVar(&flagGHDryRun, "dry-run", false, "Render the comment but don't post it")
}

// postToGitHub posts or updates the gap report comment on flagGHPR.
func postToGitHub(ctx context.Context, report *review.Report, cfg config.Config) {
	var body bytes.Buffer
	md := &output.MarkdownWriter{MaxListed: cfg.MaxListed}
	if err := md.Write(&body, report); err != nil {
		fail(ExitRuntimeError, fmt.Errorf("rendering comment: %w", err))
		return
	}

	if flagGHDryRun {
		fmt.Fprintf(os.Stderr, "Dry run: %d gaps, not posting to GitHub.\n", len(report.Gaps))
		return
	}

	owner, repo := flagGHOwner, flagGHRepo
	if owner == "" || repo == "" {
		detectedOwner, detectedRepo, err := github.DetectRepo("")
		if err != nil {
			fail(ExitUsageError, fmt.Errorf("%w; use --owner and --repo to specify manually", err))
			return
		}
		if owner == "" {
			owner = detectedOwner
		}
		if repo == "" {
			repo = detectedRepo
		}
	}

	client, err := github.NewClient()
	if err != nil {
		code := ExitRuntimeError
		if errors.Is(err, github.ErrNoToken) {
			code = ExitStoreError
		}
		fail(code, err)
		return
	}

	cm, err := client.UpsertComment(ctx, owner, repo, flagGHPR, output.CommentMarker, body.String())
	if err != nil {
		fail(ExitRuntimeError, fmt.Errorf("posting comment: %w", err))
		return
	}
	logger.Infow("posted gap report", "pr", flagGHPR, "comment", cm.ID)
	fmt.Fprintf(os.Stderr, "Gap report posted to %s/%s#%d.\n", owner, repo, flagGHPR)
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/panelgap/internal/config"
	"github.com/dshills/panelgap/internal/gitctx"
	"github.com/dshills/panelgap/internal/lens"
	"github.com/dshills/panelgap/internal/review"
	"github.com/dshills/panelgap/internal/transcript"
)

var (
	flagLensDir       string
	flagTranscriptDir string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Reconcile analyzer output with panel transcripts",
	Long: "Load analyzer findings from --lens-dir and panel transcripts from --transcripts, " +
		"extract the panel's problem verdicts, and report those no analyzer rule covered.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		report, err := runAnalyze(cmd.Context(), cfg, flagLensDir, flagTranscriptDir)
		if err != nil {
			fail(ExitRuntimeError, err)
			return nil
		}
		writeReport(report, cfg)
		if exitCode == ExitRuntimeError {
			return nil
		}
		if flagGHPR > 0 {
			postToGitHub(cmd.Context(), report, cfg)
		}
		return nil
	},
}

func runAnalyze(ctx context.Context, cfg config.Config, lensDir, transcriptDir string) (*review.Report, error) {
	start := time.Now()

	findings, lensFiles, err := lens.Loader{Glob: cfg.Lens.Glob, Log: logger}.LoadDir(lensDir)
	if err != nil {
		return nil, err
	}
	docs, err := transcript.Loader{
		Glob:       cfg.Transcripts.Glob,
		ReviewFile: cfg.Transcripts.ReviewFile,
		Exclude:    cfg.Transcripts.Exclude,
		Redact:     cfg.Privacy.RedactSecrets,
		Log:        logger,
	}.LoadDir(transcriptDir)
	if err != nil {
		return nil, err
	}
	loadMs := time.Since(start).Milliseconds()
	logger.Infow("loaded inputs", "analyzerFiles", len(lensFiles), "findings", len(findings), "documents", len(docs))

	extractStart := time.Now()
	issues, err := newExtractor(cfg).ExtractDocuments(ctx, docs, batchOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("extracting verdicts: %w", err)
	}
	extractMs := time.Since(extractStart).Milliseconds()

	rec, err := newReconciler(cfg)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return review.BuildReport(rec, review.Run{
		Repo: repoInfo(),
		Inputs: review.InputInfo{
			Mode:          "analyze",
			LensDir:       lensDir,
			TranscriptDir: transcriptDir,
			Documents:     names,
		},
		Findings: findings,
		Issues:   issues,
		Timing: review.Timing{
			LoadMs:    loadMs,
			ExtractMs: extractMs,
			TotalMs:   time.Since(start).Milliseconds(),
		},
	}), nil
}

// repoInfo describes the enclosing git workspace, if any.
func repoInfo() review.RepoInfo {
	meta, err := gitctx.GetRepoMeta()
	if err != nil {
		logger.Debugw("no repository metadata", "error", err)
		return review.RepoInfo{}
	}
	return review.RepoInfo{Root: meta.Root, Head: meta.Head, Branch: meta.Branch}
}

func init() {
	addReportFlags(analyzeCmd)
	addGitHubFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&flagLensDir, "lens-dir", "", "Directory with analyzer JSON outputs")
	analyzeCmd.Flags().StringVar(&flagTranscriptDir, "transcripts", "", "Directory with panel transcript files")
	_ = analyzeCmd.MarkFlagRequired("lens-dir")
	_ = analyzeCmd.MarkFlagRequired("transcripts")
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/panelgap/internal/review"
	"github.com/dshills/panelgap/internal/transcript"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Print the issues extracted from transcript files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		docs, err := transcript.Loader{
			ReviewFile: cfg.Transcripts.ReviewFile,
			Redact:     cfg.Privacy.RedactSecrets,
			Log:        logger,
		}.LoadFiles(args)
		if err != nil {
			fail(ExitRuntimeError, err)
			return nil
		}
		issues, err := newExtractor(cfg).ExtractDocuments(cmd.Context(), docs, batchOptions(cfg))
		if err != nil {
			fail(ExitRuntimeError, err)
			return nil
		}
		if err := writeIssues(cmd.OutOrStdout(), issues, cfg.Format); err != nil {
			fail(ExitRuntimeError, err)
		}
		return nil
	},
}

// writeIssues prints issues one per line, or as a JSON array.
func writeIssues(w io.Writer, issues []review.Issue, format string) error {
	if format == "json" {
		if issues == nil {
			issues = []review.Issue{}
		}
		data, err := json.MarshalIndent(issues, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling issues: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if len(issues) == 0 {
		_, err := fmt.Fprintln(w, "No panel issues found.")
		return err
	}
	for _, is := range issues {
		if _, err := fmt.Fprintf(w, "[%s] %s: %s (%s, %s)\n", is.Severity, is.Category, is.Description, is.Verdict, is.File); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	addReportFlags(extractCmd)
}

package output

import (
	"io"
	"sort"
	"strings"

	"github.com/dshills/panelgap/internal/review"
)

// detailLen caps messages and descriptions in the detail listings.
const detailLen = 50

// TextWriter outputs the human-readable gap report.
type TextWriter struct {
	MaxListed int
}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	limit := Options{MaxListed: t.MaxListed}.maxListed()

	ew.println(strings.Repeat("=", 60))
	ew.println("ANALYZER vs PANEL GAP ANALYSIS")
	ew.println(strings.Repeat("=", 60))
	ew.printf("Mode: %s\n", report.Inputs.Mode)
	if report.Inputs.Packet != "" {
		ew.printf("Packet: %s\n", report.Inputs.Packet)
	}
	if report.Repo.Root != "" {
		ew.printf("Repository: %s (branch: %s)\n", report.Repo.Root, report.Repo.Branch)
	}
	ew.println("")

	writeFindings(ew, report, limit)
	ew.printf("\n%s\n\n", strings.Repeat("-", 60))
	writeIssues(ew, report, limit)
	ew.printf("\n%s\n\n", strings.Repeat("-", 60))
	writeGaps(ew, report.Gaps)
	ew.println(strings.Repeat("=", 60))

	writeActions(ew, report.Summary)

	if report.Timing.TotalMs > 0 {
		ew.printf("\nCompleted in %dms (load: %dms, extract: %dms)\n",
			report.Timing.TotalMs, report.Timing.LoadMs, report.Timing.ExtractMs)
	}
	return ew.err
}

func writeFindings(ew *errWriter, report *review.Report, limit int) {
	ew.printf("Analyzer findings: %d\n", len(report.Findings))
	if len(report.Findings) == 0 {
		return
	}
	counts := report.Summary.Findings
	for _, sev := range severityOrder {
		if n := countFor(counts, sev); n > 0 {
			ew.printf("  %s: %d\n", sev, n)
		}
	}
	if counts.Other > 0 {
		ew.printf("  OTHER: %d\n", counts.Other)
	}

	ew.println("")
	ew.println("  Details:")
	for _, f := range head(report.Findings, limit) {
		ew.printf("    [%s] %s: %s\n", f.Severity, f.Code, review.Truncate(f.Message, detailLen))
	}
	if more := len(report.Findings) - limit; more > 0 {
		ew.printf("    ... and %d more\n", more)
	}
}

func writeIssues(ew *errWriter, report *review.Report, limit int) {
	ew.printf("Panel issues: %d\n", len(report.Issues))
	if len(report.Issues) == 0 {
		return
	}
	byCategory := report.Summary.IssuesByCategory
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		ew.printf("  %s: %d\n", c, byCategory[c])
	}

	ew.println("")
	ew.println("  Details:")
	for _, is := range head(report.Issues, limit) {
		ew.printf("    [%s] %s: %s\n", is.Severity, is.Category, review.Truncate(is.Description, detailLen))
	}
	if more := len(report.Issues) - limit; more > 0 {
		ew.printf("    ... and %d more\n", more)
	}
}

func writeGaps(ew *errWriter, gaps []review.Gap) {
	ew.println("GAPS (panel caught, analyzer missed):")
	ew.println("")
	if len(gaps) == 0 {
		ew.println("  None! The analyzer caught everything the panel found.")
		ew.println("")
		return
	}
	for _, g := range gaps {
		ew.printf("  [%s] %s: %s\n", g.Severity, g.Category, g.Description)
		if g.NeedsNewRule() {
			ew.println("    -> NEW RULE NEEDED (no mapping found)")
		} else {
			ew.printf("    -> Expected rules: %s\n", strings.Join(g.ExpectedRules, ", "))
		}
		ew.println("")
	}
}

func writeActions(ew *errWriter, s review.Summary) {
	if s.Gaps.Total() == 0 {
		return
	}
	ew.println("")
	ew.println("RECOMMENDED ACTIONS:")
	n := 1
	if len(s.RulesToVerify) > 0 {
		ew.printf("  %d. Verify these rules are implemented: %s\n", n, strings.Join(s.RulesToVerify, ", "))
		n++
	}
	if s.NewRulesNeeded > 0 {
		ew.printf("  %d. Investigate %d issues that may need new rules\n", n, s.NewRulesNeeded)
	}
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

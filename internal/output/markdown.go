package output

import (
	"io"
	"strings"

	"github.com/dshills/panelgap/internal/review"
)

// CommentMarker is embedded in markdown reports so a posted comment can be
// recognized later.
const CommentMarker = "<!-- panelgap-report -->"

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct {
	MaxListed int
}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	s := report.Summary
	gapTotal := s.Gaps.Total()

	ew.println(CommentMarker)
	ew.printf("## Panel Gap Report\n\n")
	ew.printf("Analyzer findings: **%d** | Panel issues: **%d** | Gaps: **%d**\n\n",
		len(report.Findings), len(report.Issues), gapTotal)

	ew.printf("| Severity | Gaps |\n")
	ew.printf("|----------|------|\n")
	for _, sev := range severityOrder {
		ew.printf("| %s | %d |\n", sev, countFor(s.Gaps, sev))
	}
	if s.Gaps.Other > 0 {
		ew.printf("| OTHER | %d |\n", s.Gaps.Other)
	}
	ew.printf("| **Total** | **%d** |\n\n", gapTotal)

	if gapTotal == 0 {
		ew.println("No gaps: the analyzer caught everything the panel found. :white_check_mark:")
		return ew.err
	}

	grouped := groupGaps(report.Gaps)
	for _, sev := range gapOrder {
		gaps := grouped[sev]
		if len(gaps) == 0 {
			continue
		}
		ew.printf("<details>\n<summary>%s %s (%d)</summary>\n\n", mdSeverityIcon(sev), sev, len(gaps))
		for _, g := range gaps {
			ew.printf("- **%s**: %s\n", g.Category, mdEscape(g.Description))
			if g.NeedsNewRule() {
				ew.printf("  - New rule needed (no mapping found)\n")
			} else {
				ew.printf("  - Expected rules: %s\n", codeList(g.ExpectedRules))
			}
		}
		ew.printf("\n</details>\n\n")
	}

	ew.printf("### Recommended actions\n\n")
	if len(s.RulesToVerify) > 0 {
		ew.printf("- Verify these rules are implemented: %s\n", codeList(s.RulesToVerify))
	}
	if s.NewRulesNeeded > 0 {
		ew.printf("- Investigate %d issues that may need new rules\n", s.NewRulesNeeded)
	}
	ew.println("")

	if report.Timing.TotalMs > 0 {
		ew.printf("*Reconciled in %dms*\n", report.Timing.TotalMs)
	}
	return ew.err
}

func mdSeverityIcon(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return ":no_entry:"
	case review.SeverityHigh:
		return ":red_circle:"
	case review.SeverityMedium:
		return ":orange_circle:"
	case review.SeverityLow:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

func codeList(rules []string) string {
	quoted := make([]string, len(rules))
	for i, r := range rules {
		quoted[i] = "`" + r + "`"
	}
	return strings.Join(quoted, ", ")
}

var mdReplacer = strings.NewReplacer("|", `\|`, "<", "&lt;", ">", "&gt;", "\n", " ")

// mdEscape keeps panel prose from breaking list items or injecting HTML.
func mdEscape(s string) string {
	return mdReplacer.Replace(s)
}

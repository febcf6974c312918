package output

import (
	"fmt"

	"github.com/dshills/panelgap/internal/review"
)

// sampleReport reconciles a small fixed run through the real pipeline.
func sampleReport() *review.Report {
	return review.BuildReport(review.NewReconciler(nil), review.Run{
		Repo:   review.RepoInfo{Root: "/tmp/repo", Branch: "main"},
		Inputs: review.InputInfo{Mode: "analyze"},
		Findings: []review.Finding{
			{Severity: review.SeverityHigh, Code: "OS_TIME_USAGE", Message: "os.time used in handler", File: "token", Source: review.SourceAnalyzer},
		},
		Issues: []review.Issue{
			{Severity: review.SeverityHigh, Category: "Trace", Description: "determinism broken by os.time", Source: review.SourcePanel},
			{Severity: review.SeverityCritical, Category: "Rook", Description: "frozen flag ignored in Transfer", Source: review.SourcePanel},
			{Severity: review.SeverityHigh, Category: "Nova", Description: "Variable naming is inconsistent", Source: review.SourcePanel},
		},
		Timing: review.Timing{TotalMs: 12, LoadMs: 3, ExtractMs: 5},
	})
}

func manyFindings(n int) []review.Finding {
	out := make([]review.Finding, n)
	for i := range out {
		out[i] = review.Finding{Severity: review.SeverityLow, Code: fmt.Sprintf("RULE_%02d", i)}
	}
	return out
}

package review

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// ToolName and ToolVersion identify reports produced by this module.
const (
	ToolName    = "panelgap"
	ToolVersion = "1.0"
)

// Run groups the inputs of one reconciliation.
type Run struct {
	Repo     RepoInfo
	Inputs   InputInfo
	Findings []Finding
	Issues   []Issue
	Timing   Timing
}

// BuildReport reconciles the run's records and assembles a Report.
func BuildReport(rec *Reconciler, run Run) *Report {
	gaps := rec.Reconcile(run.Findings, run.Issues)
	return &Report{
		Tool:     ToolName,
		Version:  ToolVersion,
		RunID:    generateRunID(),
		Repo:     run.Repo,
		Inputs:   run.Inputs,
		Summary:  ComputeSummary(run.Findings, run.Issues, gaps),
		Findings: nonNilFindings(run.Findings),
		Issues:   nonNilIssues(run.Issues),
		Gaps:     nonNilGaps(gaps),
		Timing:   run.Timing,
	}
}

func generateRunID() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return fmt.Sprintf("%x", h[:16])
}

func nonNilFindings(f []Finding) []Finding {
	if f == nil {
		return []Finding{}
	}
	return f
}

func nonNilIssues(i []Issue) []Issue {
	if i == nil {
		return []Issue{}
	}
	return i
}

func nonNilGaps(g []Gap) []Gap {
	if g == nil {
		return []Gap{}
	}
	return g
}

package review

import "strings"

// Severity represents the severity level of a finding, issue, or gap.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
	SeverityUnknown  Severity = "UNKNOWN"
)

// Sources of records.
const (
	SourceAnalyzer = "analyzer"
	SourcePanel    = "panel"
)

// Sentinels used when a field is absent or no mapping exists.
const (
	UnknownCode   = "UNKNOWN"
	NewRuleNeeded = "NEW_RULE_NEEDED"
)

// NormalizeSeverity upper-cases s and maps the empty string to UNKNOWN.
func NormalizeSeverity(s string) Severity {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return SeverityUnknown
	}
	return Severity(s)
}

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "" || strings.EqualFold(threshold, "none") {
		return false
	}
	return SeverityRank(s) >= SeverityRank(NormalizeSeverity(threshold))
}

// Finding is one analyzer result carrying a rule code.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Line     *int     `json:"line,omitempty"`
	File     string   `json:"file"`
	Source   string   `json:"source"`
}

// Issue is a problem verdict extracted from panel review text.
type Issue struct {
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Verdict     string   `json:"verdict"`
	Description string   `json:"description"`
	File        string   `json:"file"`
	Source      string   `json:"source"`
}

// Gap is an Issue whose expected rule codes were not reported by the analyzer.
type Gap struct {
	Severity      Severity `json:"severity"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	ExpectedRules []string `json:"expectedRules"`
	Covered       bool     `json:"covered"`
}

// NeedsNewRule reports whether no keyword mapped the gap's description.
func (g Gap) NeedsNewRule() bool {
	return len(g.ExpectedRules) == 1 && g.ExpectedRules[0] == NewRuleNeeded
}

// Document is one raw text input to the extractor.
type Document struct {
	Name string
	Text string
	// Dedicated marks a review artifact that is processed even without a
	// panel marker.
	Dedicated bool
}

// RepoInfo contains workspace metadata.
type RepoInfo struct {
	Root   string `json:"root,omitempty"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// InputInfo describes what was reconciled.
type InputInfo struct {
	Mode          string   `json:"mode"`
	LensDir       string   `json:"lensDir,omitempty"`
	TranscriptDir string   `json:"transcriptDir,omitempty"`
	Packet        string   `json:"packet,omitempty"`
	Documents     []string `json:"documents,omitempty"`
}

// SeverityCounts holds counts by severity level.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Other    int `json:"other"`
}

func (c *SeverityCounts) add(s Severity) {
	switch s {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	default:
		c.Other++
	}
}

// Total returns the sum of all counts.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low + c.Other
}

// Summary provides an overview of a reconciliation run.
type Summary struct {
	Findings           SeverityCounts `json:"findings"`
	IssuesByCategory   map[string]int `json:"issuesByCategory"`
	Gaps               SeverityCounts `json:"gaps"`
	NewRulesNeeded     int            `json:"newRulesNeeded"`
	RulesToVerify      []string       `json:"rulesToVerify,omitempty"`
	HighestGapSeverity Severity       `json:"highestGapSeverity,omitempty"`
}

// Timing contains performance metrics.
type Timing struct {
	LoadMs    int64 `json:"loadMs"`
	ExtractMs int64 `json:"extractMs"`
	TotalMs   int64 `json:"totalMs"`
}

// Report is the top-level output structure.
type Report struct {
	Tool     string    `json:"tool"`
	Version  string    `json:"version"`
	RunID    string    `json:"runId"`
	Repo     RepoInfo  `json:"repo"`
	Inputs   InputInfo `json:"inputs"`
	Summary  Summary   `json:"summary"`
	Findings []Finding `json:"findings"`
	Issues   []Issue   `json:"issues"`
	Gaps     []Gap     `json:"gaps"`
	Timing   Timing    `json:"timing"`
}

// ComputeSummary calculates the summary from a run's records.
func ComputeSummary(findings []Finding, issues []Issue, gaps []Gap) Summary {
	s := Summary{IssuesByCategory: make(map[string]int)}
	for _, f := range findings {
		s.Findings.add(f.Severity)
	}
	for _, i := range issues {
		s.IssuesByCategory[i.Category]++
	}

	verify := make(map[string]bool)
	for _, g := range gaps {
		s.Gaps.add(g.Severity)
		if SeverityRank(g.Severity) > SeverityRank(s.HighestGapSeverity) {
			s.HighestGapSeverity = g.Severity
		}
		if g.NeedsNewRule() {
			s.NewRulesNeeded++
			continue
		}
		for _, r := range g.ExpectedRules {
			verify[r] = true
		}
	}
	s.RulesToVerify = sortedKeys(verify)
	return s
}

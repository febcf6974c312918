package review

import "testing"

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityCritical, 4},
		{SeverityHigh, 3},
		{SeverityMedium, 2},
		{SeverityLow, 1},
		{SeverityUnknown, 0},
		{Severity("bogus"), 0},
	}
	for _, tt := range tests {
		got := SeverityRank(tt.severity)
		if got != tt.want {
			t.Errorf("SeverityRank(%q) = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"high", SeverityHigh},
		{" Critical ", SeverityCritical},
		{"", SeverityUnknown},
		{"warning", Severity("WARNING")},
	}
	for _, tt := range tests {
		if got := NormalizeSeverity(tt.in); got != tt.want {
			t.Errorf("NormalizeSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMeetsThreshold(t *testing.T) {
	tests := []struct {
		severity  Severity
		threshold string
		want      bool
	}{
		{SeverityHigh, "none", false},
		{SeverityHigh, "", false},
		{SeverityCritical, "critical", true},
		{SeverityHigh, "critical", false},
		{SeverityHigh, "high", true},
		{SeverityHigh, "medium", true},
		{SeverityMedium, "high", false},
		{SeverityLow, "low", true},
		{SeverityUnknown, "low", false},
	}
	for _, tt := range tests {
		got := MeetsThreshold(tt.severity, tt.threshold)
		if got != tt.want {
			t.Errorf("MeetsThreshold(%q, %q) = %v, want %v", tt.severity, tt.threshold, got, tt.want)
		}
	}
}

func TestGapNeedsNewRule(t *testing.T) {
	if !(Gap{ExpectedRules: []string{NewRuleNeeded}}).NeedsNewRule() {
		t.Error("sentinel gap should need a new rule")
	}
	if (Gap{ExpectedRules: []string{"NO_FROZEN_CHECK"}}).NeedsNewRule() {
		t.Error("mapped gap should not need a new rule")
	}
}

func TestComputeSummary(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityCritical},
		{Severity: SeverityHigh},
		{Severity: SeverityMedium},
		{Severity: SeverityUnknown},
	}
	issues := []Issue{
		{Category: "Trace"},
		{Category: "Trace"},
		{Category: "Panel"},
	}
	gaps := []Gap{
		{Severity: SeverityHigh, ExpectedRules: []string{"NO_FROZEN_CHECK"}},
		{Severity: SeverityCritical, ExpectedRules: []string{NewRuleNeeded}},
		{Severity: SeverityHigh, ExpectedRules: []string{"NIL_GUARD_REQUIRED", "NO_FROZEN_CHECK"}},
	}

	s := ComputeSummary(findings, issues, gaps)
	if s.Findings.Critical != 1 || s.Findings.High != 1 || s.Findings.Medium != 1 || s.Findings.Other != 1 {
		t.Errorf("Findings = %+v", s.Findings)
	}
	if s.Findings.Total() != 4 {
		t.Errorf("Findings.Total() = %d, want 4", s.Findings.Total())
	}
	if s.IssuesByCategory["Trace"] != 2 || s.IssuesByCategory["Panel"] != 1 {
		t.Errorf("IssuesByCategory = %v", s.IssuesByCategory)
	}
	if s.Gaps.High != 2 || s.Gaps.Critical != 1 {
		t.Errorf("Gaps = %+v", s.Gaps)
	}
	if s.NewRulesNeeded != 1 {
		t.Errorf("NewRulesNeeded = %d, want 1", s.NewRulesNeeded)
	}
	want := []string{"NIL_GUARD_REQUIRED", "NO_FROZEN_CHECK"}
	if len(s.RulesToVerify) != len(want) {
		t.Fatalf("RulesToVerify = %v, want %v", s.RulesToVerify, want)
	}
	for i := range want {
		if s.RulesToVerify[i] != want[i] {
			t.Errorf("RulesToVerify[%d] = %q, want %q", i, s.RulesToVerify[i], want[i])
		}
	}
	if s.HighestGapSeverity != SeverityCritical {
		t.Errorf("HighestGapSeverity = %q, want %q", s.HighestGapSeverity, SeverityCritical)
	}
}

func TestComputeSummary_Empty(t *testing.T) {
	s := ComputeSummary(nil, nil, nil)
	if s.Findings.Total() != 0 || s.Gaps.Total() != 0 {
		t.Errorf("expected zero counts, got %+v", s)
	}
	if s.HighestGapSeverity != "" {
		t.Errorf("HighestGapSeverity = %q, want empty", s.HighestGapSeverity)
	}
	if s.RulesToVerify != nil {
		t.Errorf("RulesToVerify = %v, want nil", s.RulesToVerify)
	}
}

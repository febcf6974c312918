package review

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

const sectionedReview = `# AO PANEL REVIEW

### 1. **Trace** — Message Flow
**Verdict:** ✅ Looks Good

### 2. **Rook** — Security
**Verdict:** ⚠️ **SECURITY ISSUE FOUND** — owner can be claimed by first caller

### 3. **Patch** — Handlers
**Verdict:** Issue Found (see below)
**Diagnosis:** "Handler is a skeleton with no state mutation"
**Missing Checks:** frozen check before transfer

## Panel Summary
**Security Check:** ❌ FAIL

### Overall Security Assessment:
### **CRITICAL_ISSUES**
`

const inlineReview = `AO PANEL REVIEW
**Trace:** Message routing looks incomplete. Verdict: Issue Found

**Rook:** "No owner check on Transfer" Verdict: ⚠️ SECURITY ISSUE

**Nova:** Fine. Verdict: Looks Good
`

func TestExtract_SectionedNilGuard(t *testing.T) {
	doc := Document{Name: "claude-wp-1.txt", Text: "### 1. Trace — \n**Verdict:** Issue Found — missing nil guard on target"}
	issues := DefaultExtractor().Extract(doc)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	is := issues[0]
	if is.Severity != SeverityHigh {
		t.Errorf("Severity = %q, want %q", is.Severity, SeverityHigh)
	}
	if is.Category != "Trace" {
		t.Errorf("Category = %q, want %q", is.Category, "Trace")
	}
	if !strings.Contains(is.Description, "missing nil guard on target") {
		t.Errorf("Description = %q", is.Description)
	}
	if is.Verdict != "Issue Found" {
		t.Errorf("Verdict = %q, want %q", is.Verdict, "Issue Found")
	}
	if is.Source != SourcePanel || is.File != "claude-wp-1.txt" {
		t.Errorf("Source/File = %q/%q", is.Source, is.File)
	}
}

func TestExtract_Sectioned(t *testing.T) {
	issues := DefaultExtractor().Extract(Document{Name: "review.txt", Text: sectionedReview})
	want := []struct {
		category    string
		severity    Severity
		verdict     string
		description string
	}{
		{"Rook", SeverityCritical, "SECURITY ISSUE FOUND", "owner can be claimed by first caller"},
		{"Patch", SeverityHigh, "Issue Found", "Handler is a skeleton with no state mutation. Missing: frozen check before transfer"},
		{CategoryPanel, SeverityCritical, "FAIL", "Security Check Failed"},
		{CategoryPanel, SeverityCritical, AssessmentCriticalIssues, "Overall Assessment: CRITICAL_ISSUES"},
	}
	if len(issues) != len(want) {
		t.Fatalf("got %d issues, want %d: %+v", len(issues), len(want), issues)
	}
	for i, w := range want {
		got := issues[i]
		if got.Category != w.category || got.Severity != w.severity || got.Verdict != w.verdict {
			t.Errorf("issue %d = %s/%s/%s, want %s/%s/%s", i, got.Category, got.Severity, got.Verdict, w.category, w.severity, w.verdict)
		}
		if got.Description != w.description {
			t.Errorf("issue %d Description = %q, want %q", i, got.Description, w.description)
		}
	}
}

func TestExtract_InlineFallback(t *testing.T) {
	issues := DefaultExtractor().Extract(Document{Name: "legacy.txt", Text: inlineReview})
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2: %+v", len(issues), issues)
	}
	if issues[0].Category != "Trace" || issues[0].Description != "Message routing looks incomplete." {
		t.Errorf("issue 0 = %+v", issues[0])
	}
	if issues[1].Category != "Rook" || issues[1].Severity != SeverityCritical || issues[1].Description != "No owner check on Transfer" {
		t.Errorf("issue 1 = %+v", issues[1])
	}
	if issues[1].Verdict != "SECURITY ISSUE" {
		t.Errorf("Verdict = %q, want %q", issues[1].Verdict, "SECURITY ISSUE")
	}
}

func TestExtract_NoCrossSectionLeak(t *testing.T) {
	text := "AO PANEL\n### 1. **Trace** —\nAll fine here.\n### 2. **Rook** —\n**Verdict:** Issue Found — unchecked sender\n"
	issues := DefaultExtractor().Extract(Document{Text: text})
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	if issues[0].Category != "Rook" {
		t.Errorf("Category = %q, want Rook", issues[0].Category)
	}
}

func TestExtract_MissingTableRow(t *testing.T) {
	text := `| Category | Status | Line |
|----------|--------|------|
| Frozen Check | ❌ MISSING | 42 |
| Owner Check | ✅ PRESENT | 10 |
| Category | ❌ MISSING |
`
	issues := DefaultExtractor().Extract(Document{Name: "ao-panel-review.txt", Text: text, Dedicated: true})
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	is := issues[0]
	if is.Category != CategorySecurityTable || is.Severity != SeverityHigh || is.Description != "Missing: Frozen Check" {
		t.Errorf("issue = %+v", is)
	}
	if got := DefaultIndex().Lookup(is.Description); !reflect.DeepEqual(got, []string{"NO_FROZEN_CHECK"}) {
		t.Errorf("Lookup = %v, want [NO_FROZEN_CHECK]", got)
	}
}

func TestExtract_NoStructure(t *testing.T) {
	docs := []Document{
		{Name: "notes.txt", Text: "Just some notes about the weather.", Dedicated: true},
		{Name: "empty.txt", Text: ""},
		// Table rows alone do not pass the panel guard.
		{Name: "table.txt", Text: "| Frozen Check | ❌ MISSING |"},
	}
	ex := DefaultExtractor()
	for _, d := range docs {
		if issues := ex.Extract(d); len(issues) != 0 {
			t.Errorf("Extract(%s) = %+v, want none", d.Name, issues)
		}
	}
	if gaps := NewReconciler(nil).Reconcile(nil, ex.ExtractAll(docs)); len(gaps) != 0 {
		t.Errorf("gaps = %+v, want none", gaps)
	}
}

func TestExtract_OverallAssessment(t *testing.T) {
	issues := DefaultExtractor().Extract(Document{Text: "AO PANEL\n## Overall Assessment: NEEDS_WORK\n"})
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	is := issues[0]
	if is.Category != CategoryPanel || is.Severity != SeverityHigh || is.Description != "Overall Assessment: NEEDS_WORK" {
		t.Errorf("issue = %+v", is)
	}
}

func TestExtract_GlobalSignalVariants(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		severity Severity
		verdict  string
		desc     string
	}{
		{"plain assessment", "Overall Assessment: NEEDS_WORK", SeverityHigh, "NEEDS_WORK", "Overall Assessment: NEEDS_WORK"},
		{"bold assessment label", "**Overall Assessment:** NEEDS_WORK", SeverityHigh, "NEEDS_WORK", "Overall Assessment: NEEDS_WORK"},
		{"bold assessment value", "**Overall Assessment:** **CRITICAL_ISSUES**", SeverityCritical, "CRITICAL_ISSUES", "Overall Assessment: CRITICAL_ISSUES"},
		{"security check", "**Security Check:** FAIL", SeverityCritical, "FAIL", "Security Check Failed"},
		{"security check lowercase", "**Security check:** ❌ FAIL", SeverityCritical, "FAIL", "Security Check Failed"},
	}
	ex := DefaultExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ex.Extract(Document{Text: "AO PANEL\n" + tt.text + "\n"})
			if len(issues) != 1 {
				t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
			}
			is := issues[0]
			if is.Category != CategoryPanel || is.Severity != tt.severity || is.Verdict != tt.verdict || is.Description != tt.desc {
				t.Errorf("issue = %+v", is)
			}
		})
	}
}

func TestExtract_EmphasizedQualifier(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"sectioned", "### 1. Rook —\n**Verdict:** **CRITICAL** SECURITY ISSUE — owner race\n"},
		{"sectioned bold heading", "### 1. **Rook** —\n**Verdict:** **HIGH** **SECURITY ISSUE** — owner race\n"},
		{"inline", "AO PANEL\n**Rook:** owner race. Verdict: **CRITICAL** SECURITY ISSUE\n"},
	}
	ex := DefaultExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ex.Extract(Document{Text: tt.text})
			if len(issues) != 1 {
				t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
			}
			is := issues[0]
			if is.Category != "Rook" || is.Severity != SeverityCritical || is.Verdict != "SECURITY ISSUE" {
				t.Errorf("issue = %+v", is)
			}
			if !strings.Contains(is.Description, "owner race") {
				t.Errorf("Description = %q", is.Description)
			}
		})
	}
}

func TestExtract_PassSignals(t *testing.T) {
	text := "AO PANEL\n**Security Check:** ✅ PASS\n### **PASS**\n"
	if issues := DefaultExtractor().Extract(Document{Text: text}); len(issues) != 0 {
		t.Errorf("issues = %+v, want none", issues)
	}
}

func TestExtract_DescriptionFallbacks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "category fallback",
			text: "### 1. Trace —\n**Verdict:** Issue Found\n",
			want: "Trace found issue",
		},
		{
			name: "missing only",
			text: "### 1. Trace —\n**Verdict:** Issue Found\n- Missing: pcall around json.decode\n",
			want: "Missing: pcall around json.decode",
		},
		{
			name: "parenthetical discarded without diagnosis",
			text: "### 1. Trace —\n**Verdict:** Minor Issue (low impact)\n",
			want: "Trace found issue",
		},
		{
			name: "bold verdict label",
			text: "### 1. **Ledger** —\n**Verdict**: **Issue Found** — balance not bounded\n",
			want: "balance not bounded",
		},
	}
	ex := DefaultExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ex.Extract(Document{Text: tt.text, Dedicated: true})
			if len(issues) != 1 {
				t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
			}
			if issues[0].Description != tt.want {
				t.Errorf("Description = %q, want %q", issues[0].Description, tt.want)
			}
		})
	}
}

func TestExtract_Truncation(t *testing.T) {
	long := strings.Repeat("é", 150)
	text := "### 1. Trace —\n**Verdict:** Issue Found — " + long + "\n**Missing:** " + strings.Repeat("x", 80) + "\n"
	issues := DefaultExtractor().Extract(Document{Text: text, Dedicated: true})
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if n := utf8.RuneCountInString(issues[0].Description); n != MaxDescriptionLen {
		t.Errorf("description has %d runes, want %d", n, MaxDescriptionLen)
	}
	if !utf8.ValidString(issues[0].Description) {
		t.Error("description is not valid UTF-8")
	}
}

func TestExtract_Idempotent(t *testing.T) {
	ex := DefaultExtractor()
	doc := Document{Text: sectionedReview}
	first := ex.Extract(doc)
	second := ex.Extract(doc)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extract not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestExtract_CleanVerdictsOnly(t *testing.T) {
	text := "AO PANEL\n### 1. **Trace** —\n**Verdict:** Looks Good\n### 2. **Rook** —\n**Verdict:** Need More Info\n"
	if issues := DefaultExtractor().Extract(Document{Text: text}); len(issues) != 0 {
		t.Errorf("issues = %+v, want none", issues)
	}
}

func TestNewExtractor_CustomCategories(t *testing.T) {
	ex := NewExtractor(ExtractorOptions{Categories: []string{"Auditor"}})
	text := "### 1. **Auditor** —\n**Verdict:** Issue Found — unchecked math\n### 2. **Trace** —\n**Verdict:** Issue Found — ignored\n"
	issues := ex.Extract(Document{Text: text})
	if len(issues) != 1 || issues[0].Category != "Auditor" {
		t.Errorf("issues = %+v, want one Auditor issue", issues)
	}
	if ex.Fingerprint() == DefaultExtractor().Fingerprint() {
		t.Error("fingerprints should differ for different categories")
	}
	clean := NewExtractor(ExtractorOptions{CleanVerdicts: append([]string{"Approved"}, DefaultCleanVerdicts...)})
	if clean.Fingerprint() == DefaultExtractor().Fingerprint() {
		t.Error("fingerprints should differ for different clean verdicts")
	}
	if got := ex.Categories(); !reflect.DeepEqual(got, []string{"Auditor"}) {
		t.Errorf("Categories() = %v", got)
	}
}

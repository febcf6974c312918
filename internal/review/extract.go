package review

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// MaxDescriptionLen caps Issue descriptions, in runes.
const MaxDescriptionLen = 100

// missingAppendLen caps the "Missing:" annotation when it is appended to an
// existing description.
const missingAppendLen = 50

// Synthetic categories for document-wide signals.
const (
	CategoryPanel         = "Panel"
	CategorySecurityTable = "SecurityTable"
)

// DefaultCategories are the reviewer identities of the panel.
var DefaultCategories = []string{"Trace", "Rook", "Patch", "Sprocket", "Nova", "Ledger"}

// Verdict labels. Problem labels produce Issues; clean labels are recognized
// so that they stop the search for a category without producing one.
var (
	DefaultProblemVerdicts = []string{"Issue Found", "Minor Issue", "SECURITY ISSUE", "SECURITY ISSUE FOUND", "Issue"}
	DefaultCleanVerdicts   = []string{"Looks Good", "Need More Info"}
)

// DefaultPanelMarkers indicate a document contains a panel review.
var DefaultPanelMarkers = []string{"AO PANEL"}

// Assessment labels for the overall verdict.
const (
	AssessmentPass           = "PASS"
	AssessmentNeedsWork      = "NEEDS_WORK"
	AssessmentCriticalIssues = "CRITICAL_ISSUES"
)

var (
	diagnosisRe = regexp.MustCompile(`(?i)(?:\*\*)?Diagnosis:(?:\*\*)?[ \t]*["“]([^"”\n]+)["”]`)
	// missingRe accepts "**Missing ...:** text" anywhere and "Missing: text"
	// at the start of a line or bullet.
	missingRe       = regexp.MustCompile(`(?m)\*\*Missing[^:\n]*:\*\*[ \t]*([^\n]+)|^[ \t]*(?:[-*][ \t]+)?Missing:[ \t]*([^\n]+)`)
	securityCheckRe = regexp.MustCompile(`(?:\*\*)?(?i:Security Check):(?:\*\*)?[ \t]*(?:[^\sA-Za-z*]+[ \t]*)?(?:\*\*)?(FAIL|PASS)\b`)
	assessmentRe    = regexp.MustCompile(`(?i)(?:###[ \t]*\*\*|Overall\s+(?:Security\s+)?Assessment[:\s]*(?:\*\*)?[ \t]*(?:###[ \t]*)?\*{0,2})(PASS|NEEDS_WORK|CRITICAL_ISSUES)\b`)
	missingRowRe    = regexp.MustCompile(`\|[ \t]*([^|\n]+?)[ \t]*\|[ \t]*(?:❌|✗|✘)[ \t]*(?i:MISSING)[ \t]*\|`)
)

// tableHeaders are category cells that belong to a header row.
var tableHeaders = map[string]bool{"category": true, "status": true, "check": true}

// Extractor converts raw panel review text into Issues. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	categories []string
	problem    map[string]bool
	clean      []string
	markers    []string
	strategies []verdictStrategy
}

// ExtractorOptions overrides the default grammars. Empty fields keep defaults.
type ExtractorOptions struct {
	Categories      []string
	ProblemVerdicts []string
	CleanVerdicts   []string
	PanelMarkers    []string
}

// NewExtractor builds an Extractor. The sectioned grammar is tried first and
// the legacy inline grammar second.
func NewExtractor(opts ExtractorOptions) *Extractor {
	cats := orDefault(opts.Categories, DefaultCategories)
	problem := orDefault(opts.ProblemVerdicts, DefaultProblemVerdicts)
	clean := orDefault(opts.CleanVerdicts, DefaultCleanVerdicts)

	e := &Extractor{
		categories: cats,
		problem:    make(map[string]bool, len(problem)),
		clean:      make([]string, 0, len(clean)),
		markers:    orDefault(opts.PanelMarkers, DefaultPanelMarkers),
	}
	for _, p := range problem {
		e.problem[strings.ToLower(p)] = true
	}
	for _, c := range clean {
		e.clean = append(e.clean, strings.ToLower(c))
	}
	sort.Strings(e.clean)
	labels := newLabelSet(problem, clean)
	e.strategies = []verdictStrategy{
		newSectionStrategy(labels, cats),
		newInlineStrategy(labels, cats),
	}
	return e
}

// DefaultExtractor returns an Extractor with the built-in grammars.
func DefaultExtractor() *Extractor {
	return NewExtractor(ExtractorOptions{})
}

// Categories returns the reviewer labels the extractor looks for.
func (e *Extractor) Categories() []string {
	return append([]string(nil), e.categories...)
}

// Fingerprint identifies the grammar configuration, for cache keys.
func (e *Extractor) Fingerprint() string {
	problem := sortedKeys(e.problem)
	return fmt.Sprintf("v2|%s|%s|%s|%s", strings.Join(e.categories, ","), strings.Join(problem, ","),
		strings.Join(e.clean, ","), strings.Join(e.markers, ","))
}

// Extract returns the Issues found in doc, in document order: per-category
// verdicts, then the security check, the overall assessment, and missing
// table rows. A document with no recognizable structure yields no Issues.
func (e *Extractor) Extract(doc Document) []Issue {
	if !doc.Dedicated && !e.looksLikePanel(doc.Text) {
		return nil
	}

	var issues []Issue
	for _, cat := range e.categories {
		issues = append(issues, e.categoryIssues(doc, cat)...)
	}
	issues = append(issues, e.globalIssues(doc)...)
	issues = append(issues, missingRowIssues(doc)...)
	return issues
}

// ExtractAll runs Extract over docs in order.
func (e *Extractor) ExtractAll(docs []Document) []Issue {
	var issues []Issue
	for _, d := range docs {
		issues = append(issues, e.Extract(d)...)
	}
	return issues
}

func (e *Extractor) looksLikePanel(text string) bool {
	upper := strings.ToUpper(text)
	for _, m := range e.markers {
		if strings.Contains(upper, strings.ToUpper(m)) {
			return true
		}
	}
	for _, c := range e.categories {
		if strings.Contains(text, c) {
			return true
		}
	}
	return false
}

func (e *Extractor) categoryIssues(doc Document, category string) []Issue {
	var matches []verdictMatch
	for _, s := range e.strategies {
		if matches = s.find(doc.Text, category); len(matches) > 0 {
			break
		}
	}

	var issues []Issue
	for _, m := range matches {
		if !e.problem[strings.ToLower(m.label)] {
			continue
		}
		issues = append(issues, Issue{
			Severity:    verdictSeverity(m.label),
			Category:    category,
			Verdict:     m.label,
			Description: describe(m, category),
			File:        doc.Name,
			Source:      SourcePanel,
		})
	}
	return issues
}

// verdictSeverity rates security verdicts CRITICAL and everything else HIGH.
func verdictSeverity(label string) Severity {
	if strings.Contains(strings.ToLower(label), "security") {
		return SeverityCritical
	}
	return SeverityHigh
}

// describe derives an Issue description: trailing text, else the quoted
// diagnosis, plus any "Missing:" annotation in the span.
func describe(m verdictMatch, category string) string {
	desc := m.trailing
	if strings.HasPrefix(desc, "(") {
		desc = ""
	}
	if desc == "" {
		if d := diagnosisRe.FindStringSubmatch(m.span); d != nil {
			desc = Truncate(strings.TrimSpace(d[1]), MaxDescriptionLen)
		}
	}

	if miss := missingRe.FindStringSubmatch(m.span); miss != nil {
		text := strings.TrimSpace(miss[1] + miss[2])
		if desc != "" {
			desc = desc + ". Missing: " + Truncate(text, missingAppendLen)
		} else {
			desc = "Missing: " + text
		}
	}

	if desc == "" {
		return category + " found issue"
	}
	return Truncate(desc, MaxDescriptionLen)
}

func (e *Extractor) globalIssues(doc Document) []Issue {
	var issues []Issue
	if m := securityCheckRe.FindStringSubmatch(doc.Text); m != nil && m[1] == "FAIL" {
		issues = append(issues, Issue{
			Severity:    SeverityCritical,
			Category:    CategoryPanel,
			Verdict:     "FAIL",
			Description: "Security Check Failed",
			File:        doc.Name,
			Source:      SourcePanel,
		})
	}
	if m := assessmentRe.FindStringSubmatch(doc.Text); m != nil {
		label := strings.ToUpper(m[1])
		if label != AssessmentPass {
			sev := SeverityHigh
			if strings.Contains(label, "CRITICAL") {
				sev = SeverityCritical
			}
			issues = append(issues, Issue{
				Severity:    sev,
				Category:    CategoryPanel,
				Verdict:     label,
				Description: "Overall Assessment: " + label,
				File:        doc.Name,
				Source:      SourcePanel,
			})
		}
	}
	return issues
}

func missingRowIssues(doc Document) []Issue {
	var issues []Issue
	for _, m := range missingRowRe.FindAllStringSubmatch(doc.Text, -1) {
		cell := strings.TrimSpace(strings.Trim(m[1], "*"))
		if cell == "" || tableHeaders[strings.ToLower(cell)] || strings.Trim(cell, "-: ") == "" {
			continue
		}
		issues = append(issues, Issue{
			Severity:    SeverityHigh,
			Category:    CategorySecurityTable,
			Verdict:     "MISSING",
			Description: Truncate("Missing: "+cell, MaxDescriptionLen),
			File:        doc.Name,
			Source:      SourcePanel,
		})
	}
	return issues
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return append([]string(nil), def...)
	}
	return append([]string(nil), v...)
}

package review

// Assessment records how one Issue relates to the analyzer's rule codes.
type Assessment struct {
	Issue    Issue
	Expected []string
	Covered  bool
}

// Reconciler determines which panel Issues the analyzer's rules did not
// cover. It holds no state besides its read-only Index.
type Reconciler struct {
	index *Index
}

// NewReconciler returns a Reconciler backed by ix. A nil ix uses the
// built-in table.
func NewReconciler(ix *Index) *Reconciler {
	if ix == nil {
		ix = DefaultIndex()
	}
	return &Reconciler{index: ix}
}

// Index returns the keyword table used for lookups.
func (r *Reconciler) Index() *Index {
	return r.index
}

// AnalyzerCodes returns the set of rule codes present across findings.
// Empty codes count as UNKNOWN.
func AnalyzerCodes(findings []Finding) map[string]bool {
	codes := make(map[string]bool, len(findings))
	for _, f := range findings {
		code := f.Code
		if code == "" {
			code = UnknownCode
		}
		codes[code] = true
	}
	return codes
}

// Coverage assesses every Issue in input order.
func (r *Reconciler) Coverage(findings []Finding, issues []Issue) []Assessment {
	codes := AnalyzerCodes(findings)
	out := make([]Assessment, 0, len(issues))
	for _, is := range issues {
		expected := r.index.Lookup(is.Description)
		out = append(out, Assessment{
			Issue:    is,
			Expected: expected,
			Covered:  intersects(expected, codes),
		})
	}
	return out
}

// Reconcile returns a Gap for every uncovered Issue, in input order. Issues
// whose description matches no keyword carry the NEW_RULE_NEEDED sentinel.
// No deduplication is performed.
func (r *Reconciler) Reconcile(findings []Finding, issues []Issue) []Gap {
	var gaps []Gap
	for _, a := range r.Coverage(findings, issues) {
		if a.Covered {
			continue
		}
		expected := a.Expected
		if len(expected) == 0 {
			expected = []string{NewRuleNeeded}
		}
		sev := a.Issue.Severity
		if sev == "" {
			sev = SeverityUnknown
		}
		gaps = append(gaps, Gap{
			Severity:      sev,
			Category:      a.Issue.Category,
			Description:   a.Issue.Description,
			ExpectedRules: expected,
		})
	}
	return gaps
}

func intersects(rules []string, codes map[string]bool) bool {
	for _, r := range rules {
		if codes[r] {
			return true
		}
	}
	return false
}

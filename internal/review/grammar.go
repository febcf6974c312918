package review

import (
	"regexp"
	"sort"
	"strings"
)

// sectionBoundary marks the start of the next reviewer or summary section.
var sectionBoundary = regexp.MustCompile(`(?i)###[ \t]*(?:\d+\.|\*\*)|##[ \t]*(?:Panel|Security|AO-Specific|Overall)`)

// verdictMatch is one verdict found for a category.
type verdictMatch struct {
	label string
	// trailing is free text following the verdict (sectioned) or the
	// category marker (inline) on the same line.
	trailing string
	// span is the bounded text the verdict was found in.
	span string
}

// verdictStrategy extracts verdicts for one category from a document.
// Strategies are tried in order; the first one returning matches wins.
type verdictStrategy interface {
	name() string
	find(text, category string) []verdictMatch
}

// labelSet maps lowercased labels back to their canonical spelling and builds
// a longest-first alternation so that longer labels win over their prefixes.
type labelSet struct {
	canonical map[string]string
	pattern   string
}

func newLabelSet(labels ...[]string) labelSet {
	ls := labelSet{canonical: make(map[string]string)}
	var all []string
	for _, group := range labels {
		for _, l := range group {
			key := strings.ToLower(l)
			if _, ok := ls.canonical[key]; ok {
				continue
			}
			ls.canonical[key] = l
			all = append(all, l)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return len(all[i]) > len(all[j]) })
	quoted := make([]string, len(all))
	for i, l := range all {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(l), " ", `\s+`)
	}
	ls.pattern = "(" + strings.Join(quoted, "|") + ")"
	return ls
}

func (ls labelSet) canon(matched string) string {
	key := strings.ToLower(strings.Join(strings.Fields(matched), " "))
	if c, ok := ls.canonical[key]; ok {
		return c
	}
	return matched
}

// sectionStrategy finds a heading such as "### 2. **Rook** —", bounds the
// section at the next heading, and searches it for "**Verdict:** <label>".
type sectionStrategy struct {
	labels  labelSet
	verdict *regexp.Regexp
	cache   map[string]*regexp.Regexp
}

// Verdict markers accept an optional glyph (emoji) and severity qualifier,
// each optionally wrapped in bold markers.
const (
	verdictGlyph     = `(?:[^\sA-Za-z*]+[ \t]*)?`
	verdictQualifier = `(?:(?:CRITICAL|HIGH|MEDIUM|LOW)(?:\*\*)?[ \t]+(?:\*\*)?)?`
)

func newSectionStrategy(ls labelSet, categories []string) *sectionStrategy {
	s := &sectionStrategy{
		labels: ls,
		verdict: regexp.MustCompile(`(?i)(?:\*\*)?Verdict(?:\*\*)?[ \t]*:(?:\*\*)?[ \t]*(?:\*\*)?` +
			verdictGlyph + `(?:\*\*)?` + verdictQualifier + ls.pattern + `\b(?:\*\*)?`),
		cache: make(map[string]*regexp.Regexp, len(categories)),
	}
	for _, c := range categories {
		s.cache[c] = compileHeading(c)
	}
	return s
}

func (s *sectionStrategy) name() string { return "section" }

// heading returns the precompiled heading pattern for category. The cache is
// filled at construction and only read afterwards.
func (s *sectionStrategy) heading(category string) *regexp.Regexp {
	if re, ok := s.cache[category]; ok {
		return re
	}
	return compileHeading(category)
}

func compileHeading(category string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)###[ \t]*(?:\d+\.[ \t]*)?(?:\*\*)?` + regexp.QuoteMeta(category) + `(?:\*\*)?[ \t]*[—–-]`)
}

func (s *sectionStrategy) find(text, category string) []verdictMatch {
	loc := s.heading(category).FindStringIndex(text)
	if loc == nil {
		return nil
	}
	end := len(text)
	if b := sectionBoundary.FindStringIndex(text[loc[1]:]); b != nil {
		end = loc[1] + b[0]
	}
	section := text[loc[0]:end]

	m := s.verdict.FindStringSubmatchIndex(section)
	if m == nil {
		return nil
	}
	return []verdictMatch{{
		label:    s.labels.canon(section[m[2]:m[3]]),
		trailing: trailingText(section[m[1]:]),
		span:     section,
	}}
}

// inlineStrategy handles the older "**Rook:** text ... Verdict: <label>"
// layout, where the verdict follows the category marker in the same block.
type inlineStrategy struct {
	labels  labelSet
	verdict *regexp.Regexp
	cache   map[string]*regexp.Regexp
}

func newInlineStrategy(ls labelSet, categories []string) *inlineStrategy {
	s := &inlineStrategy{
		labels: ls,
		verdict: regexp.MustCompile(`(?i)Verdict(?:\*\*)?[ \t]*:(?:\*\*)?[ \t]*(?:\*\*)?` +
			verdictGlyph + `(?:\*\*)?` + verdictQualifier + ls.pattern + `\b`),
		cache: make(map[string]*regexp.Regexp, len(categories)),
	}
	for _, c := range categories {
		s.cache[c] = compileInlineMarker(c)
	}
	return s
}

func (s *inlineStrategy) name() string { return "inline" }

func (s *inlineStrategy) marker(category string) *regexp.Regexp {
	if re, ok := s.cache[category]; ok {
		return re
	}
	return compileInlineMarker(category)
}

func compileInlineMarker(category string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\*\*` + regexp.QuoteMeta(category) + `(?::\*\*|\*\*[ \t]*:?)`)
}

func (s *inlineStrategy) find(text, category string) []verdictMatch {
	var out []verdictMatch
	for _, loc := range s.marker(category).FindAllStringIndex(text, -1) {
		block := text[loc[1]:]
		if i := strings.Index(block, "\n\n"); i >= 0 {
			block = block[:i]
		}
		if b := sectionBoundary.FindStringIndex(block); b != nil {
			block = block[:b[0]]
		}
		m := s.verdict.FindStringSubmatchIndex(block)
		if m == nil {
			continue
		}
		out = append(out, verdictMatch{
			label:    s.labels.canon(block[m[2]:m[3]]),
			trailing: inlineDescription(block[:m[0]]),
			span:     block,
		})
	}
	return out
}

// trailingText returns the rest of the current line after separators.
func trailingText(rest string) string {
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimLeft(rest, " \t—–-:*")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "**"))
}

// inlineDescription returns the first line of text following an inline
// category marker, stopping at quotes and emphasis.
func inlineDescription(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	if i := strings.IndexAny(s, `"*`); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

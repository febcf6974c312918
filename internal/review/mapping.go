package review

import (
	"sort"
	"strings"
)

// MappingEntry associates a description keyword with the analyzer rule codes
// that should have reported the described problem.
type MappingEntry struct {
	Keyword string   `json:"keyword" yaml:"keyword"`
	Rules   []string `json:"rules" yaml:"rules"`
}

// Index is an ordered, read-only keyword table. Lookups are safe for
// concurrent use; an Index is never mutated after construction.
type Index struct {
	entries []MappingEntry
}

// NewIndex builds an Index from entries, preserving their order. Keywords are
// lowercased and entries without a keyword or rules are dropped.
func NewIndex(entries []MappingEntry) *Index {
	ix := &Index{entries: make([]MappingEntry, 0, len(entries))}
	for _, e := range entries {
		kw := strings.ToLower(strings.TrimSpace(e.Keyword))
		if kw == "" || len(e.Rules) == 0 {
			continue
		}
		rules := make([]string, len(e.Rules))
		copy(rules, e.Rules)
		ix.entries = append(ix.entries, MappingEntry{Keyword: kw, Rules: rules})
	}
	return ix
}

// DefaultIndex returns the built-in keyword table.
func DefaultIndex() *Index {
	return NewIndex(defaultMappings)
}

// Extend returns a new Index with extra appended after the receiver's entries.
func (ix *Index) Extend(extra []MappingEntry) *Index {
	combined := make([]MappingEntry, 0, len(ix.entries)+len(extra))
	combined = append(combined, ix.entries...)
	combined = append(combined, extra...)
	return NewIndex(combined)
}

// Entries returns a copy of the table in lookup order.
func (ix *Index) Entries() []MappingEntry {
	out := make([]MappingEntry, len(ix.entries))
	for i, e := range ix.entries {
		out[i] = MappingEntry{Keyword: e.Keyword, Rules: append([]string(nil), e.Rules...)}
	}
	return out
}

// Len returns the number of keywords in the table.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Lookup returns the union of the rule codes of every keyword contained in
// description, in first-seen table order. It returns nil when nothing matches.
func (ix *Index) Lookup(description string) []string {
	desc := strings.ToLower(description)
	var out []string
	seen := make(map[string]bool)
	for _, e := range ix.entries {
		if !strings.Contains(desc, e.Keyword) {
			continue
		}
		for _, r := range e.Rules {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// Keywords returns the keywords contained in description, in table order.
func (ix *Index) Keywords(description string) []string {
	desc := strings.ToLower(description)
	var out []string
	for _, e := range ix.entries {
		if strings.Contains(desc, e.Keyword) {
			out = append(out, e.Keyword)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// defaultMappings is the curated panel-vocabulary to analyzer-rule table.
var defaultMappings = []MappingEntry{
	// authorization
	{"authorization", []string{"NO_AUTH_CHECK", "MISSING_OWNER_CHECK"}},
	// nil safety
	{"nil guard", []string{"NIL_GUARD_REQUIRED", "UNSAFE_NIL_COMPARISON", "OWNER_EXPLICIT_NIL", "AO_SEND_TARGET_NO_NIL_GUARD"}},
	{"nil == nil", []string{"NIL_GUARD_REQUIRED", "OWNER_EXPLICIT_NIL"}},
	{"nil==nil", []string{"OWNER_EXPLICIT_NIL", "NIL_GUARD_REQUIRED"}},
	{"missing nil", []string{"OWNER_EXPLICIT_NIL", "AO_SEND_TARGET_NO_NIL_GUARD", "NIL_GUARD_REQUIRED"}},
	{"explicit nil", []string{"OWNER_EXPLICIT_NIL"}},
	// ownership
	{"owner", []string{"NO_AUTH_CHECK", "UNSAFE_OWNER_OR_PATTERN", "OWNER_NEVER_INITIALIZED", "OWNER_EXPLICIT_NIL", "FIRST_CALLER_WINS_OWNER"}},
	{"owner = nil", []string{"OWNER_EXPLICIT_NIL"}},
	{"first-caller", []string{"FIRST_CALLER_WINS_OWNER"}},
	{"first caller", []string{"FIRST_CALLER_WINS_OWNER"}},
	{"race condition", []string{"FIRST_CALLER_WINS_OWNER"}},
	{"claim ownership", []string{"FIRST_CALLER_WINS_OWNER"}},
	// message targets
	{"msg.from", []string{"AO_SEND_TARGET_NO_NIL_GUARD"}},
	{"target = msg", []string{"AO_SEND_TARGET_NO_NIL_GUARD"}},
	// json boundaries
	{"json.decode", []string{"JSON_DECODE_NO_PCALL", "MSG_DATA_NO_JSON_DECODE"}},
	{"json.encode", []string{"JSON_ENCODE_NO_PCALL"}},
	{"nil values in json", []string{"JSON_ENCODE_NO_PCALL"}},
	{"could be nil", []string{"JSON_ENCODE_NO_PCALL"}},
	{"pcall", []string{"JSON_DECODE_NO_PCALL", "JSON_ENCODE_NO_PCALL", "MSG_DATA_NO_JSON_DECODE"}},
	{"json protection", []string{"JSON_DECODE_NO_PCALL", "MSG_DATA_NO_JSON_DECODE"}},
	// frozen state
	{"frozen", []string{"NO_FROZEN_CHECK"}},
	{"frozen check", []string{"NO_FROZEN_CHECK"}},
	// handler matching
	{"hasmatchingtag", []string{"HASMATCHING_TAG_NO_HANDLER_AUTH", "LOOSE_MATCHER_MUTATION"}},
	{"action tag validation", []string{"MATCHER_MISSING_ACTION_TAG"}},
	// determinism
	{"determinism", []string{"DETERMINISM_VIOLATION", "OS_TIME_USAGE", "MATH_RANDOM_UNSEEDED"}},
	{"os.time", []string{"DETERMINISM_VIOLATION", "OS_TIME_USAGE"}},
	{"non-determinism", []string{"DETERMINISM_VIOLATION", "OS_TIME_USAGE", "MATH_RANDOM_UNSEEDED"}},
	{"math.random", []string{"DETERMINISM_VIOLATION", "MATH_RANDOM_UNSEEDED"}},
	// schema validation
	{"schema", []string{"NO_SCHEMA_VALIDATION"}},
	{"schema validation", []string{"NO_SCHEMA_VALIDATION"}},
	{"missing schema", []string{"NO_SCHEMA_VALIDATION"}},
	{"validation", []string{"NO_SCHEMA_VALIDATION"}},
	{"type validation", []string{"NO_SCHEMA_VALIDATION"}},
	{"not validated", []string{"NO_SCHEMA_VALIDATION"}},
	{"accepts any", []string{"NO_SCHEMA_VALIDATION"}},
	{"required keys", []string{"NO_SCHEMA_VALIDATION"}},
	{"matcher accepts", []string{"NO_SCHEMA_VALIDATION"}},
	// state mutation
	{"state mutation", []string{"HANDLER_NO_STATE_MUTATION"}},
	{"no-op", []string{"HANDLER_NO_STATE_MUTATION"}},
	{"doesn't mutate", []string{"HANDLER_NO_STATE_MUTATION"}},
	{"skeleton", []string{"HANDLER_NO_STATE_MUTATION"}},
	{"no actual", []string{"HANDLER_NO_STATE_MUTATION"}},
	{"msg.data", []string{"MSG_DATA_NO_JSON_DECODE"}},
	{"state overwrite", []string{"ARBITRARY_STATE_OVERWRITE"}},
	{"arbitrary", []string{"ARBITRARY_STATE_OVERWRITE"}},
	{"overwrite owner", []string{"ARBITRARY_STATE_OVERWRITE"}},
	{"corrupt", []string{"ARBITRARY_STATE_OVERWRITE"}},
	// bounds
	{"bounds", []string{"BOUNDS_DEFINED_NOT_ENFORCED", "NO_BOUNDS_DEFINED"}},
	{"bounds not enforced", []string{"BOUNDS_DEFINED_NOT_ENFORCED"}},
	{"no parameter bounds", []string{"NO_BOUNDS_DEFINED"}},
	{"unbounded", []string{"NO_BOUNDS_DEFINED"}},
	{"exceed", []string{"BOUNDS_DEFINED_NOT_ENFORCED"}},
	// audit trail
	{"timestamp", []string{"NO_TIMESTAMP_TRACKING"}},
	{"audit trail", []string{"NO_TIMESTAMP_TRACKING"}},
	{"temporal", []string{"NO_TIMESTAMP_TRACKING"}},
	{"replay", []string{"NO_TIMESTAMP_TRACKING"}},
	// controller-specific checks
	{"learning infrastructure", []string{"DOMAIN_SPECIFIC_PID"}},
	{"missing bounds", []string{"DOMAIN_SPECIFIC_PID", "BOUNDS_DEFINED_NOT_ENFORCED"}},
	{"score tracking", []string{"DOMAIN_SPECIFIC_PID"}},
	{"history tracking", []string{"DOMAIN_SPECIFIC_PID"}},
	{"no learning", []string{"DOMAIN_SPECIFIC_PID"}},
}

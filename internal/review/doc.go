// Package review contains the core types and engine for reconciling static
// analyzer findings with expert panel reviews.
//
// The Extractor turns panel review prose into Issue records. Each reviewer
// category is searched with an ordered list of grammars: a sectioned grammar
// that bounds a "### N. **Name** —" heading to the next heading before
// looking for a verdict marker, then a legacy inline grammar. Document-wide
// signals (security check, overall assessment, missing-status table rows)
// produce synthetic Issues.
//
// The Index maps description keywords to analyzer rule codes. Lookups return
// the union of every matching keyword's rules. Mapping packs (rules.go) extend
// or replace the built-in table from YAML or JSON.
//
// The Reconciler reports a Gap for each Issue whose expected rules do not
// intersect the codes the analyzer emitted. Issues with no mapped rules carry
// the NEW_RULE_NEEDED sentinel.
//
// ExtractDocuments (batch.go) extracts many documents in parallel with bounded
// concurrency and an optional content-addressed cache; results are merged in
// document order.
package review

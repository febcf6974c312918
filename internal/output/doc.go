// Package output formats gap reports for display or machine consumption.
//
// Four formats are supported:
//   - text: the terminal gap report with counts, truncated detail listings,
//     the gap list and recommended actions (default)
//   - json: the full structured report
//   - markdown: a PR comment with collapsible sections per gap severity
//   - sarif: SARIF v2.1.0, one result per gap
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*review.Report]. [WriteReport]
// handles destination selection.
package output

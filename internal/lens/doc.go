// Package lens loads static analyzer results.
//
// Results come either from JSON files left in a directory by earlier runs
// (LoadDir) or from invoking the analyzer CLI directly (Runner.Audit). Both
// accept the multi-file layout, where findings are grouped under "files", and
// the single-file layout with a top-level "findings" array. Missing codes
// become UNKNOWN and severities are upper-cased.
package lens

// Panelgap reconciles static analyzer findings with expert-panel review
// verdicts and reports the issues the panel caught that no analyzer rule
// covered.
//
// It reads ao-lens JSON outputs and panel transcripts, or panel results
// recorded in the saga event stream, and emits a gap report with
// deterministic exit codes suitable for CI gating.
//
// Usage:
//
//	panelgap analyze --lens-dir out/ --transcripts logs/   # reconcile a run
//	panelgap panel packet WP-101                           # one work packet
//	panelgap panel recent --limit 5                        # recent rejections
//	panelgap audit src/token.lua --packet WP-101           # run ao-lens, then compare
//	panelgap extract logs/claude-wp-01.txt                 # show extracted issues
//	panelgap mapping lookup "missing frozen check"         # show mapped rules
//
// See https://github.com/dshills/panelgap for full documentation.
package main

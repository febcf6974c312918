// Package cli wires together the Cobra command tree for the panelgap binary.
//
// It defines the root command and all subcommands (analyze, panel, audit,
// extract, mapping, config, cache, version), binds flags, reads
// configuration, runs the loaders and the reconciler, and returns
// deterministic exit codes for CI gating.
package cli

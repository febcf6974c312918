package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/panelgap/internal/cache"
	"github.com/dshills/panelgap/internal/config"
	"github.com/dshills/panelgap/internal/logging"
	"github.com/dshills/panelgap/internal/output"
	"github.com/dshills/panelgap/internal/review"
	"github.com/dshills/panelgap/internal/sagastore"
)

// Shared report flags
var (
	flagFormat    string
	flagOut       string
	flagFailOn    string
	flagExperts   string
	flagMapping   string
	flagWorkers   int
	flagMaxListed int
	flagNoCache   bool
	flagNoRedact  bool
)

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit 1 when a gap meets this severity (none, low, medium, high, critical)")
	cmd.Flags().StringVar(&flagExperts, "experts", "", "Reviewer category labels (comma-separated)")
	cmd.Flags().StringVar(&flagMapping, "mapping", "", "Keyword-to-rule mapping pack (YAML or JSON)")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "Concurrent document extractions")
	cmd.Flags().IntVar(&flagMaxListed, "max-listed", 0, "Findings and issues detailed in the text report")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the extraction cache")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagExperts != "" {
		m["experts"] = flagExperts
	}
	if flagMapping != "" {
		m["mappingFile"] = flagMapping
	}
	if flagWorkers > 0 {
		m["workers"] = fmt.Sprintf("%d", flagWorkers)
	}
	if flagMaxListed > 0 {
		m["maxListed"] = fmt.Sprintf("%d", flagMaxListed)
	}
	return m
}

// parseSets turns --set key=value pairs into config overrides.
func parseSets(sets []string) (map[string]string, error) {
	m := make(map[string]string, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", s)
		}
		m[k] = v
	}
	return m, nil
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// loadConfig resolves the effective config and sets up the logger. Explicit
// flags win over --set pairs.
func loadConfig() (config.Config, error) {
	overrides, err := parseSets(flagSet)
	if err != nil {
		return config.Config{}, err
	}
	for k, v := range buildOverrides() {
		overrides[k] = v
	}
	cfg, err := config.Load(overrides)
	if err != nil {
		return config.Config{}, err
	}
	if _, err := output.GetWriter(cfg.Format, output.Options{}); err != nil {
		return config.Config{}, err
	}
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}

	l, err := logging.New(cfg.LogLevel, flagDebug)
	if err != nil {
		return config.Config{}, err
	}
	logger = l
	if !cfg.Privacy.RedactSecrets {
		logger.Warn("secret redaction is disabled")
	}
	logger.Debugw("effective config", "config", cfg.Redacted())
	return cfg, nil
}

func newExtractor(cfg config.Config) *review.Extractor {
	return review.NewExtractor(review.ExtractorOptions{Categories: cfg.Experts})
}

func newReconciler(cfg config.Config) (*review.Reconciler, error) {
	ix, err := review.LoadIndex(cfg.MappingFile)
	if err != nil {
		return nil, fmt.Errorf("loading mappings: %w", err)
	}
	return review.NewReconciler(ix), nil
}

// batchOptions opens the extraction cache. A cache that cannot be opened is
// logged and skipped.
func batchOptions(cfg config.Config) review.BatchOptions {
	opts := review.BatchOptions{Workers: cfg.Workers}
	if !cfg.Cache.Enabled {
		return opts
	}
	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		logger.Warnw("extraction cache unavailable", "error", err)
		return opts
	}
	opts.Cache = c
	return opts
}

func storeOptions(cfg config.Config) sagastore.Options {
	return sagastore.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		StreamPrefix: cfg.Redis.StreamPrefix,
		EventType:    cfg.Redis.EventType,
		Redact:       cfg.Privacy.RedactSecrets,
		Log:          logger,
	}
}

// writeReport renders the report and applies the fail-on threshold.
func writeReport(report *review.Report, cfg config.Config) {
	if err := output.WriteReport(report, cfg.Format, flagOut, output.Options{MaxListed: cfg.MaxListed}); err != nil {
		fail(ExitRuntimeError, fmt.Errorf("writing output: %w", err))
		return
	}
	if gapsMeetThreshold(report.Gaps, cfg.FailOn) {
		exitCode = ExitGaps
	}
}

func gapsMeetThreshold(gaps []review.Gap, failOn string) bool {
	for _, g := range gaps {
		if review.MeetsThreshold(g.Severity, failOn) {
			return true
		}
	}
	return false
}

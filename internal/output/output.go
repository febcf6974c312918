package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/panelgap/internal/review"
)

// DefaultMaxListed is how many findings and issues the text report details.
const DefaultMaxListed = 10

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// Options tune the human-readable writers.
type Options struct {
	// MaxListed caps the detail listings of findings and issues. Zero or
	// less means DefaultMaxListed.
	MaxListed int
}

func (o Options) maxListed() int {
	if o.MaxListed <= 0 {
		return DefaultMaxListed
	}
	return o.MaxListed
}

// Formats lists the supported format names.
var Formats = []string{"text", "json", "markdown", "sarif"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string, opts Options) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{MaxListed: opts.maxListed()}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{MaxListed: opts.maxListed()}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *review.Report, format, outPath string, opts Options) error {
	writer, err := GetWriter(format, opts)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

// severityOrder is the display order of severity buckets.
var severityOrder = []review.Severity{
	review.SeverityCritical,
	review.SeverityHigh,
	review.SeverityMedium,
	review.SeverityLow,
}

// gapOrder adds a trailing bucket for unrecognized severities.
var gapOrder = []review.Severity{
	review.SeverityCritical,
	review.SeverityHigh,
	review.SeverityMedium,
	review.SeverityLow,
	review.SeverityUnknown,
}

func countFor(c review.SeverityCounts, s review.Severity) int {
	switch s {
	case review.SeverityCritical:
		return c.Critical
	case review.SeverityHigh:
		return c.High
	case review.SeverityMedium:
		return c.Medium
	case review.SeverityLow:
		return c.Low
	default:
		return c.Other
	}
}

func groupGaps(gaps []review.Gap) map[review.Severity][]review.Gap {
	m := make(map[review.Severity][]review.Gap)
	for _, g := range gaps {
		sev := g.Severity
		if review.SeverityRank(sev) == 0 {
			sev = review.SeverityUnknown
		}
		m[sev] = append(m[sev], g)
	}
	return m
}

package lens

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/panelgap/internal/review"
)

// DefaultGlob matches analyzer output files in a results directory.
const DefaultGlob = "ao-lens-*.json"

// filePrefix is stripped from output file names to recover the audited file.
const filePrefix = "ao-lens-"

// rawFinding is one analyzer finding as emitted on the wire.
type rawFinding struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Line     *int   `json:"line"`
}

type rawFile struct {
	File     string       `json:"file"`
	Findings []rawFinding `json:"findings"`
}

// Output is one analyzer run. Multi-file runs populate Files; single-file
// runs populate Findings at the top level.
type Output struct {
	Files    []rawFile       `json:"files"`
	Findings []rawFinding    `json:"findings"`
	Summary  json.RawMessage `json:"summary,omitempty"`
	Pass     *bool           `json:"pass,omitempty"`
}

// ParseOutput decodes analyzer JSON. name is the output file name and is
// used for findings that carry no file of their own.
func ParseOutput(data []byte, name string) ([]review.Finding, error) {
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing analyzer output: %w", err)
	}
	return out.toFindings(name), nil
}

func (o Output) toFindings(name string) []review.Finding {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var findings []review.Finding
	if o.Files != nil {
		for _, f := range o.Files {
			file := f.File
			if file == "" {
				file = stem
			}
			for _, rf := range f.Findings {
				findings = append(findings, rf.toFinding(file))
			}
		}
		return findings
	}
	file := strings.TrimPrefix(stem, filePrefix)
	for _, rf := range o.Findings {
		findings = append(findings, rf.toFinding(file))
	}
	return findings
}

func (rf rawFinding) toFinding(file string) review.Finding {
	code := strings.TrimSpace(rf.Code)
	if code == "" {
		code = review.UnknownCode
	}
	return review.Finding{
		Severity: review.NormalizeSeverity(rf.Severity),
		Code:     code,
		Message:  rf.Message,
		Line:     rf.Line,
		File:     file,
		Source:   review.SourceAnalyzer,
	}
}

// Loader reads analyzer output files from a directory.
type Loader struct {
	Glob string
	Log  *zap.SugaredLogger
}

// LoadDir parses every output file in dir matching the loader's glob, in
// name order. Unreadable or malformed files are logged and skipped. It
// returns the findings and the names of the files that parsed.
func (l Loader) LoadDir(dir string) ([]review.Finding, []string, error) {
	glob := l.Glob
	if glob == "" {
		glob = DefaultGlob
	}
	log := l.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("analyzer directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("analyzer directory: %s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid analyzer glob %q: %w", glob, err)
	}
	sort.Strings(paths)

	var findings []review.Finding
	var loaded []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			log.Warnw("skipping analyzer output", "file", p, "error", err)
			continue
		}
		fs, err := ParseOutput(data, filepath.Base(p))
		if err != nil {
			log.Warnw("skipping analyzer output", "file", p, "error", err)
			continue
		}
		log.Debugw("loaded analyzer output", "file", p, "findings", len(fs))
		findings = append(findings, fs...)
		loaded = append(loaded, filepath.Base(p))
	}
	return findings, loaded, nil
}

package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/dshills/panelgap/internal/gitctx"
	"github.com/dshills/panelgap/internal/redact"
	"github.com/dshills/panelgap/internal/review"
)

// Defaults for a transcript directory.
const (
	DefaultGlob       = "claude-wp-*.txt"
	DefaultReviewFile = "ao-panel-review.txt"
)

// Loader reads panel transcripts from a directory.
type Loader struct {
	// Glob selects work-packet transcripts.
	Glob string
	// ReviewFile is the dedicated panel review, processed even without a
	// panel marker.
	ReviewFile string
	// Exclude drops matching file names.
	Exclude []string
	Redact  bool
	Log     *zap.SugaredLogger
}

// LoadDir returns the documents in dir: transcripts matching the glob in
// name order, then the dedicated review file when present. Unreadable files
// are logged and skipped.
func (l Loader) LoadDir(dir string) ([]review.Document, error) {
	glob := l.Glob
	if glob == "" {
		glob = DefaultGlob
	}
	reviewFile := l.ReviewFile
	if reviewFile == "" {
		reviewFile = DefaultReviewFile
	}
	log := l.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("transcript directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("transcript directory: %s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, fmt.Errorf("invalid transcript glob %q: %w", glob, err)
	}
	sort.Strings(paths)

	var docs []review.Document
	for _, p := range paths {
		if filepath.Base(p) == reviewFile || gitctx.MatchesAny(filepath.Base(p), l.Exclude) {
			continue
		}
		doc, err := l.read(p, false)
		if err != nil {
			log.Warnw("skipping transcript", "file", p, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	dedicated := filepath.Join(dir, reviewFile)
	if _, err := os.Stat(dedicated); err == nil {
		doc, err := l.read(dedicated, true)
		if err != nil {
			log.Warnw("skipping panel review", "file", dedicated, "error", err)
		} else {
			docs = append(docs, doc)
		}
	}

	log.Debugw("loaded transcripts", "dir", dir, "documents", len(docs))
	return docs, nil
}

// LoadFiles reads the given files as documents. Files named like the
// dedicated review file are marked dedicated.
func (l Loader) LoadFiles(paths []string) ([]review.Document, error) {
	reviewFile := l.ReviewFile
	if reviewFile == "" {
		reviewFile = DefaultReviewFile
	}
	docs := make([]review.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := l.read(p, filepath.Base(p) == reviewFile)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l Loader) read(path string, dedicated bool) (review.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return review.Document{}, fmt.Errorf("reading transcript: %w", err)
	}
	text := string(data)
	if l.Redact {
		var n int
		text, n = redact.Scrub(text)
		if n > 0 && l.Log != nil {
			l.Log.Debugw("redacted secrets", "file", path, "count", n)
		}
	}
	return review.Document{Name: filepath.Base(path), Text: text, Dedicated: dedicated}, nil
}

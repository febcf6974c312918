package review

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// defaultWorkers limits parallel document extraction.
const defaultWorkers = 4

// IssueCache stores serialized extraction results keyed by document content.
type IssueCache interface {
	Get(key string) (string, bool)
	Put(key, value string) error
}

// BatchOptions controls ExtractDocuments.
type BatchOptions struct {
	Workers int
	Cache   IssueCache
}

// ExtractDocuments extracts Issues from docs in parallel with bounded
// concurrency. Results are merged in document order, so the output equals
// ExtractAll(docs). Cache errors are ignored; a failed Put only costs a
// re-extraction next run.
func (e *Extractor) ExtractDocuments(ctx context.Context, docs []Document, opts BatchOptions) ([]Issue, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([][]Issue, len(docs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int, doc Document) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release
			results[i] = e.extractCached(doc, opts.Cache)
		}(i, doc)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []Issue
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func (e *Extractor) extractCached(doc Document, c IssueCache) []Issue {
	if c == nil {
		return e.Extract(doc)
	}
	key := e.CacheKey(doc)
	if raw, ok := c.Get(key); ok {
		var cached []Issue
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached
		}
	}
	issues := e.Extract(doc)
	if data, err := json.Marshal(issues); err == nil {
		_ = c.Put(key, string(data))
	}
	return issues
}

// CacheKey derives a stable key from the grammar fingerprint and document.
func (e *Extractor) CacheKey(doc Document) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%t\x00", e.Fingerprint(), doc.Name, doc.Dedicated)
	h.Write([]byte(doc.Text))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// DedupeIssues drops Issues whose description shares its first prefixLen
// runes with an earlier Issue. Order is preserved. A prefixLen of zero or
// less compares whole descriptions.
func DedupeIssues(issues []Issue, prefixLen int) []Issue {
	seen := make(map[string]bool)
	var result []Issue
	for _, is := range issues {
		key := is.Description
		if prefixLen > 0 {
			key = Truncate(key, prefixLen)
		}
		if !seen[key] {
			seen[key] = true
			result = append(result, is)
		}
	}
	return result
}

// SortGaps orders gaps by severity (high first) while keeping input order
// within a severity.
func SortGaps(gaps []Gap) []Gap {
	out := make([]Gap, len(gaps))
	copy(out, gaps)
	sort.SliceStable(out, func(i, j int) bool {
		return SeverityRank(out[i].Severity) > SeverityRank(out[j].Severity)
	})
	return out
}

package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const entryExt = ".json"

// Entry is one cached extraction result.
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

func (e Entry) expired(now time.Time, ttlSeconds int) bool {
	return ttlSeconds > 0 && now.Sub(e.CreatedAt) > time.Duration(ttlSeconds)*time.Second
}

// Cache is a file-based store of per-document extraction results. It is
// safe for concurrent use by multiple goroutines.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
}

// New creates a new Cache. If dir is empty, uses the default cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
	}, nil
}

// Get retrieves a cached value by key. Returns ("", false) on miss or when
// the entry has expired.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	path := c.entryPath(key)
	entry, err := readEntry(path)
	if err != nil {
		return "", false
	}
	if entry.expired(time.Now(), c.ttlSeconds) {
		_ = os.Remove(path)
		return "", false
	}
	return entry.Value, true
}

// Put stores a value. The entry is written to a temp file and renamed so
// concurrent readers never see a partial entry.
func (c *Cache) Put(key, value string) error {
	if !c.enabled {
		return nil
	}
	entry := Entry{
		Key:       HashKey(key),
		Value:     value,
		CreatedAt: time.Now(),
		TTL:       c.ttlSeconds,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "put-*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	return c.remove(func(Entry) bool { return true })
}

// Prune removes expired entries and returns how many were removed.
func (c *Cache) Prune() (int, error) {
	now := time.Now()
	return c.remove(func(e Entry) bool { return e.expired(now, c.ttlSeconds) })
}

func (c *Cache) remove(match func(Entry) bool) (int, error) {
	if !c.enabled || c.dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	var removed int
	for _, e := range entries {
		if filepath.Ext(e.Name()) != entryExt {
			continue
		}
		path := filepath.Join(c.dir, e.Name())
		entry, err := readEntry(path)
		// Unreadable entries are garbage either way.
		if err == nil && !match(entry) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats returns cache statistics.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	now := time.Now()
	for _, e := range entries {
		if filepath.Ext(e.Name()) != entryExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		entry, err := readEntry(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		if entry.expired(now, c.ttlSeconds) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+entryExt)
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// DefaultDir returns the OS-appropriate cache directory for panelgap.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "panelgap"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "panelgap"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "panelgap", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "panelgap", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "panelgap"), nil
	}
}

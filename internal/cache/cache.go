// Package cache stores exported chart images on disk, keyed by everything
// that determines their bytes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benchcard/benchcard/internal/layout"
)

// Entry is one cached export.
type Entry struct {
	Exporter string    `json:"exporter"`
	Format   string    `json:"format"`
	Scale    float64   `json:"scale"`
	Created  time.Time `json:"created"`
	Data     []byte    `json:"data"`
}

// Cache provides caching for export results
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory. An empty
// dir disables the cache.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key generates the cache key for an export. The key covers:
// - the exporter that produced the bytes
// - the rendered markup
// - the chart geometry
// - output format and scale
func Key(exporter, markup string, dims layout.Dimensions, format string, scale float64) (string, error) {
	h := sha256.New()

	if err := writeString(h, exporter); err != nil {
		return "", err
	}
	if err := writeString(h, markup); err != nil {
		return "", err
	}

	dimsJSON, err := json.Marshal(dims)
	if err != nil {
		return "", fmt.Errorf("marshaling layout: %w", err)
	}
	if _, err := h.Write(dimsJSON); err != nil {
		return "", err
	}

	if err := writeString(h, format); err != nil {
		return "", err
	}
	if err := writeFloat(h, scale); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached export if it exists
func (c *Cache) Get(key string) (*Entry, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}
	return &entry, true
}

// Put stores an export in the cache
func (c *Cache) Put(key string, entry *Entry) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if entry.Created.IsZero() {
		entry.Created = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	// Write-then-rename so concurrent batch renders never read a torn file.
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.cachePath(key)); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// Clear removes all cached exports
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Safety check: only remove a directory that holds nothing but cache files.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	if len(entries) > 0 {
		hasValidCache := false
		for _, entry := range entries {
			if entry.IsDir() {
				return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
			}
			switch filepath.Ext(entry.Name()) {
			case ".json":
				hasValidCache = true
			case ".tmp":
			default:
				return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
			}
		}
		if !hasValidCache {
			return fmt.Errorf("no valid cache files found in directory - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func writeString(w io.Writer, s string) error {
	// Null byte delimiter prevents collisions between adjacent fields.
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func writeFloat(w io.Writer, f float64) error {
	_, err := fmt.Fprintf(w, "%g\x00", f)
	return err
}

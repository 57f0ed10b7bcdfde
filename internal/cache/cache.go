// Package cache stores computed summaries keyed by article content hash,
// persisted to a single JSON file with load-time expiry.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newsdigest/internal/logger"
)

// Entry is one cached summary. Title is truncated and kept only for
// debugging the cache file by hand; lookups use the hash key alone.
type Entry struct {
	Summary   string    `json:"summary"`
	FetchDate time.Time `json:"fetch_date"`
	Title     string    `json:"title"`
}

// Cache maps content hashes to summaries. It is owned by the pipeline
// driver and mutated from a single goroutine, so access is unsynchronized.
type Cache struct {
	filePath string
	ttl      time.Duration
	entries  map[string]Entry
}

// New creates an empty cache bound to filePath with the given TTL in days.
func New(filePath string, ttlDays int) *Cache {
	return &Cache{
		filePath: filePath,
		ttl:      time.Duration(ttlDays) * 24 * time.Hour,
		entries:  make(map[string]Entry),
	}
}

// Load reads persisted entries, dropping every entry whose fetch date is not
// strictly after now−TTL. Entries exactly at the boundary are purged. A
// missing or unreadable file leaves the cache empty and is not an error for
// the pipeline; the problem is logged and the run continues.
func (c *Cache) Load() {
	raw, err := os.ReadFile(c.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not read cache file, starting empty", "path", c.filePath, "error", err)
		}
		return
	}
	if len(raw) == 0 {
		return
	}

	var persisted map[string]Entry
	if err := json.Unmarshal(raw, &persisted); err != nil {
		logger.Warn("could not parse cache file, starting empty", "path", c.filePath, "error", err)
		return
	}

	cutoff := time.Now().Add(-c.ttl)
	expired := 0
	for hash, entry := range persisted {
		if entry.FetchDate.After(cutoff) {
			c.entries[hash] = entry
		} else {
			expired++
		}
	}

	logger.Info("loaded summary cache", "entries", len(c.entries), "expired", expired)
}

// Get returns the cached summary for hash, if present.
func (c *Cache) Get(hash string) (string, bool) {
	entry, ok := c.entries[hash]
	if !ok {
		return "", false
	}
	return entry.Summary, true
}

// Put upserts a summary, stamping the entry with the current time.
func (c *Cache) Put(hash, summary, title string) {
	if len(title) > 100 {
		title = title[:100]
	}
	c.entries[hash] = Entry{
		Summary:   summary,
		FetchDate: time.Now(),
		Title:     title,
	}
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Save persists all entries atomically: the file is written to a temp path
// and renamed over the destination, so a crash mid-write never corrupts the
// previous cache. Failure to persist is not fatal to the run.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(c.filePath)
	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

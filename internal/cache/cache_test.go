package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"newsdigest/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestPutThenGet(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"), 7)

	c.Put("abc123", "a summary", "Some Title")

	got, ok := c.Get("abc123")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "a summary" {
		t.Fatalf("unexpected summary: %q", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown hash")
	}
}

func TestPutTruncatesTitle(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"), 7)

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	c.Put("h", "s", string(long))

	if got := len(c.entries["h"].Title); got != 100 {
		t.Fatalf("expected title truncated to 100 chars, got %d", got)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := New(path, 7)
	c.Put("hash1", "summary one", "Title One")
	c.Put("hash2", "summary two", "Title Two")
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := New(path, 7)
	reloaded.Load()

	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", reloaded.Len())
	}
	if got, _ := reloaded.Get("hash1"); got != "summary one" {
		t.Fatalf("unexpected summary after reload: %q", got)
	}
}

func TestLoadPurgesExpiredEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ttlDays := 7
	now := time.Now()

	persisted := map[string]Entry{
		"fresh":    {Summary: "keep me", FetchDate: now.Add(-time.Hour)},
		"stale":    {Summary: "drop me", FetchDate: now.Add(-8 * 24 * time.Hour)},
		"boundary": {Summary: "drop me too", FetchDate: now.Add(-time.Duration(ttlDays) * 24 * time.Hour)},
	}
	data, err := json.Marshal(persisted)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c := New(path, ttlDays)
	c.Load()

	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry should survive load")
	}
	if _, ok := c.Get("stale"); ok {
		t.Error("stale entry should be purged at load")
	}
	// Boundary convention: kept only when strictly after the cutoff.
	if _, ok := c.Get("boundary"); ok {
		t.Error("entry exactly at the TTL boundary should be purged")
	}
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "absent.json"), 7)
	c.Load()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Len())
	}
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c := New(path, 7)
	c.Load()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache for corrupt file, got %d entries", c.Len())
	}
}

func TestSaveFailureIsAnError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not block writes when running as root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

	c := New(filepath.Join(dir, "cache.json"), 7)
	c.Put("h", "s", "t")

	if err := c.Save(); err == nil {
		t.Fatal("expected Save to fail on read-only directory")
	}
}

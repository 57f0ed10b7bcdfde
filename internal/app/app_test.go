package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newsdigest/internal/cache"
	"newsdigest/internal/config"
	"newsdigest/internal/feed"
	"newsdigest/internal/logger"
	"newsdigest/internal/ratelimit"
	"newsdigest/internal/sources"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type fakeFetcher struct {
	articles []feed.Article
}

func (f *fakeFetcher) FetchAll(_ context.Context, _ sources.Registry, _ int) []feed.Article {
	return f.articles
}

type fakeSummarizer struct {
	seen []feed.Article
}

func (s *fakeSummarizer) Summarize(_ context.Context, articles []feed.Article) []feed.Article {
	s.seen = append(s.seen, articles...)
	for i := range articles {
		articles[i].Summary = "generated: " + articles[i].Title
	}
	return articles
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		FetchConcurrency: 2,
		OutputPath:       filepath.Join(t.TempDir(), "digest.html"),
	}
}

func article(title, category string) feed.Article {
	return feed.Article{
		Title:       title,
		Link:        "https://example.org/" + title,
		Content:     "content of " + title,
		Source:      "src",
		Category:    category,
		ContentHash: feed.ContentHash(title, "content of "+title),
	}
}

func TestRunProducesDigestFromMergedSources(t *testing.T) {
	// One source contributed 3 articles, another contributed none.
	cfg := testConfig(t)
	fetcher := &fakeFetcher{articles: []feed.Article{
		article("one", "Science"),
		article("two", "Science"),
		article("three", "Tech"),
	}}
	sum := &fakeSummarizer{}

	a := New(cfg, sources.Registry{}, fetcher, sum, nil, nil)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sum.seen) != 3 {
		t.Fatalf("expected 3 articles summarized, got %d", len(sum.seen))
	}

	data, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("digest not written: %v", err)
	}
	html := string(data)
	for _, want := range []string{"one", "two", "three", "generated: one"} {
		if !strings.Contains(html, want) {
			t.Errorf("digest missing %q", want)
		}
	}
}

func TestRunSkipsSummarizerForCachedArticles(t *testing.T) {
	cfg := testConfig(t)
	cached := article("cached-story", "Science")
	fresh := article("fresh-story", "Science")

	c := cache.New(filepath.Join(t.TempDir(), "cache.json"), 7)
	c.Put(cached.ContentHash, "the cached summary", cached.Title)
	if err := c.Save(); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	fetcher := &fakeFetcher{articles: []feed.Article{cached, fresh}}
	sum := &fakeSummarizer{}

	a := New(cfg, sources.Registry{}, fetcher, sum, c, nil)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sum.seen) != 1 || sum.seen[0].Title != "fresh-story" {
		t.Fatalf("summarizer should only see uncached articles, saw %v", sum.seen)
	}

	data, _ := os.ReadFile(cfg.OutputPath)
	if !strings.Contains(string(data), "the cached summary") {
		t.Error("cached summary missing from digest")
	}
}

func TestRunRecordsCacheAccountingOnLimiter(t *testing.T) {
	cfg := testConfig(t)
	cached := article("cached-story", "Science")
	fresh := article("fresh-story", "Science")

	c := cache.New(filepath.Join(t.TempDir(), "cache.json"), 7)
	c.Put(cached.ContentHash, "the cached summary", cached.Title)

	limiter := ratelimit.NewLimiter(0)
	fetcher := &fakeFetcher{articles: []feed.Article{cached, fresh}}

	a := New(cfg, sources.Registry{}, fetcher, &fakeSummarizer{}, c, limiter)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, hits, misses := limiter.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("expected 1 cache hit and 1 miss recorded, got hits=%d misses=%d", hits, misses)
	}
}

func TestRunWritesNewSummariesBackToCache(t *testing.T) {
	cfg := testConfig(t)
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	art := article("story", "Science")

	c := cache.New(cachePath, 7)
	a := New(cfg, sources.Registry{}, &fakeFetcher{articles: []feed.Article{art}}, &fakeSummarizer{}, c, nil)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	reloaded := cache.New(cachePath, 7)
	reloaded.Load()
	if got, ok := reloaded.Get(art.ContentHash); !ok || got != "generated: story" {
		t.Fatalf("summary not persisted to cache: %q (hit=%v)", got, ok)
	}
}

func TestRunSurvivesCacheSaveFailure(t *testing.T) {
	cfg := testConfig(t)

	dir := t.TempDir()
	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

	c := cache.New(filepath.Join(dir, "cache.json"), 7)
	fetcher := &fakeFetcher{articles: []feed.Article{article("story", "Science")}}

	a := New(cfg, sources.Registry{}, fetcher, &fakeSummarizer{}, c, nil)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run should survive cache save failure: %v", err)
	}

	if _, err := os.Stat(cfg.OutputPath); err != nil {
		t.Fatalf("digest should still be written: %v", err)
	}
}

func TestRunZeroArticlesExitsEarly(t *testing.T) {
	cfg := testConfig(t)
	sum := &fakeSummarizer{}

	a := New(cfg, sources.Registry{}, &fakeFetcher{}, sum, nil, nil)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sum.seen) != 0 {
		t.Fatal("summarizer must not run with zero articles")
	}
	if _, err := os.Stat(cfg.OutputPath); !os.IsNotExist(err) {
		t.Fatal("renderer must not run with zero articles")
	}
}

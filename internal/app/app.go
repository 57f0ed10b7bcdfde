// Package app orchestrates the fetch → cache → summarize → render pipeline.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsdigest/internal/cache"
	"newsdigest/internal/config"
	"newsdigest/internal/digest"
	"newsdigest/internal/feed"
	"newsdigest/internal/logger"
	"newsdigest/internal/metrics"
	"newsdigest/internal/ratelimit"
	"newsdigest/internal/sources"
	"newsdigest/internal/summarizer"
	"newsdigest/internal/telegram"
)

// Fetcher retrieves articles from every registered source.
type Fetcher interface {
	FetchAll(ctx context.Context, reg sources.Registry, concurrency int) []feed.Article
}

// Summarizer fills in Summary on every article it is given.
type Summarizer interface {
	Summarize(ctx context.Context, articles []feed.Article) []feed.Article
}

// App wires the pipeline dependencies. Cache may be nil when caching is
// disabled; the run then summarizes everything and persists nothing.
type App struct {
	cfg        *config.Config
	registry   sources.Registry
	fetcher    Fetcher
	summarizer Summarizer
	cache      *cache.Cache
	limiter    *ratelimit.Limiter
}

// New builds the pipeline driver.
func New(cfg *config.Config, reg sources.Registry, fetcher Fetcher, sum Summarizer, c *cache.Cache, limiter *ratelimit.Limiter) *App {
	return &App{
		cfg:        cfg,
		registry:   reg,
		fetcher:    fetcher,
		summarizer: sum,
		cache:      c,
		limiter:    limiter,
	}
}

// Run executes one pipeline pass. Single-source and single-article failures
// are absorbed downstream; only a total absence of fetched articles halts
// the run early.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.Global.RecordProcessingTime(time.Since(start))
		metrics.Global.SetLastRun()
	}()

	logger.Info("starting pipeline", "sources", len(a.registry))

	articles := a.fetcher.FetchAll(ctx, a.registry, a.cfg.FetchConcurrency)
	if len(articles) == 0 {
		logger.Warn("no articles fetched from any source, nothing to do")
		return nil
	}
	logger.Info("fetch complete", "articles", len(articles))

	if err := ctx.Err(); err != nil {
		return err
	}

	if a.cache != nil {
		a.cache.Load()
	}

	// Split into already-summarized and needs-summarization by hash lookup.
	var uncachedIdx []int
	for i := range articles {
		if a.cache != nil {
			if summary, ok := a.cache.Get(articles[i].ContentHash); ok {
				articles[i].Summary = summary
				metrics.Global.IncrementCacheHits()
				if a.limiter != nil {
					a.limiter.RecordCacheHit()
				}
				continue
			}
		}
		metrics.Global.IncrementCacheMisses()
		if a.limiter != nil {
			a.limiter.RecordCacheMiss()
		}
		uncachedIdx = append(uncachedIdx, i)
	}
	logger.Info("cache lookup done", "hits", len(articles)-len(uncachedIdx), "misses", len(uncachedIdx))

	if len(uncachedIdx) > 0 {
		toSummarize := make([]feed.Article, len(uncachedIdx))
		for i, idx := range uncachedIdx {
			toSummarize[i] = articles[idx]
		}

		summarized := a.summarizer.Summarize(ctx, toSummarize)

		for i, idx := range uncachedIdx {
			articles[idx].Summary = summarized[i].Summary
			// Sentinel summaries are not cached: a later run should retry
			// rather than reuse the failure for a week.
			if a.cache != nil && summarized[i].Summary != summarizer.Sentinel {
				a.cache.Put(articles[idx].ContentHash, summarized[i].Summary, articles[idx].Title)
			}
		}
	}

	if a.cache != nil {
		if err := a.cache.Save(); err != nil {
			logger.Error("could not persist summary cache, continuing", "error", err)
		}
	}

	if err := digest.WriteFile(a.cfg.OutputPath, articles); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	logger.Info("digest written", "path", a.cfg.OutputPath, "articles", len(articles))

	a.notify(ctx, articles)

	if a.limiter != nil {
		requests, hits, misses := a.limiter.Stats()
		logger.Info("run complete", "llm_requests", requests, "cache_hits", hits, "cache_misses", misses)
	}
	return nil
}

// notify pushes a short headline digest to Telegram when configured. This is
// best-effort: a failed notification never fails the run.
func (a *App) notify(ctx context.Context, articles []feed.Article) {
	if a.cfg.TelegramToken == "" || a.cfg.TelegramChatID == "" {
		return
	}

	var b strings.Builder
	b.WriteString("<b>News digest ready</b>\n")
	fmt.Fprintf(&b, "%d articles\n\n", len(articles))
	for i, art := range articles {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "• <a href=\"%s\">%s</a>\n", art.Link, art.Title)
	}

	if err := telegram.SendMessage(ctx, a.cfg.TelegramToken, a.cfg.TelegramChatID, b.String()); err != nil {
		logger.Warn("digest notification failed", "error", err)
	}
}

package feed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdigest/internal/logger"
	"newsdigest/internal/metrics"
	"newsdigest/internal/sources"
)

// Extractor produces best-effort full text for a URL. Implementations never
// fail: on any problem they return the fallback text.
type Extractor interface {
	Extract(ctx context.Context, url, fallback string) string
}

// Fetcher retrieves and normalizes articles from configured sources.
type Fetcher struct {
	parser    *gofeed.Parser
	extractor Extractor
}

// NewFetcher wires a gofeed parser with a per-request timeout.
func NewFetcher(extractor Extractor, timeout time.Duration) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &Fetcher{parser: parser, extractor: extractor}
}

// Fetch pulls one source and returns its normalized articles in feed order,
// truncated to the source's item limit. It never fails: any source-level
// error yields an empty slice and a log line, so one broken feed cannot
// abort the run.
func (f *Fetcher) Fetch(ctx context.Context, src sources.Source) []Article {
	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		logger.Warn("feed fetch failed", "source", src.Name, "url", src.URL, "error", err)
		metrics.Global.IncrementSourceFailures()
		return nil
	}
	if len(parsed.Items) == 0 {
		logger.Warn("feed returned no entries", "source", src.Name)
		return nil
	}

	items := parsed.Items
	if src.MaxArticles > 0 && len(items) > src.MaxArticles {
		items = items[:src.MaxArticles]
	}

	now := time.Now()
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		// Entries without identity are skipped, not counted as errors.
		if item.Title == "" || item.Link == "" {
			continue
		}

		fallback := item.Description
		if fallback == "" {
			fallback = item.Content
		}

		content := fallback
		if f.extractor != nil {
			content = f.extractor.Extract(ctx, item.Link, fallback)
		}

		articles = append(articles, Article{
			Title:       item.Title,
			Link:        item.Link,
			Content:     content,
			Source:      src.Name,
			Category:    src.Category,
			Published:   item.Published,
			ContentHash: ContentHash(item.Title, content),
			FetchDate:   now,
		})
	}

	logger.Info("fetched source", "source", src.Name, "articles", len(articles))
	metrics.Global.AddArticlesFetched(len(articles))
	return articles
}

// FetchAll runs one fetch task per source on a bounded worker pool and merges
// the results. Order across sources is not guaranteed; order within a source
// is feed order.
func (f *Fetcher) FetchAll(ctx context.Context, reg sources.Registry, concurrency int) []Article {
	if concurrency <= 0 {
		concurrency = 4
	}

	var (
		mu     sync.Mutex
		merged []Article
		wg     sync.WaitGroup
	)
	sem := make(chan struct{}, concurrency)

	for _, name := range reg.Names() {
		src := reg[name]
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			articles := f.Fetch(ctx, src)
			if len(articles) == 0 {
				return
			}
			mu.Lock()
			merged = append(merged, articles...)
			mu.Unlock()
		}()
	}

	wg.Wait()
	return merged
}

// Package summarizer turns batches of un-cached articles into one-sentence
// summaries via the Gemini service, with per-article fallback when a batch
// request fails or its response cannot be matched back to the input.
package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"newsdigest/internal/feed"
	"newsdigest/internal/logger"
	"newsdigest/internal/metrics"
	"newsdigest/internal/ratelimit"
	"newsdigest/internal/retry"
)

// Sentinel marks articles whose summary could not be obtained. It keeps the
// article visible in the digest instead of silently dropping it.
const Sentinel = "[Summary not available]"

const (
	batchSystemPrompt  = "You summarize multiple science/tech articles efficiently."
	singleSystemPrompt = "You summarize science articles concisely."
)

// TextGenerator is the summarization-service call: one system instruction
// plus one user prompt, free-form text back.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Options tune batching and retry behavior.
type Options struct {
	BatchSize         int           // articles per combined request
	ArticleCharBudget int           // max content chars per article in a batch prompt
	ChunkDelay        time.Duration // pause between chunk requests
	Retry             retry.Config
}

// Summarizer batches articles into combined requests.
type Summarizer struct {
	gen     TextGenerator
	limiter *ratelimit.Limiter
	opts    Options
}

// New builds a Summarizer. limiter may be nil for an unlimited budget.
func New(gen TextGenerator, limiter *ratelimit.Limiter, opts Options) *Summarizer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.ArticleCharBudget <= 0 {
		opts.ArticleCharBudget = 1000
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = retry.Config{MaxAttempts: 3, Delay: 4 * time.Second, MaxDelay: 10 * time.Second, Backoff: true}
	}
	return &Summarizer{gen: gen, limiter: limiter, opts: opts}
}

// Summarize populates Summary on every input article and returns the same
// articles in order. Chunk-level failures degrade to per-article requests;
// per-article failures degrade to the sentinel. The output always has
// exactly len(articles) entries, each with a non-empty summary.
func (s *Summarizer) Summarize(ctx context.Context, articles []feed.Article) []feed.Article {
	for start := 0; start < len(articles); start += s.opts.BatchSize {
		end := start + s.opts.BatchSize
		if end > len(articles) {
			end = len(articles)
		}
		chunk := articles[start:end]

		if ctx.Err() != nil {
			logger.Warn("summarization interrupted, remaining articles get sentinel summaries")
			for i := range articles[start:] {
				articles[start+i].Summary = Sentinel
				metrics.Global.IncrementSentinelSummaries()
			}
			return articles
		}

		// Rate limiting between chunk requests, not before the first one.
		if start > 0 && s.opts.ChunkDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.opts.ChunkDelay):
			}
		}

		s.summarizeChunk(ctx, chunk)
	}
	return articles
}

// summarizeChunk tries one combined request for the chunk and falls back to
// independent per-article requests on failure or parse shortfall. The
// fallback is deliberately chunk-wide: a partial parse says nothing reliable
// about which positions matched, so nothing from it is trusted.
func (s *Summarizer) summarizeChunk(ctx context.Context, chunk []feed.Article) {
	summaries, err := s.requestBatch(ctx, chunk)
	if err == nil {
		for i := range chunk {
			chunk[i].Summary = summaries[i]
		}
		logger.Info("summarized batch", "articles", len(chunk))
		return
	}

	logger.Warn("batch summary failed, falling back to individual requests", "articles", len(chunk), "error", err)
	s.summarizeIndividually(ctx, chunk)
}

func (s *Summarizer) requestBatch(ctx context.Context, chunk []feed.Article) ([]string, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, fmt.Errorf("request budget exhausted")
	}

	prompt := buildBatchPrompt(chunk, s.opts.ArticleCharBudget)

	var response string
	err := retry.WithRetry(ctx, s.opts.Retry, func() error {
		text, genErr := s.gen.Generate(ctx, batchSystemPrompt, prompt)
		if genErr != nil {
			return genErr
		}
		response = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		_ = s.limiter.Use()
	}
	metrics.Global.IncrementBatchRequests()

	summaries, err := ParseBatchSummaries(response)
	if err != nil {
		return nil, fmt.Errorf("parse batch response: %w", err)
	}
	if len(summaries) < len(chunk) {
		return nil, fmt.Errorf("batch response has %d items, expected %d", len(summaries), len(chunk))
	}
	return summaries[:len(chunk)], nil
}

func (s *Summarizer) summarizeIndividually(ctx context.Context, chunk []feed.Article) {
	for i := range chunk {
		summary, err := s.requestSingle(ctx, chunk[i])
		if err != nil {
			logger.Warn("individual summary failed", "title", truncate(chunk[i].Title, 50), "error", err)
			chunk[i].Summary = Sentinel
			metrics.Global.IncrementSentinelSummaries()
			continue
		}
		chunk[i].Summary = summary
	}
}

func (s *Summarizer) requestSingle(ctx context.Context, article feed.Article) (string, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return "", fmt.Errorf("request budget exhausted")
	}

	prompt := fmt.Sprintf(
		"Summarize this science/tech article in one factual sentence:\nTitle: %s\nContent: %s",
		article.Title, truncate(article.Content, 2*s.opts.ArticleCharBudget))

	var response string
	err := retry.WithRetry(ctx, s.opts.Retry, func() error {
		text, genErr := s.gen.Generate(ctx, singleSystemPrompt, prompt)
		if genErr != nil {
			return genErr
		}
		response = strings.TrimSpace(text)
		return nil
	})
	if err != nil {
		return "", err
	}
	if response == "" {
		return "", fmt.Errorf("empty response")
	}

	if s.limiter != nil {
		_ = s.limiter.Use()
	}
	metrics.Global.IncrementFallbackRequests()
	return response, nil
}

// buildBatchPrompt enumerates the chunk so the service can number its answers
// to match. Content is truncated per article to bound the request size.
func buildBatchPrompt(chunk []feed.Article, charBudget int) string {
	var b strings.Builder
	b.WriteString("Summarize each of the following science/tech articles. For each article, provide a single factual sentence ")
	b.WriteString("covering the main finding or breakthrough. Number your responses (1, 2, 3, etc.) to match the article numbers. ")
	b.WriteString("Be concise and factual, avoiding hype or speculation.\n\n")

	for i, article := range chunk {
		fmt.Fprintf(&b, "ARTICLE %d:\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", article.Title)
		fmt.Fprintf(&b, "Content: %s\n", truncate(article.Content, charBudget))
		b.WriteString("---\n")
	}
	return b.String()
}

// truncate cuts s to at most n runes. Cutting on a byte boundary can split
// a multi-byte rune and leave invalid UTF-8, which the service rejects.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

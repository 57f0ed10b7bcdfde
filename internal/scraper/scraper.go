package scraper

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsdigest/internal/logger"
)

// minContentLength is the threshold below which extracted text is considered
// insufficient and the feed-provided fallback wins.
const minContentLength = 200

// Selectors tried in order against article pages. News sites rarely agree on
// markup, so the list goes from specific to generic.
var contentSelectors = []string{
	"#text",
	".story-body",
	"[id*=\"text\"]",
	".article-content",
	".post-content",
	".entry-content",
	".article-body",
	".content",
	"article",
	".main-content",
	"[role=\"main\"]",
}

var noiseSelectors = "script, style, nav, header, footer, aside"

// Extractor pulls best-effort full text from article pages.
type Extractor struct {
	client *http.Client
}

// NewExtractor builds an extractor with a fixed per-request timeout.
func NewExtractor(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{client: &http.Client{Timeout: timeout}}
}

// Extract returns the article body text for url, or fallback on any failure
// or when the extracted text is too short to be a real article. It never
// returns an error: extraction is strictly best-effort.
func (e *Extractor) Extract(ctx context.Context, url, fallback string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Debug("content extraction failed", "url", url, "error", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("content extraction got bad status", "url", url, "status", resp.Status)
		return fallback
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		logger.Debug("content extraction parse failed", "url", url, "error", err)
		return fallback
	}

	for _, selector := range contentSelectors {
		section := doc.Find(selector).First()
		if section.Length() == 0 {
			continue
		}

		section.Find(noiseSelectors).Remove()

		text := normalizeWhitespace(section.Text())
		if len(text) > minContentLength {
			return text
		}
	}

	return fallback
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

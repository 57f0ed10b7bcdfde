package metrics

import (
	"sync"
	"time"
)

// Metrics tracks pipeline counters for the monitoring endpoint.
type Metrics struct {
	mu sync.Mutex

	articlesFetched   int
	sourceFailures    int
	cacheHits         int
	cacheMisses       int
	batchRequests     int
	fallbackRequests  int
	sentinelSummaries int

	processingTime time.Duration
	lastRun        time.Time
	lastError      string
}

// Global is the process-wide metrics instance.
var Global = &Metrics{}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articlesFetched += n
}

func (m *Metrics) IncrementSourceFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourceFailures++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

func (m *Metrics) IncrementBatchRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchRequests++
}

func (m *Metrics) IncrementFallbackRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbackRequests++
}

func (m *Metrics) IncrementSentinelSummaries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentinelSummaries++
}

func (m *Metrics) RecordProcessingTime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingTime = d
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRun = time.Now()
	m.lastError = ""
}

func (m *Metrics) SetLastError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = msg
}

// GetStats returns a snapshot for /health and /metrics handlers.
func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"articles_fetched":   m.articlesFetched,
		"source_failures":    m.sourceFailures,
		"cache_hits":         m.cacheHits,
		"cache_misses":       m.cacheMisses,
		"batch_requests":     m.batchRequests,
		"fallback_requests":  m.fallbackRequests,
		"sentinel_summaries": m.sentinelSummaries,
		"processing_time_ms": m.processingTime.Milliseconds(),
		"last_run_time":      m.lastRun,
		"last_error":         m.lastError,
		"is_healthy":         m.lastError == "",
	}
}

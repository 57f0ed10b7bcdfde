package ratelimit

import (
	"fmt"
	"sync"

	"newsdigest/internal/logger"
)

// Limiter enforces a per-run budget of summarization-service requests and
// tracks how much work the cache saved. A zero max means unlimited.
type Limiter struct {
	mu          sync.Mutex
	count       int
	max         int
	cacheHits   int
	cacheMisses int
}

// NewLimiter creates a limiter with the given request ceiling.
func NewLimiter(maxRequests int) *Limiter {
	return &Limiter{max: maxRequests}
}

// Allow reports whether another request fits the budget.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.count >= l.max {
		logger.Warn("summarization request budget reached", "used", l.count, "max", l.max)
		return false
	}
	return true
}

// Use consumes one request from the budget.
func (l *Limiter) Use() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.count >= l.max {
		return fmt.Errorf("summarization request budget exceeded (%d/%d)", l.count, l.max)
	}

	l.count++
	logger.Debug("summarization request used", "used", l.count, "max", l.max)
	return nil
}

// RecordCacheHit notes an article whose summary came from the cache.
func (l *Limiter) RecordCacheHit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cacheHits++
}

// RecordCacheMiss notes an article that had to go to the service.
func (l *Limiter) RecordCacheMiss() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cacheMisses++
}

// Stats returns usage counters for end-of-run logging.
func (l *Limiter) Stats() (requests, hits, misses int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count, l.cacheHits, l.cacheMisses
}

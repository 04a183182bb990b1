package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter decides whether a caller identified by key may proceed.
type RateLimiter interface {
	// Allow reports whether one request from key is allowed now.
	Allow(ctx context.Context, key string) bool

	// AllowN reports whether n requests from key are allowed now.
	AllowN(ctx context.Context, key string, n int) bool
}

// InMemoryRateLimiter keeps one token bucket per key in process memory.
// Suitable for a single server instance.
type InMemoryRateLimiter struct {
	rate  rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*entry

	cleanupInterval time.Duration
	maxAge          time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewInMemoryRateLimiter creates a limiter allowing rps requests per second
// per key with bursts of up to burst requests. Call Stop to release the
// cleanup goroutine.
func NewInMemoryRateLimiter(rps float64, burst int) *InMemoryRateLimiter {
	l := &InMemoryRateLimiter{
		rate:            rate.Limit(rps),
		burst:           burst,
		limiters:        make(map[string]*entry),
		cleanupInterval: 5 * time.Minute,
		maxAge:          10 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow checks if a single request is allowed
func (l *InMemoryRateLimiter) Allow(ctx context.Context, key string) bool {
	return l.AllowN(ctx, key, 1)
}

// AllowN checks if n requests are allowed
func (l *InMemoryRateLimiter) AllowN(ctx context.Context, key string, n int) bool {
	now := time.Now().UTC()

	l.mu.Lock()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = e
	}
	e.lastAccess = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, n)
}

func (l *InMemoryRateLimiter) cleanup() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle(time.Now().UTC().Add(-l.maxAge))
		case <-l.stopCleanup:
			return
		}
	}
}

// evictIdle drops buckets not used since cutoff and returns how many were
// removed.
func (l *InMemoryRateLimiter) evictIdle(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.limiters {
		if e.lastAccess.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (l *InMemoryRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

// ActiveKeys returns the number of keys currently tracked.
func (l *InMemoryRateLimiter) ActiveKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

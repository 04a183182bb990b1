package ratelimit

import (
	"net/http"

	"github.com/ConfabulousDev/chatstats/internal/clientip"
	"github.com/ConfabulousDev/chatstats/internal/logger"
	"github.com/ConfabulousDev/chatstats/internal/metrics"
)

// Middleware rejects requests over the limit with 429, keyed by the composite
// client IP set by clientip.Middleware.
func Middleware(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientip.FromRequest(r).RateLimitKey
			if !limiter.Allow(r.Context(), key) {
				logger.Ctx(r.Context()).Info("rate limit exceeded", "key", key, "path", r.URL.Path)
				metrics.RateLimited()
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

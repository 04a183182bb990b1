package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ConfabulousDev/chatstats/internal/analytics"
	"github.com/ConfabulousDev/chatstats/internal/clientip"
	"github.com/ConfabulousDev/chatstats/internal/config"
	"github.com/ConfabulousDev/chatstats/internal/logger"
	"github.com/ConfabulousDev/chatstats/internal/metrics"
	"github.com/ConfabulousDev/chatstats/internal/ratelimit"
)

// Server serves the analytics views over HTTP.
type Server struct {
	cfg     *config.Config
	opts    analytics.Options
	limiter ratelimit.RateLimiter
	version string
}

// NewServer creates a server. limiter may be nil to disable rate limiting.
func NewServer(cfg *config.Config, limiter ratelimit.RateLimiter, version string) *Server {
	return &Server{
		cfg:     cfg,
		opts:    cfg.Analytics.Options(),
		limiter: limiter,
		version: version,
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(clientip.Middleware)
	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Encoding", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Report-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(newCompressor().Handler)

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(ratelimit.Middleware(s.limiter))
		}
		r.Use(validateContentType)
		r.Use(decompressMiddleware())
		r.Use(SpanEnricher)

		r.Post("/report", s.handleReport)
		r.Post("/scopes", s.handleScopes)
		r.Post("/stats", s.handleView(analytics.CardStats, s.stats))
		r.Post("/users", s.handleView(analytics.CardUsers, s.users))
		r.Post("/timeline/monthly", s.handleView(analytics.CardTimeline, s.monthly))
		r.Post("/timeline/daily", s.handleView(analytics.CardTimeline, s.daily))
		r.Post("/words", s.handleView(analytics.CardWords, s.words))
		r.Post("/emoji", s.handleView(analytics.CardEmoji, s.emoji))
		r.Post("/activity", s.handleView(analytics.CardActivity, s.activity))
	})

	return r
}

// newCompressor compresses JSON and text responses, preferring brotli over
// gzip when the client accepts both.
func newCompressor() *middleware.Compressor {
	c := middleware.NewCompressor(5, "application/json", "text/plain")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleRoot returns API info
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "chatstats",
		"version": s.version,
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

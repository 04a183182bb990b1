// Package metrics exposes Prometheus instruments for the analytics server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatstats_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatstats_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	recordsAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatstats_records_analyzed_total",
		Help: "Message records parsed from request bodies.",
	})

	cardErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatstats_card_errors_total",
		Help: "Report cards that could not be computed, by card.",
	}, []string{"card"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatstats_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency keyed by the matched chi
// route pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// RecordsAnalyzed adds n to the parsed-records counter.
func RecordsAnalyzed(n int) {
	recordsAnalyzed.Add(float64(n))
}

// CardError counts a failed report card.
func CardError(card string) {
	cardErrors.WithLabelValues(card).Inc()
}

// RateLimited counts a rejected request.
func RateLimited() {
	rateLimited.Inc()
}

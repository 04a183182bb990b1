package api

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ConfabulousDev/chatstats/internal/analytics"
	"github.com/ConfabulousDev/chatstats/internal/clientip"
)

// SpanEnricher adds the requested scope and client IP to the current span.
func SpanEnricher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		span.SetAttributes(
			attribute.String("chatstats.scope", scopeParam(r)),
			attribute.Bool("chatstats.scope_overall", scopeParam(r) == analytics.Overall),
		)
		if ip := clientip.FromRequest(r).Primary; ip != "" {
			span.SetAttributes(attribute.String("client.address", ip))
		}
		next.ServeHTTP(w, r)
	})
}

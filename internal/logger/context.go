package logger

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ConfabulousDev/chatstats/internal/clientip"
)

type ctxKey struct{}

// Middleware stores a request-scoped logger carrying req_id and client_ip.
// Must be placed after chi's RequestID and clientip.Middleware.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := slog.Default()
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			log = log.With("req_id", reqID)
		}
		if ip := clientip.FromRequest(r).Primary; ip != "" {
			log = log.With("client_ip", ip)
		}
		next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), log)))
	})
}

// Ctx retrieves the request-scoped logger from context.
// Falls back to the default logger if not found.
func Ctx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return log
	}
	return slog.Default()
}

// WithLogger stores an enriched logger in context.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Package clientip resolves the real client address behind edge proxies so
// rate limiting and request logs key on the caller, not the proxy.
package clientip

import (
	"context"
	"net"
	"net/http"
	"slices"
	"strings"
)

type contextKey struct{}

// Info is the resolved client address for one request.
type Info struct {
	// Primary is the most trusted single IP, used for logs.
	Primary string

	// RateLimitKey joins every distinct IP seen on the request, sorted.
	// RemoteAddr is always part of it, so a spoofed header alone cannot move
	// a caller into another bucket.
	RateLimitKey string
}

// trustedHeaders are consulted in priority order; the first non-empty one
// becomes Primary. X-Forwarded-For is handled separately (first hop only).
var trustedHeaders = []string{
	"Fly-Client-IP",
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Real-IP",
}

// Middleware resolves Info, rewrites r.RemoteAddr to Info.Primary and stores
// Info in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := Resolve(r)
		r.RemoteAddr = info.Primary
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, info)))
	})
}

// FromContext returns the Info stored by Middleware, or the zero Info.
func FromContext(ctx context.Context) Info {
	if info, ok := ctx.Value(contextKey{}).(Info); ok {
		return info
	}
	return Info{}
}

// FromRequest is FromContext(r.Context()).
func FromRequest(r *http.Request) Info {
	return FromContext(r.Context())
}

// Resolve computes Info from the request headers and RemoteAddr.
func Resolve(r *http.Request) Info {
	var candidates []string
	for _, h := range trustedHeaders {
		if ip := strings.TrimSpace(r.Header.Get(h)); ip != "" {
			candidates = append(candidates, ip)
		}
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			candidates = append(candidates, ip)
		}
	}

	remote := hostOnly(r.RemoteAddr)
	primary := remote
	if len(candidates) > 0 {
		primary = candidates[0]
	}

	keys := candidates
	if remote != "" {
		keys = append(keys, remote)
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	return Info{Primary: primary, RateLimitKey: strings.Join(keys, "|")}
}

// hostOnly strips an optional port and IPv6 brackets from addr.
func hostOnly(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}

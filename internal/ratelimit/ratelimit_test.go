package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ConfabulousDev/chatstats/internal/clientip"
)

func TestInMemoryRateLimiter_Burst(t *testing.T) {
	l := NewInMemoryRateLimiter(0.001, 3)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "a") {
			t.Fatalf("request %d denied within burst", i+1)
		}
	}
	if l.Allow(ctx, "a") {
		t.Error("request beyond burst allowed")
	}
	if !l.Allow(ctx, "b") {
		t.Error("separate key should have its own bucket")
	}
	if l.ActiveKeys() != 2 {
		t.Errorf("ActiveKeys() = %d, want 2", l.ActiveKeys())
	}
}

func TestInMemoryRateLimiter_AllowN(t *testing.T) {
	l := NewInMemoryRateLimiter(0.001, 5)
	defer l.Stop()

	if !l.AllowN(context.Background(), "k", 5) {
		t.Error("AllowN(5) denied with burst 5")
	}
	if l.AllowN(context.Background(), "k", 1) {
		t.Error("AllowN(1) allowed after burst exhausted")
	}
}

func TestInMemoryRateLimiter_EvictIdle(t *testing.T) {
	l := NewInMemoryRateLimiter(1, 1)
	defer l.Stop()

	l.Allow(context.Background(), "old")
	if removed := l.evictIdle(time.Now().UTC().Add(time.Minute)); removed != 1 {
		t.Errorf("evictIdle removed %d, want 1", removed)
	}
	if l.ActiveKeys() != 0 {
		t.Errorf("ActiveKeys() = %d, want 0", l.ActiveKeys())
	}
}

func TestInMemoryRateLimiter_StopTwice(t *testing.T) {
	l := NewInMemoryRateLimiter(1, 1)
	l.Stop()
	l.Stop()
}

func TestMiddleware(t *testing.T) {
	l := NewInMemoryRateLimiter(0.001, 1)
	defer l.Stop()

	handler := clientip.Middleware(Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	send := func(remote string) int {
		req := httptest.NewRequest("POST", "/api/v1/report", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("192.0.2.1:1000"); code != http.StatusNoContent {
		t.Errorf("first request status = %d, want 204", code)
	}
	if code := send("192.0.2.1:1001"); code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", code)
	}
	if code := send("192.0.2.2:1000"); code != http.StatusNoContent {
		t.Errorf("other client status = %d, want 204", code)
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/ConfabulousDev/chatstats/internal/analytics"
	"github.com/ConfabulousDev/chatstats/internal/config"
	"github.com/ConfabulousDev/chatstats/internal/ratelimit"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxBodyBytes:   1 << 20,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		CORSOrigins:    []string{"http://localhost:5173"},
		Analytics: config.AnalyticsConfig{
			MediaPlaceholder:   analytics.DefaultMediaPlaceholder,
			NotificationSender: analytics.DefaultNotificationSender,
			TopWords:           analytics.DefaultTopWords,
			TopEmojis:          analytics.DefaultTopEmojis,
		},
	}
}

func newTestHandler(t *testing.T, cfg *config.Config, limiter ratelimit.RateLimiter) http.Handler {
	t.Helper()
	return NewServer(cfg, limiter, "test").SetupRoutes()
}

// scenarioBody is the Alice/Bob transcript as JSONL.
func scenarioBody(t *testing.T) []byte {
	t.Helper()
	day := func(d, h, m int) time.Time { return time.Date(2024, time.January, d, h, m, 0, 0, time.UTC) }
	body, err := analytics.MarshalJSONL([]analytics.MessageRecord{
		analytics.NewRecord("Alice", "hi there", day(1, 10, 0)),
		analytics.NewRecord("Bob", "<Media omitted>", day(1, 10, 5)),
		analytics.NewRecord("Alice", "check http://x.co 😀", day(2, 9, 0)),
	})
	if err != nil {
		t.Fatalf("MarshalJSONL: %v", err)
	}
	return body
}

func postJSONL(path string, body []byte) *http.Request {
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/x-ndjson")
	return req
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s, want status ok", w.Body.String())
	}
}

func TestHandleReport(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil)

	t.Run("overall includes users", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postJSONL("/api/v1/report", scenarioBody(t)))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
		if _, err := uuid.Parse(w.Header().Get("X-Report-ID")); err != nil {
			t.Errorf("X-Report-ID = %q, not a UUID", w.Header().Get("X-Report-ID"))
		}

		var report analytics.Report
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("decode report: %v", err)
		}
		want := analytics.StatsResult{Messages: 3, Words: 7, Media: 1, Links: 1}
		if report.Stats == nil || *report.Stats != want {
			t.Errorf("Stats = %+v, want %+v", report.Stats, want)
		}
		if report.Users == nil || report.Users.Leaderboard[0].Sender != "Alice" {
			t.Errorf("Users = %+v, want Alice first", report.Users)
		}
		if report.Activity == nil || report.Activity.Heatmap.Total() != 3 {
			t.Errorf("Activity = %+v, want heatmap total 3", report.Activity)
		}
	})

	t.Run("sender scope omits users", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postJSONL("/api/v1/report?scope=Bob", scenarioBody(t)))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var raw map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if _, ok := raw["users"]; ok {
			t.Error("users present for sender scope")
		}
		if raw["scope"] != "Bob" {
			t.Errorf("scope = %v, want Bob", raw["scope"])
		}
	})

	t.Run("empty log reports card error", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postJSONL("/api/v1/report", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var report analytics.Report
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if report.CardErrors[analytics.CardUsers] == "" {
			t.Errorf("CardErrors = %v, want users entry", report.CardErrors)
		}
	})
}

func TestHandleViews(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil)

	tests := []struct {
		name     string
		path     string
		body     []byte
		wantCode int
		wantBody string
	}{
		{"stats", "/api/v1/stats?scope=Alice", scenarioBody(t), http.StatusOK, `"links":1`},
		{"users", "/api/v1/users", scenarioBody(t), http.StatusOK, `"percent":"66.67"`},
		{"users empty log", "/api/v1/users", nil, http.StatusUnprocessableEntity, "no messages"},
		{"monthly", "/api/v1/timeline/monthly", scenarioBody(t), http.StatusOK, `"label":"January-2024"`},
		{"daily", "/api/v1/timeline/daily", scenarioBody(t), http.StatusOK, `"date":"2024-01-02"`},
		{"words", "/api/v1/words?limit=2", scenarioBody(t), http.StatusOK, `"word":"there"`},
		{"words bad limit", "/api/v1/words?limit=x", scenarioBody(t), http.StatusBadRequest, "limit"},
		{"emoji", "/api/v1/emoji", scenarioBody(t), http.StatusOK, `"count":1`},
		{"activity", "/api/v1/activity", scenarioBody(t), http.StatusOK, `"day":"Sunday","messages":null`},
		{"scopes", "/api/v1/scopes", scenarioBody(t), http.StatusOK, `["Overall","Alice","Bob"]`},
		{"malformed line", "/api/v1/stats", []byte("{not json\n"), http.StatusBadRequest, "line 1"},
		{"malformed record", "/api/v1/stats", []byte(`{"sender":"","text":"x","timestamp":"2024-01-01T00:00:00Z"}`), http.StatusBadRequest, "empty sender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, postJSONL(tt.path, tt.body))

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestContentTypeValidation(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil)

	tests := []struct {
		contentType string
		wantCode    int
	}{
		{"", http.StatusUnsupportedMediaType},
		{"application/json", http.StatusUnsupportedMediaType},
		{"text/plain", http.StatusUnsupportedMediaType},
		{"application/x-ndjson; charset=utf-8", http.StatusOK},
		{"application/jsonl", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("POST", "/api/v1/stats", bytes.NewReader(scenarioBody(t)))
		if tt.contentType != "" {
			req.Header.Set("Content-Type", tt.contentType)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != tt.wantCode {
			t.Errorf("Content-Type %q: status = %d, want %d", tt.contentType, w.Code, tt.wantCode)
		}
	}
}

func TestBodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 64
	handler := newTestHandler(t, cfg, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, postJSONL("/api/v1/stats", scenarioBody(t)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestReadLogFailures(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil)

	t.Run("truncated gzip body is a client error", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(scenarioBody(t)); err != nil {
			t.Fatalf("gzip write: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("gzip close: %v", err)
		}
		truncated := buf.Bytes()[:buf.Len()-12]

		req := postJSONL("/api/v1/stats", truncated)
		req.Header.Set("Content-Encoding", "gzip")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
		}
	})

	t.Run("body read failure is a server error", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/stats", iotest.ErrReader(errors.New("connection reset")))
		req.Header.Set("Content-Type", "application/x-ndjson")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500: %s", w.Code, w.Body.String())
		}
	})
}

func TestZstdRequestBody(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil)

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := encoder.EncodeAll(scenarioBody(t), nil)
	encoder.Close()

	req := postJSONL("/api/v1/stats", compressed)
	req.Header.Set("Content-Encoding", "zstd")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"messages":3`) {
		t.Errorf("body = %s, want 3 messages", w.Body.String())
	}

	t.Run("unsupported encoding", func(t *testing.T) {
		req := postJSONL("/api/v1/stats", scenarioBody(t))
		req.Header.Set("Content-Encoding", "compress")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusUnsupportedMediaType {
			t.Errorf("status = %d, want 415", w.Code)
		}
	})
}

func TestBrotliResponse(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil)

	req := postJSONL("/api/v1/report", scenarioBody(t))
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Encoding"); got != "br" {
		t.Fatalf("Content-Encoding = %q, want br", got)
	}
	decoded, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("brotli decode: %v", err)
	}
	var report analytics.Report
	if err := json.Unmarshal(decoded, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", report.MessageCount)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewInMemoryRateLimiter(0.001, 1)
	defer limiter.Stop()
	handler := newTestHandler(t, testConfig(), limiter)

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postJSONL("/api/v1/stats", scenarioBody(t)))
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 429]", codes)
	}

	// Health is outside the limited group.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t, testConfig(), nil)
	handler.ServeHTTP(httptest.NewRecorder(), postJSONL("/api/v1/stats", scenarioBody(t)))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `chatstats_http_requests_total{route="/api/v1/stats",status="200"}`) {
		t.Error("metrics missing request counter for /api/v1/stats")
	}
}

package api

import (
	"mime"
	"net/http"

	"github.com/ConfabulousDev/chatstats/internal/logger"
)

// acceptedBodyTypes are the media types accepted for JSONL message logs.
var acceptedBodyTypes = map[string]bool{
	"application/x-ndjson":  true,
	"application/jsonl":     true,
	"application/jsonlines": true,
}

// validateContentType ensures POST/PUT/PATCH requests declare a JSONL body.
func validateContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.Method
		if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
			log := logger.Ctx(r.Context())
			contentType := r.Header.Get("Content-Type")

			if contentType == "" {
				log.Info("Request missing Content-Type header", "method", method, "path", r.URL.Path)
				http.Error(w, "Content-Type header required", http.StatusUnsupportedMediaType)
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || !acceptedBodyTypes[mediaType] {
				log.Info("Request with invalid Content-Type", "method", method, "path", r.URL.Path, "content_type", contentType)
				http.Error(w, "Content-Type must be application/x-ndjson", http.StatusUnsupportedMediaType)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

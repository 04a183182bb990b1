package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// decompressMiddleware transparently decodes request bodies sent with
// Content-Encoding zstd or gzip. Uncompressed bodies pass through.
func decompressMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := strings.TrimSpace(r.Header.Get("Content-Encoding"))

			var body io.ReadCloser
			switch {
			case encoding == "" || strings.EqualFold(encoding, "identity"):
				next.ServeHTTP(w, r)
				return

			case strings.EqualFold(encoding, "zstd"):
				decoder, err := zstd.NewReader(r.Body)
				if err != nil {
					respondError(w, http.StatusBadRequest, "Failed to create zstd decoder")
					return
				}
				defer decoder.Close()
				body = io.NopCloser(decodeReader{decoder})

			case strings.EqualFold(encoding, "gzip"):
				reader, err := gzip.NewReader(r.Body)
				if err != nil {
					respondError(w, http.StatusBadRequest, "Invalid gzip body")
					return
				}
				defer reader.Close()
				body = io.NopCloser(decodeReader{reader})

			default:
				respondError(w, http.StatusUnsupportedMediaType,
					"Unsupported Content-Encoding: "+encoding)
				return
			}

			r.Body = body
			// Downstream handlers see the decoded stream of unknown length
			r.Header.Del("Content-Encoding")
			r.Header.Del("Content-Length")
			r.ContentLength = -1

			next.ServeHTTP(w, r)
		})
	}
}

// errCorruptBody marks a compressed request body that failed to decode
// part way through.
var errCorruptBody = errors.New("corrupt compressed body")

type decodeReader struct {
	r io.Reader
}

func (d decodeReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && err != io.EOF {
		err = fmt.Errorf("%w: %w", errCorruptBody, err)
	}
	return n, err
}

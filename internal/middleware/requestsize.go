package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize caps request bodies at 1MB. The largest
// legitimate payload is a batch analyze request with a thousand ids,
// which is far below this.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize limits request body size. A declared Content-Length
// over the cap is rejected up front; chunked bodies are capped by
// MaxBytesReader as the handler reads.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

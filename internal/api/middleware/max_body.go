package middleware

import (
	"net/http"

	"github.com/cloo-solutions/coach/internal/api"
)

const bodyTooLargeMessage = "request body too large"

// MaxBodyBytes caps request bodies at limit bytes. A limit <= 0 disables the cap.
// Declared oversize bodies are refused up front; streamed ones fail on read.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, bodyTooLargeMessage)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

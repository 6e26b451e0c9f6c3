package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"drafthub/internal/httputil"
)

// Recovery middleware recovers from panics and returns a 500 error.
// For an already-streaming SSE response the status line is long gone; the
// write then fails silently and the client sees the stream drop, which is
// the correct signal.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"remote", r.RemoteAddr,
						"stack", string(debug.Stack()),
					)

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

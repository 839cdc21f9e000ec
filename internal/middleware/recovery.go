package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"cirrus/internal/httputil"
)

// Recovery middleware recovers from panics and returns a 500 error, unless
// the handler already started writing its response.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := wrapWriter(w)
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					if !rec.wroteHeader {
						httputil.RespondError(rec, http.StatusInternalServerError, "internal server error")
					}
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

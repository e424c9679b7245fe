package middleware

import (
	"log/slog"
	"net/http"

	"github.com/journalist-service/server/pkg/logger"
)

// RequestLogger puts a per-request logger into the context. It carries the
// correlation and trace ids already present on the context plus the request
// method and path, so it must run after RequestLogging and Tracing. Auth
// later adds the verified email.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.WithContext(ctx, base).With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, l)))
		})
	}
}

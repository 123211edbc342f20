package middleware

import (
	"log/slog"
	"net/http"

	"github.com/AsimRauf/jewellery-store-sub002/pkg/logger"
)

// RequestLogger stores a request-scoped logger carrying the correlation ID,
// the authenticated subject and the trace context. Handlers retrieve it with
// logger.FromContext.
//
// Mount it after RequestLogging and Tracing, which populate those values.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if s := SubjectFromContext(ctx); s != "" {
				ctx = logger.WithSubject(ctx, s)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

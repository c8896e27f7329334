package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/username/divitrack/backend/src/logger"
)

// ContextualLoggerMiddleware attaches a request-scoped logger carrying a
// request id, method and path to the context.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		ctxLogger := logger.L.With(
			slog.String("requestID", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		ctx := logger.ToContext(r.Context(), ctxLogger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

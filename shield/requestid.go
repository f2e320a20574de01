package shield

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/surveypipe/idgen"
	"github.com/hazyhaar/surveypipe/kit"
)

var requestIDs = idgen.NanoID(8)

// RequestID generates a random id for each request and injects it into the
// context, response headers, and a per-request structured logger.
// The id is stored under kit.RequestIDKey and the logger under LoggerKey.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := requestIDs()

		ctx := kit.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)

		logger := slog.Default().With(
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		ctx = context.WithValue(ctx, LoggerKey, logger)
		logger.Info("request")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// type for context keys
type loggerKeyType struct{}

var LoggerKey = loggerKeyType{}

// RequestLogger creates a middleware that logs requests and injects a
// request-scoped child logger into the context.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := log.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)
			ctx := context.WithValue(r.Context(), LoggerKey, reqLog)
			reqLog.Info("request started")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggerFrom returns the request-scoped logger, or the default logger
// when the middleware did not run.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

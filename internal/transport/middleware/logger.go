package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/couplefine/pkg/ctxutil"
)

// probePaths are logged at debug so orchestrator probes do not flood the log.
var probePaths = map[string]bool{
	"/health":  true,
	"/live":    true,
	"/ready":   true,
	"/metrics": true,
}

// Logger writes one "http.request" line per request. Server errors log at
// error, rejected and throttled requests at warn.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := wrap(w)

			next.ServeHTTP(sw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Int("bytes", sw.bytes),
				slog.Duration("duration", time.Since(start)),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				attrs = append(attrs, slog.String("route", rc.RoutePattern()))
			}
			attrs = append(attrs, ctxutil.LogAttrs(r.Context())...)

			logger.LogAttrs(r.Context(), requestLevel(r.URL.Path, sw.status), "http.request", attrs...)
		})
	}
}

func requestLevel(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status == http.StatusTooManyRequests:
		return slog.LevelWarn
	case probePaths[path]:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/heartmarshall/couplefine/pkg/ctxutil"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

// Recovery turns a handler panic into a 500 with the standard error body.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := wrap(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				attrs := append([]slog.Attr{
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				}, ctxutil.LogAttrs(r.Context())...)
				logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)

				// A handler that already started the body cannot switch to JSON.
				if !sw.wroteHeader {
					writeError(sw, http.StatusInternalServerError, wire.CodeInternal, "internal server error")
				}
			}()
			next.ServeHTTP(sw, r)
		})
	}
}

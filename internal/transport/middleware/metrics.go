package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type httpObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Metrics records request counts and latency per chi route pattern, so
// path parameters do not explode label cardinality.
func Metrics(obs httpObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := wrap(w)

			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}
			obs.ObserveHTTP(r.Method, route, sw.status, time.Since(start))
		})
	}
}

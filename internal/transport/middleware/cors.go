package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/heartmarshall/couplefine/internal/config"
)

// exposedHeaders are the response headers the client SDK reads.
var exposedHeaders = strings.Join([]string{RequestIDHeader, "Retry-After"}, ", ")

// CORS answers preflight requests and sets the allow headers for permitted
// origins. A "*" entry allows every origin; the request origin is echoed so
// credentials keep working.
func CORS(cfg config.CORSConfig) Middleware {
	origins := cfg.Origins()
	anyOrigin := slices.Contains(origins, "*")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && (anyOrigin || slices.Contains(origins, origin))

			h := w.Header()
			if origin != "" {
				h.Add("Vary", "Origin")
			}
			if allowed {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", exposedHeaders)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			// Only a real preflight short-circuits; a bare OPTIONS reaches the router.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					h.Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
					h.Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)
					h.Set("Access-Control-Max-Age", maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/heartmarshall/couplefine/internal/auth"
	"github.com/heartmarshall/couplefine/pkg/ctxutil"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (auth.Identity, error)
}

// Auth attaches the bearer's identity to the request context. Requests
// without a token pass through anonymously; handlers decide whether a user
// is required.
func Auth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, wire.CodeUnauthorized, "invalid or expired token")
				return
			}
			ctx := ctxutil.WithUserID(r.Context(), id.UserID)
			ctx = ctxutil.WithEmail(ctx, id.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

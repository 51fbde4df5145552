// Package ctxutil carries request-scoped identity through context.Context.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type (
	userKey    struct{}
	emailKey   struct{}
	requestKey struct{}
)

// WithUserID stores the authenticated user id.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

// UserIDFromCtx returns the authenticated user id. A missing or nil id
// reports false.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, _ := ctx.Value(userKey{}).(uuid.UUID)
	return id, id != uuid.Nil
}

// WithEmail stores the account email taken from the access token.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey{}, email)
}

// EmailFromCtx returns the account email set by the auth middleware, or "".
func EmailFromCtx(ctx context.Context) string {
	email, _ := ctx.Value(emailKey{}).(string)
	return email
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey{}, id)
}

func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestKey{}).(string)
	return id
}

// LogAttrs returns the request and user ids present in ctx as log attributes.
func LogAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := RequestIDFromCtx(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if id, ok := UserIDFromCtx(ctx); ok {
		attrs = append(attrs, slog.String("user_id", id.String()))
	}
	return attrs
}

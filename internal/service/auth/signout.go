package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/couplefine/internal/auth"
	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/pkg/ctxutil"
)

// SignOut revokes one refresh token. Unknown or already revoked tokens are
// not an error.
func (s *Service) SignOut(ctx context.Context, input RefreshInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	token, err := s.tokens.GetByHash(ctx, auth.HashToken(input.RefreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("auth.SignOut get token: %w", err)
	}

	if err := s.tokens.RevokeByID(ctx, token.ID); err != nil {
		return fmt.Errorf("auth.SignOut: %w", err)
	}

	s.log.InfoContext(ctx, "user signed out", slog.String("user_id", token.UserID.String()))
	return nil
}

// SignOutAll revokes all refresh tokens for the authenticated user.
// Returns ErrUnauthorized if no userID is found in context.
func (s *Service) SignOutAll(ctx context.Context) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.tokens.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("auth.SignOutAll: %w", err)
	}

	s.log.InfoContext(ctx, "user signed out everywhere", slog.String("user_id", userID.String()))
	return nil
}

// ValidateToken validates an access token and returns its identity.
// Returns ErrUnauthorized if the token is invalid or expired.
func (s *Service) ValidateToken(_ context.Context, token string) (auth.Identity, error) {
	id, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return auth.Identity{}, domain.ErrUnauthorized
	}
	return id, nil
}

// CleanupExpiredTokens removes expired or revoked refresh tokens and spent
// reset tokens. Returns the number of rows deleted.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int, error) {
	count, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "token cleanup failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("auth.CleanupExpiredTokens: %w", err)
	}

	if count > 0 {
		s.log.InfoContext(ctx, "cleaned up expired tokens", slog.Int("count", count))
	}

	return count, nil
}

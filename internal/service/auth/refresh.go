package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/couplefine/internal/auth"
	"github.com/heartmarshall/couplefine/internal/domain"
)

// Refresh performs token rotation and returns a new pair. Presenting a
// token that was already revoked revokes every token of its user.
// Unknown, expired or reused tokens return ErrUnauthorized.
func (s *Service) Refresh(ctx context.Context, input RefreshInput) (*AuthResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash := auth.HashToken(input.RefreshToken)

	var result *AuthResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		token, err := s.tokens.GetByHash(txCtx, hash)
		if errors.Is(err, domain.ErrNotFound) {
			// The revocation below must commit, so nothing is returned
			// as an error until the transaction is done.
			return s.revokeOnReuse(txCtx, hash)
		}
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}

		user, err := s.users.GetUserByID(txCtx, token.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.log.WarnContext(ctx, "refresh for deleted user",
					slog.String("user_id", token.UserID.String()))
				return domain.ErrUnauthorized
			}
			return fmt.Errorf("get user: %w", err)
		}

		if err := s.tokens.RevokeByID(txCtx, token.ID); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}

		result, err = s.issueTokens(txCtx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.Refresh: %w", err)
	}
	if result == nil {
		return nil, domain.ErrUnauthorized
	}
	return result, nil
}

// revokeOnReuse runs when no active token matches hash. A revoked match
// means the token was replayed, so every token of the user is revoked.
func (s *Service) revokeOnReuse(ctx context.Context, hash string) error {
	token, err := s.tokens.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find token: %w", err)
	}

	if !token.IsRevoked() {
		return nil
	}

	s.log.WarnContext(ctx, "refresh token reuse detected, revoking all sessions",
		slog.String("user_id", token.UserID.String()))

	if err := s.tokens.RevokeAllByUser(ctx, token.UserID); err != nil {
		return fmt.Errorf("revoke all: %w", err)
	}
	return nil
}

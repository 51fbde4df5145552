package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/couplefine/internal/auth"
	"github.com/heartmarshall/couplefine/internal/domain"
)

// RequestPasswordReset stores a single-use reset token and mails a link to
// the account. Unknown emails succeed silently so callers cannot probe
// which addresses are registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if errs := checkEmail(nil, email); len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.DebugContext(ctx, "password reset for unknown email")
			return nil
		}
		return fmt.Errorf("auth.RequestPasswordReset get user: %w", err)
	}

	raw, hash, err := s.jwt.GenerateRefreshToken()
	if err != nil {
		return fmt.Errorf("auth.RequestPasswordReset generate token: %w", err)
	}

	if _, err := s.tokens.CreateReset(ctx, user.ID, hash, s.now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return fmt.Errorf("auth.RequestPasswordReset store token: %w", err)
	}

	if err := s.mail.SendPasswordReset(ctx, user.Email, s.resetLink(raw)); err != nil {
		return fmt.Errorf("auth.RequestPasswordReset send: %w", err)
	}

	s.log.InfoContext(ctx, "password reset requested", slog.String("user_id", user.ID.String()))
	return nil
}

// ResetPassword redeems a reset token, sets the new password and signs the
// user out of every session. Invalid, used or expired tokens are reported
// as a validation error on the token field.
func (s *Service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.cfg.PasswordHashCost)
	if err != nil {
		return fmt.Errorf("auth.ResetPassword hash password: %w", err)
	}

	var reset *domain.PasswordReset
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		reset, err = s.tokens.ConsumeReset(txCtx, auth.HashToken(input.Token))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("token", "invalid or expired")
			}
			return fmt.Errorf("consume reset: %w", err)
		}

		if err := s.users.UpdatePassword(txCtx, reset.UserID, string(hash)); err != nil {
			return fmt.Errorf("update password: %w", err)
		}

		if err := s.tokens.RevokeAllByUser(txCtx, reset.UserID); err != nil {
			return fmt.Errorf("revoke tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return fmt.Errorf("auth.ResetPassword: %w", err)
	}

	s.log.InfoContext(ctx, "password reset completed", slog.String("user_id", reset.UserID.String()))
	return nil
}

func (s *Service) resetLink(raw string) string {
	if s.cfg.ResetURLBase == "" {
		return raw
	}
	return s.cfg.ResetURLBase + "?token=" + url.QueryEscape(raw)
}

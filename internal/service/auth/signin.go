package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// SignIn authenticates with email and password. Unknown emails and wrong
// passwords both return ErrUnauthorized.
func (s *Service) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	input.Email = domain.NormalizeEmail(input.Email)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.SignIn get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.log.InfoContext(ctx, "sign-in rejected",
			slog.String("user_id", user.ID.String()))
		return nil, domain.ErrUnauthorized
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("auth.SignIn issue tokens: %w", err)
	}

	s.log.InfoContext(ctx, "user signed in", slog.String("user_id", user.ID.String()))
	return result, nil
}

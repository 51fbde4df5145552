package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// SignUp creates an account and its profile in one transaction and signs
// the new user in. An empty display name falls back to the email local part.
// Returns ErrAlreadyExists if the email is taken.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	input.DisplayName = domain.SanitizeText(input.DisplayName)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("auth.SignUp hash password: %w", err)
	}

	var (
		user    *domain.User
		profile *domain.Profile
		result  *AuthResult
	)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := s.now()
		created, err := s.users.CreateUser(txCtx, &domain.User{
			ID:           uuid.New(),
			Email:        input.Email,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		p := domain.DefaultProfile(created.ID, created.Email, now)
		if input.DisplayName != "" {
			p.DisplayName = input.DisplayName
		}
		if profile, err = s.users.CreateProfile(txCtx, &p); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}

		user = created
		result, err = s.issueTokens(txCtx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("auth.SignUp: %w", domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}

	result.Profile = profile

	s.log.InfoContext(ctx, "user signed up",
		slog.String("user_id", user.ID.String()))

	return result, nil
}

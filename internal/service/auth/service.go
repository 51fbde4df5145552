package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/auth"
	"github.com/heartmarshall/couplefine/internal/config"
	"github.com/heartmarshall/couplefine/internal/domain"
)

// userRepo defines the account and profile persistence needed by the auth service.
type userRepo interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	CreateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
}

// tokenRepo defines refresh and reset token persistence.
type tokenRepo interface {
	Create(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*domain.RefreshToken, error)
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	FindByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeByID(ctx context.Context, id uuid.UUID) error
	RevokeAllByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int, error)
	CreateReset(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*domain.PasswordReset, error)
	ConsumeReset(ctx context.Context, tokenHash string) (*domain.PasswordReset, error)
}

// txManager defines the transaction manager interface needed by auth service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// jwtManager defines the JWT token management interface needed by auth service.
type jwtManager interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error)
	ValidateAccessToken(token string) (auth.Identity, error)
	GenerateRefreshToken() (string, string, error)
}

// mailer delivers password reset links.
type mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// Service implements auth operations.
type Service struct {
	log    *slog.Logger
	users  userRepo
	tokens tokenRepo
	tx     txManager
	jwt    jwtManager
	mail   mailer
	cfg    config.AuthConfig
	now    func() time.Time
}

// NewService creates a new auth service instance.
func NewService(
	logger *slog.Logger,
	users userRepo,
	tokens tokenRepo,
	tx txManager,
	jwt jwtManager,
	mail mailer,
	cfg config.AuthConfig,
) *Service {
	return &Service{
		log:    logger.With("service", "auth"),
		users:  users,
		tokens: tokens,
		tx:     tx,
		jwt:    jwt,
		mail:   mail,
		cfg:    cfg,
		now:    time.Now,
	}
}

// issueTokens generates access and refresh tokens for the given user and
// stores the refresh token hash.
func (s *Service) issueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, expiresAt, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	rawRefresh, hashRefresh, err := s.jwt.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if _, err := s.tokens.Create(ctx, user.ID, hashRefresh, s.now().Add(s.cfg.RefreshTokenTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResult{
		Tokens: TokenPair{
			AccessToken:  accessToken,
			RefreshToken: rawRefresh,
			ExpiresAt:    expiresAt,
			TokenType:    TokenTypeBearer,
		},
		User: user,
	}, nil
}

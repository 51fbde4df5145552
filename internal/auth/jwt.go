package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager signs HS256 access tokens and mints the opaque refresh and
// password-reset tokens.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager returns a manager signing with secret. Config validation
// requires at least 32 characters.
func NewJWTManager(secret string, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// AccessClaims is the payload of an access token. The subject is the user id.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Identity is what a validated access token says about its bearer.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// GenerateAccessToken creates a signed HS256 JWT with the user ID as subject
// and the email as a custom claim. It also returns the expiry time.
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ErrInvalidToken wraps every access token rejection.
var ErrInvalidToken = errors.New("invalid access token")

// ValidateAccessToken checks the signature, issuer and expiry of an access
// token and returns its bearer.
func (m *JWTManager) ValidateAccessToken(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	var claims AccessClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: subject: %w", ErrInvalidToken, err)
	}
	return Identity{UserID: userID, Email: claims.Email, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// GenerateRefreshToken returns 32 random bytes as a URL-safe string, and
// the hash stored in place of it. Password-reset tokens use the same format.
func (m *JWTManager) GenerateRefreshToken() (raw string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate random bytes: %w", err)
	}

	raw = base64.RawURLEncoding.EncodeToString(b)
	hash = HashToken(raw)

	return raw, hash, nil
}

// HashToken is the hex SHA-256 of raw.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

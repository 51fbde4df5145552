package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// profileFromToken builds a minimal profile from the claims of an access
// token without verifying it.
func profileFromToken(token string, now time.Time) (*wire.Profile, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	return &wire.Profile{
		ID:          id,
		Email:       claims.Email,
		DisplayName: defaultDisplayName(claims.Email),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func defaultDisplayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	if name == "" {
		return "사용자"
	}
	return name
}

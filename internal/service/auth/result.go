package auth

import (
	"time"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// TokenPair is handed to clients after sign-in, sign-up and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string // raw token, NOT hash
	ExpiresAt    time.Time
	TokenType    string
}

// AuthResult is returned by SignUp, SignIn and Refresh.
type AuthResult struct {
	Tokens  TokenPair
	User    *domain.User
	Profile *domain.Profile // set by SignUp only
}

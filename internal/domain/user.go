package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an authentication account. Profile data lives in Profile.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the user-facing record both partners see.
type Profile struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	AvatarURL   *string
	CoupleID    *uuid.UUID
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultProfile builds the profile created on first authentication. The
// display name is the local part of the email.
func DefaultProfile(userID uuid.UUID, email string, now time.Time) Profile {
	name := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		name = email[:i]
	}
	if len([]rune(name)) > MaxDisplayNameLen {
		name = string([]rune(name)[:MaxDisplayNameLen])
	}
	return Profile{
		ID:          userID,
		Email:       email,
		DisplayName: name,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// InCouple reports whether the profile is linked to a couple.
func (p *Profile) InCouple() bool {
	return p.CoupleID != nil
}

// RefreshToken represents a hashed refresh token stored in the database.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked returns true if the token has been revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired returns true if the token has expired relative to now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// PasswordReset is a single-use reset token stored as a hash.
type PasswordReset struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the reset token can still be redeemed at now.
func (r *PasswordReset) Usable(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}

// ProfileUpdate lists the profile fields to change. Nil fields are kept.
// An empty AvatarURL clears the avatar.
type ProfileUpdate struct {
	DisplayName *string
	AvatarURL   *string
}

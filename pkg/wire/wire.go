// Package wire defines the JSON shapes shared by the HTTP API, the realtime
// feed and the client SDK. Field names follow the database columns.
package wire

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the format of calendar-date fields such as violation_date.
const DateLayout = "2006-01-02"

// Profile is the public part of a user.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	AvatarURL   *string    `json:"avatar_url"`
	CoupleID    *uuid.UUID `json:"couple_id"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Couple carries partner profile snapshots when the server embeds them.
type Couple struct {
	ID           uuid.UUID  `json:"id"`
	CoupleCode   string     `json:"couple_code"`
	CoupleName   string     `json:"couple_name"`
	Partner1ID   uuid.UUID  `json:"partner_1_id"`
	Partner2ID   *uuid.UUID `json:"partner_2_id"`
	TotalBalance int64      `json:"total_balance"`
	IsActive     bool       `json:"is_active"`
	Version      int64      `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Partner1     *Profile   `json:"partner_1,omitempty"`
	Partner2     *Profile   `json:"partner_2,omitempty"`
}

// Rule is a fine rule. Category is "word" or "behavior".
type Rule struct {
	ID         uuid.UUID  `json:"id"`
	CoupleID   uuid.UUID  `json:"couple_id"`
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	FineAmount int64      `json:"fine_amount"`
	IsActive   bool       `json:"is_active"`
	CreatedBy  *uuid.UUID `json:"created_by"`
	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Violation is a recorded incident. ViolationDate uses DateLayout.
type Violation struct {
	ID               uuid.UUID `json:"id"`
	CoupleID         uuid.UUID `json:"couple_id"`
	RuleID           uuid.UUID `json:"rule_id"`
	ViolatorUserID   uuid.UUID `json:"violator_user_id"`
	RecordedByUserID uuid.UUID `json:"recorded_by_user_id"`
	Amount           int64     `json:"amount"`
	Memo             *string   `json:"memo"`
	ViolationDate    string    `json:"violation_date"`
	Version          int64     `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Violator         *Profile  `json:"violator,omitempty"`
}

// Reward is a savings goal.
type Reward struct {
	ID           uuid.UUID  `json:"id"`
	CoupleID     uuid.UUID  `json:"couple_id"`
	Title        string     `json:"title"`
	TargetAmount int64      `json:"target_amount"`
	IsAchieved   bool       `json:"is_achieved"`
	AchievedAt   *time.Time `json:"achieved_at"`
	CreatedBy    *uuid.UUID `json:"created_by"`
	Version      int64      `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ViolationPage is one page of GET /violations.
type ViolationPage struct {
	Data       []Violation `json:"data"`
	Count      int         `json:"count"`
	HasMore    bool        `json:"has_more"`
	NextOffset *int        `json:"next_offset"`
}

// UserTotal is one entry of GET /violations/totals.
type UserTotal struct {
	UserID uuid.UUID `json:"user_id"`
	Total  int64     `json:"total"`
}

// Stats is the dashboard summary.
type Stats struct {
	TotalBalance        int64       `json:"total_balance"`
	ActiveRules         int         `json:"active_rules"`
	ThisMonthViolations int         `json:"this_month_violations"`
	AvailableRewards    int         `json:"available_rewards"`
	RecentActivity      []Violation `json:"recent_activity"`
}

// TokenPair is an issued session. ExpiresAt is unix seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type"`
}

// AuthResponse is returned by sign-up, sign-in and refresh.
type AuthResponse struct {
	Session TokenPair `json:"session"`
	UserID  uuid.UUID `json:"user_id"`
	Profile *Profile  `json:"profile,omitempty"`
}

// LeaveResponse reports what leaving did to the couple.
type LeaveResponse struct {
	Outcome string `json:"outcome"`
}

// Leave outcomes.
const (
	OutcomePromoted    = "promoted"
	OutcomeSlotCleared = "slot_cleared"
	OutcomeDeactivated = "deactivated"
)

// FieldError is one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Error codes carried in Error.Code.
const (
	CodeBadRequest   = "bad_request"
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal"
)

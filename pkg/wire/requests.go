package wire

import "github.com/google/uuid"

// Request bodies accepted by the REST API. Pointer fields are optional; nil
// leaves the stored value unchanged.

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UpdateProfileRequest changes the caller's profile. An empty AvatarURL
// removes the avatar.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

type CreateCoupleRequest struct {
	CoupleName string `json:"couple_name,omitempty"`
}

type JoinCoupleRequest struct {
	CoupleCode string `json:"couple_code"`
}

type RenameCoupleRequest struct {
	CoupleName string `json:"couple_name"`
}

type CreateRuleRequest struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	FineAmount int64  `json:"fine_amount"`
}

// UpdateRuleRequest carries the version the client last saw; a stale
// version is rejected with a conflict.
type UpdateRuleRequest struct {
	Title      *string `json:"title,omitempty"`
	Category   *string `json:"category,omitempty"`
	FineAmount *int64  `json:"fine_amount,omitempty"`
	Version    *int64  `json:"version,omitempty"`
}

// CreateViolationRequest records a violation. A nil Amount charges the
// rule's fine; ViolationDate uses DateLayout and defaults to today.
type CreateViolationRequest struct {
	RuleID         uuid.UUID `json:"rule_id"`
	ViolatorUserID uuid.UUID `json:"violator_user_id"`
	Amount         *int64    `json:"amount,omitempty"`
	Memo           *string   `json:"memo,omitempty"`
	ViolationDate  *string   `json:"violation_date,omitempty"`
}

type UpdateViolationRequest struct {
	Amount  *int64  `json:"amount,omitempty"`
	Memo    *string `json:"memo,omitempty"`
	Version *int64  `json:"version,omitempty"`
}

type CreateRewardRequest struct {
	Title        string `json:"title"`
	TargetAmount int64  `json:"target_amount"`
}

package violation

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// CreateInput holds parameters for recording a violation. A nil Amount uses
// the rule's fine; a nil ViolationDate means today (UTC).
type CreateInput struct {
	RuleID         uuid.UUID
	ViolatorUserID uuid.UUID
	Amount         *int64
	Memo           *string
	ViolationDate  *time.Time
}

// Validate validates the create input. Memo must already be sanitized.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	if i.RuleID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "rule_id", Message: "required"})
	}
	if i.ViolatorUserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "violator_user_id", Message: "required"})
	}
	if i.Amount != nil {
		errs = checkAmount(errs, *i.Amount)
	}
	if i.Memo != nil {
		errs = domain.CheckLength(errs, "memo", *i.Memo, false, domain.MaxMemoLen)
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateInput holds parameters for editing a violation. An empty Memo clears it.
type UpdateInput struct {
	Amount  *int64
	Memo    *string
	Version *int64
}

// Validate validates the update input. Memo must already be sanitized.
func (i UpdateInput) Validate() error {
	var errs []domain.FieldError

	if i.Amount == nil && i.Memo == nil {
		errs = append(errs, domain.FieldError{Field: "input", Message: "nothing to update"})
	}
	if i.Amount != nil {
		errs = checkAmount(errs, *i.Amount)
	}
	if i.Memo != nil {
		errs = domain.CheckLength(errs, "memo", *i.Memo, false, domain.MaxMemoLen)
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput narrows a violation listing. Limit is clamped by the repository.
type ListInput struct {
	ViolatorID *uuid.UUID
	RuleID     *uuid.UUID
	Limit      int
	Offset     int
}

// Validate validates the list input.
func (i ListInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func checkAmount(errs []domain.FieldError, amount int64) []domain.FieldError {
	switch {
	case amount == 0:
		return append(errs, domain.FieldError{Field: "amount", Message: "must not be zero"})
	case amount > domain.MaxViolationAmount || amount < -domain.MaxViolationAmount:
		return append(errs, domain.FieldError{Field: "amount", Message: "out of range"})
	}
	return errs
}

func sanitizeMemo(memo *string) *string {
	if memo == nil {
		return nil
	}
	clean := domain.SanitizeText(*memo)
	return &clean
}

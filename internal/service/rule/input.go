package rule

import (
	"github.com/heartmarshall/couplefine/internal/domain"
)

// CreateInput holds parameters for creating a rule.
type CreateInput struct {
	Title      string
	Category   domain.RuleCategory
	FineAmount int64
}

// Validate validates the create input. Title must already be sanitized.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	errs = domain.CheckLength(errs, "title", i.Title, true, domain.MaxTitleLen)
	if !i.Category.IsValid() {
		errs = append(errs, domain.FieldError{Field: "category", Message: "must be word or behavior"})
	}
	errs = checkFine(errs, i.FineAmount)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateInput holds parameters for a partial rule update. Version, when set,
// must match the stored version.
type UpdateInput struct {
	Title      *string
	Category   *domain.RuleCategory
	FineAmount *int64
	Version    *int64
}

// Validate validates the update input. Title must already be sanitized.
func (i UpdateInput) Validate() error {
	var errs []domain.FieldError

	if i.Title == nil && i.Category == nil && i.FineAmount == nil {
		errs = append(errs, domain.FieldError{Field: "input", Message: "nothing to update"})
	}
	if i.Title != nil {
		errs = domain.CheckLength(errs, "title", *i.Title, true, domain.MaxTitleLen)
	}
	if i.Category != nil && !i.Category.IsValid() {
		errs = append(errs, domain.FieldError{Field: "category", Message: "must be word or behavior"})
	}
	if i.FineAmount != nil {
		errs = checkFine(errs, *i.FineAmount)
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func checkFine(errs []domain.FieldError, amount int64) []domain.FieldError {
	switch {
	case amount <= 0:
		return append(errs, domain.FieldError{Field: "fine_amount", Message: "must be positive"})
	case amount > domain.MaxFineAmount:
		return append(errs, domain.FieldError{Field: "fine_amount", Message: "too large"})
	}
	return errs
}

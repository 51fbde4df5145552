package reward

import (
	"github.com/heartmarshall/couplefine/internal/domain"
)

// CreateInput holds parameters for creating a reward.
type CreateInput struct {
	Title        string
	TargetAmount int64
}

// Validate validates the create input. Title must already be sanitized.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	errs = domain.CheckLength(errs, "title", i.Title, true, domain.MaxTitleLen)
	switch {
	case i.TargetAmount <= 0:
		errs = append(errs, domain.FieldError{Field: "target_amount", Message: "must be positive"})
	case i.TargetAmount > domain.MaxRewardTarget:
		errs = append(errs, domain.FieldError{Field: "target_amount", Message: "too large"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

package couple

import (
	"strings"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// CreateInput holds parameters for creating a couple. An empty name uses
// domain.DefaultCoupleName.
type CreateInput struct {
	Name string
}

// Validate validates the create input. Name must already be sanitized.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	errs = domain.CheckLength(errs, "couple_name", i.Name, false, domain.MaxCoupleNameLen)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// JoinInput holds the join code entered by the second partner.
type JoinInput struct {
	Code string
}

// Validate validates the join input. Code must already be normalized.
func (i JoinInput) Validate() error {
	var errs []domain.FieldError

	switch {
	case i.Code == "":
		errs = append(errs, domain.FieldError{Field: "code", Message: "required"})
	case len(i.Code) < 6 || len(i.Code) > 8:
		errs = append(errs, domain.FieldError{Field: "code", Message: "must be 6 to 8 characters"})
	case strings.Trim(i.Code, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789") != "":
		errs = append(errs, domain.FieldError{Field: "code", Message: "invalid characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RenameInput holds the new couple name.
type RenameInput struct {
	Name string
}

// Validate validates the rename input. Name must already be sanitized.
func (i RenameInput) Validate() error {
	var errs []domain.FieldError

	errs = domain.CheckLength(errs, "couple_name", i.Name, true, domain.MaxCoupleNameLen)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

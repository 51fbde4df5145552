package auth

import (
	"unicode/utf8"

	"github.com/heartmarshall/couplefine/internal/domain"
)

const maxTokenLen = 512

// SignUpInput holds parameters for password registration.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Validate validates the sign-up input. Email must already be normalized.
func (i SignUpInput) Validate() error {
	var errs []domain.FieldError

	errs = checkEmail(errs, i.Email)
	errs = checkPassword(errs, "password", i.Password)
	errs = domain.CheckLength(errs, "display_name", i.DisplayName, false, domain.MaxDisplayNameLen)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// SignInInput holds parameters for password sign-in.
type SignInInput struct {
	Email    string
	Password string
}

// Validate validates the sign-in input.
func (i SignInInput) Validate() error {
	var errs []domain.FieldError

	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	}
	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RefreshInput holds parameters for token refresh operation.
type RefreshInput struct {
	RefreshToken string
}

// Validate validates the refresh input.
func (i RefreshInput) Validate() error {
	var errs []domain.FieldError

	errs = checkToken(errs, "refresh_token", i.RefreshToken)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ResetPasswordInput redeems a reset token for a new password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// Validate validates the reset input.
func (i ResetPasswordInput) Validate() error {
	var errs []domain.FieldError

	errs = checkToken(errs, "token", i.Token)
	errs = checkPassword(errs, "new_password", i.NewPassword)

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func checkEmail(errs []domain.FieldError, email string) []domain.FieldError {
	switch {
	case email == "":
		return append(errs, domain.FieldError{Field: "email", Message: "required"})
	case len(email) > 254 || !domain.ValidEmail(email):
		return append(errs, domain.FieldError{Field: "email", Message: "invalid format"})
	}
	return errs
}

func checkPassword(errs []domain.FieldError, field, password string) []domain.FieldError {
	n := utf8.RuneCountInString(password)
	switch {
	case n == 0:
		return append(errs, domain.FieldError{Field: field, Message: "required"})
	case n < domain.MinPasswordLen:
		return append(errs, domain.FieldError{Field: field, Message: "too short"})
	case n > domain.MaxPasswordLen:
		return append(errs, domain.FieldError{Field: field, Message: "too long"})
	}
	return errs
}

func checkToken(errs []domain.FieldError, field, token string) []domain.FieldError {
	switch {
	case token == "":
		return append(errs, domain.FieldError{Field: field, Message: "required"})
	case len(token) > maxTokenLen:
		return append(errs, domain.FieldError{Field: field, Message: "too long"})
	}
	return errs
}

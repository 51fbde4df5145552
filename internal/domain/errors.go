package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// Couple-specific conflicts. They wrap ErrConflict so transports map them
// to 409 without knowing each case.
var (
	ErrAlreadyInCouple   = fmt.Errorf("user already belongs to a couple: %w", ErrConflict)
	ErrNotInCouple       = fmt.Errorf("user does not belong to a couple: %w", ErrForbidden)
	ErrCoupleFull        = fmt.Errorf("couple already has two partners: %w", ErrConflict)
	ErrJoinOwnCouple     = fmt.Errorf("cannot join own couple: %w", ErrConflict)
	ErrRewardClaimed     = fmt.Errorf("reward already achieved: %w", ErrConflict)
	ErrBalanceBelowGoal  = fmt.Errorf("balance below target: %w", ErrConflict)
	ErrVersionMismatch   = fmt.Errorf("stale version: %w", ErrConflict)
	ErrCodeSpaceExceeded = errors.New("could not allocate a unique couple code")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

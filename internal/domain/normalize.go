package domain

import (
	"html"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips every tag; text content is kept.
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText prepares free text for storage:
//   - strips HTML markup
//   - trims leading/trailing whitespace
//   - compresses runs of whitespace into one space
//
// Case is preserved.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	// bluemonday escapes entities in text nodes; stored values are plain text.
	text = html.UnescapeString(strictPolicy.Sanitize(text))
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is a bare RFC 5322 address.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email, "@")
}

// NormalizeCoupleCode trims and upper-cases a join code.
func NormalizeCoupleCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckLength appends a FieldError when text is empty (if required) or longer
// than max runes.
func CheckLength(errs []FieldError, field, text string, required bool, max int) []FieldError {
	n := utf8.RuneCountInString(text)
	switch {
	case required && n == 0:
		return append(errs, FieldError{Field: field, Message: "required"})
	case n > max:
		return append(errs, FieldError{Field: field, Message: "too long"})
	}
	return errs
}

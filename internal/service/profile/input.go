package profile

import (
	"net/url"

	"github.com/heartmarshall/couplefine/internal/domain"
)

const maxAvatarURLLen = 2048

// UpdateMeInput holds the profile fields to change. Nil means unchanged; an
// empty AvatarURL removes the avatar.
type UpdateMeInput struct {
	DisplayName *string
	AvatarURL   *string
}

// normalize sanitizes free text in place.
func (i *UpdateMeInput) normalize() {
	if i.DisplayName != nil {
		name := domain.SanitizeText(*i.DisplayName)
		i.DisplayName = &name
	}
}

// Validate validates the update input.
func (i UpdateMeInput) Validate() error {
	var errs []domain.FieldError

	if i.DisplayName == nil && i.AvatarURL == nil {
		errs = append(errs, domain.FieldError{Field: "input", Message: "nothing to update"})
	}
	if i.DisplayName != nil {
		errs = domain.CheckLength(errs, "display_name", *i.DisplayName, true, domain.MaxDisplayNameLen)
	}
	if i.AvatarURL != nil && *i.AvatarURL != "" {
		u, err := url.Parse(*i.AvatarURL)
		switch {
		case len(*i.AvatarURL) > maxAvatarURLLen:
			errs = append(errs, domain.FieldError{Field: "avatar_url", Message: "too long"})
		case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
			errs = append(errs, domain.FieldError{Field: "avatar_url", Message: "must be an http(s) URL"})
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/service/profile"
	"github.com/heartmarshall/couplefine/internal/transport/presenter"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type profileService interface {
	GetMe(ctx context.Context) (*domain.Profile, error)
	UpdateMe(ctx context.Context, input profile.UpdateMeInput) (*domain.Profile, error)
	GetPartner(ctx context.Context) (*domain.Profile, error)
}

// ProfileHandler serves /me.
type ProfileHandler struct {
	svc profileService
	log *slog.Logger
}

func NewProfileHandler(svc profileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: logger.With("handler", "profile")}
}

// GetMe handles GET /me.
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetMe(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Profile(p))
}

// UpdateMe handles PATCH /me.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req wire.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.svc.UpdateMe(r.Context(), profile.UpdateMeInput{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Profile(p))
}

// GetPartner handles GET /me/partner.
func (h *ProfileHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPartner(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Profile(p))
}

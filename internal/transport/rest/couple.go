package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/service/couple"
	"github.com/heartmarshall/couplefine/internal/transport/dataloader"
	"github.com/heartmarshall/couplefine/internal/transport/presenter"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type coupleService interface {
	Create(ctx context.Context, input couple.CreateInput) (*domain.Couple, error)
	Join(ctx context.Context, input couple.JoinInput) (*domain.Couple, error)
	Leave(ctx context.Context) (domain.LeaveOutcome, error)
	Get(ctx context.Context) (*domain.Couple, error)
	Rename(ctx context.Context, input couple.RenameInput) (*domain.Couple, error)
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

// CoupleHandler serves /couples.
type CoupleHandler struct {
	svc coupleService
	log *slog.Logger
}

func NewCoupleHandler(svc coupleService, logger *slog.Logger) *CoupleHandler {
	return &CoupleHandler{svc: svc, log: logger.With("handler", "couple")}
}

// Create handles POST /couples.
func (h *CoupleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateCoupleRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	c, err := h.svc.Create(r.Context(), couple.CreateInput{Name: req.CoupleName})
	h.respondCouple(w, r, http.StatusCreated, c, err)
}

// Join handles POST /couples/join.
func (h *CoupleHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req wire.JoinCoupleRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.svc.Join(r.Context(), couple.JoinInput{Code: req.CoupleCode})
	h.respondCouple(w, r, http.StatusOK, c, err)
}

// Leave handles POST /couples/leave.
func (h *CoupleHandler) Leave(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.svc.Leave(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.LeaveResponse{Outcome: presenter.LeaveOutcome(outcome)})
}

// Get handles GET /couples/current.
func (h *CoupleHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context())
	h.respondCouple(w, r, http.StatusOK, c, err)
}

// Rename handles PATCH /couples/current.
func (h *CoupleHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req wire.RenameCoupleRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.svc.Rename(r.Context(), couple.RenameInput{Name: req.CoupleName})
	h.respondCouple(w, r, http.StatusOK, c, err)
}

// Stats handles GET /couples/current/stats.
func (h *CoupleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	ids := make([]uuid.UUID, len(st.RecentActivity))
	for i := range st.RecentActivity {
		ids[i] = st.RecentActivity[i].ViolatorUserID
	}
	profiles, err := dataloader.Profiles(r.Context(), ids...)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Stats(st, profiles))
}

func (h *CoupleHandler) respondCouple(w http.ResponseWriter, r *http.Request, status int, c *domain.Couple, err error) {
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	ids := []uuid.UUID{c.Partner1ID}
	if c.Partner2ID != nil {
		ids = append(ids, *c.Partner2ID)
	}
	profiles, err := dataloader.Profiles(r.Context(), ids...)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, status, presenter.Couple(c, profiles))
}

package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/service/violation"
	"github.com/heartmarshall/couplefine/internal/transport/dataloader"
	"github.com/heartmarshall/couplefine/internal/transport/presenter"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type violationService interface {
	Create(ctx context.Context, input violation.CreateInput) (*domain.Violation, error)
	Update(ctx context.Context, id uuid.UUID, input violation.UpdateInput) (*domain.Violation, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Violation, error)
	List(ctx context.Context, input violation.ListInput) (*domain.ViolationPage, error)
	UserTotals(ctx context.Context) ([]domain.UserTotal, error)
}

// ViolationHandler serves /violations.
type ViolationHandler struct {
	svc violationService
	log *slog.Logger
}

func NewViolationHandler(svc violationService, logger *slog.Logger) *ViolationHandler {
	return &ViolationHandler{svc: svc, log: logger.With("handler", "violation")}
}

// List handles GET /violations?violator_id=&rule_id=&limit=&offset=.
func (h *ViolationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var in violation.ListInput

	for name, dst := range map[string]**uuid.UUID{"violator_id": &in.ViolatorID, "rule_id": &in.RuleID} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, wire.CodeBadRequest, name+" must be a uuid", nil)
			return
		}
		*dst = &id
	}
	for name, dst := range map[string]*int{"limit": &in.Limit, "offset": &in.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, wire.CodeBadRequest, name+" must be an integer", nil)
			return
		}
		*dst = n
	}

	page, err := h.svc.List(r.Context(), in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	profiles, err := dataloader.Profiles(r.Context(), violatorIDs(page.Items)...)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.ViolationPage(page, profiles))
}

// Create handles POST /violations.
func (h *ViolationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateViolationRequest
	if !decode(w, r, &req) {
		return
	}

	in := violation.CreateInput{
		RuleID:         req.RuleID,
		ViolatorUserID: req.ViolatorUserID,
		Amount:         req.Amount,
		Memo:           req.Memo,
	}
	if req.ViolationDate != nil {
		d, err := time.Parse(wire.DateLayout, *req.ViolationDate)
		if err != nil {
			respondError(w, r, h.log, domain.NewValidationError("violation_date", "must be YYYY-MM-DD"))
			return
		}
		in.ViolationDate = &d
	}

	v, err := h.svc.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.respondViolation(w, r, http.StatusCreated, v)
}

// Update handles PATCH /violations/{id}.
func (h *ViolationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req wire.UpdateViolationRequest
	if !decode(w, r, &req) {
		return
	}

	v, err := h.svc.Update(r.Context(), id, violation.UpdateInput{
		Amount:  req.Amount,
		Memo:    req.Memo,
		Version: req.Version,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.respondViolation(w, r, http.StatusOK, v)
}

// Delete handles DELETE /violations/{id}.
func (h *ViolationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Totals handles GET /violations/totals.
func (h *ViolationHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.UserTotals(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.UserTotals(totals))
}

func (h *ViolationHandler) respondViolation(w http.ResponseWriter, r *http.Request, status int, v *domain.Violation) {
	profiles, err := dataloader.Profiles(r.Context(), v.ViolatorUserID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, status, presenter.Violation(v, profiles[v.ViolatorUserID]))
}

func violatorIDs(vs []domain.Violation) []uuid.UUID {
	ids := make([]uuid.UUID, len(vs))
	for i := range vs {
		ids[i] = vs[i].ViolatorUserID
	}
	return ids
}

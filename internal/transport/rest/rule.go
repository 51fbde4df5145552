package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/service/rule"
	"github.com/heartmarshall/couplefine/internal/transport/presenter"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type ruleService interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Rule, error)
	Create(ctx context.Context, input rule.CreateInput) (*domain.Rule, error)
	Update(ctx context.Context, id uuid.UUID, input rule.UpdateInput) (*domain.Rule, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Rule, error)
}

// RuleHandler serves /rules.
type RuleHandler struct {
	svc ruleService
	log *slog.Logger
}

func NewRuleHandler(svc ruleService, logger *slog.Logger) *RuleHandler {
	return &RuleHandler{svc: svc, log: logger.With("handler", "rule")}
}

// List handles GET /rules. Inactive rules are included with ?all=true.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	all, ok := queryBool(w, r, "all", false)
	if !ok {
		return
	}

	rules, err := h.svc.List(r.Context(), !all)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Rules(rules))
}

// Create handles POST /rules.
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateRuleRequest
	if !decode(w, r, &req) {
		return
	}

	rl, err := h.svc.Create(r.Context(), rule.CreateInput{
		Title:      req.Title,
		Category:   domain.RuleCategory(req.Category),
		FineAmount: req.FineAmount,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, presenter.Rule(rl))
}

// Update handles PATCH /rules/{id}.
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req wire.UpdateRuleRequest
	if !decode(w, r, &req) {
		return
	}

	in := rule.UpdateInput{Title: req.Title, FineAmount: req.FineAmount, Version: req.Version}
	if req.Category != nil {
		cat := domain.RuleCategory(*req.Category)
		in.Category = &cat
	}

	rl, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Rule(rl))
}

// Delete handles DELETE /rules/{id}. Rules are deactivated, not removed,
// and the deactivated rule is returned.
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rl, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Rule(rl))
}

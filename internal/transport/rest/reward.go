package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/service/reward"
	"github.com/heartmarshall/couplefine/internal/transport/presenter"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type rewardService interface {
	List(ctx context.Context, includeAchieved bool) ([]domain.Reward, error)
	Create(ctx context.Context, input reward.CreateInput) (*domain.Reward, error)
	Claim(ctx context.Context, id uuid.UUID) (*domain.Reward, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Reward, error)
}

// RewardHandler serves /rewards.
type RewardHandler struct {
	svc rewardService
	log *slog.Logger
}

func NewRewardHandler(svc rewardService, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{svc: svc, log: logger.With("handler", "reward")}
}

// List handles GET /rewards. Achieved rewards are included by default;
// ?achieved=false hides them.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	include, ok := queryBool(w, r, "achieved", true)
	if !ok {
		return
	}

	rewards, err := h.svc.List(r.Context(), include)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Rewards(rewards))
}

// Create handles POST /rewards.
func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateRewardRequest
	if !decode(w, r, &req) {
		return
	}

	rw, err := h.svc.Create(r.Context(), reward.CreateInput{Title: req.Title, TargetAmount: req.TargetAmount})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, presenter.Reward(rw))
}

// Claim handles POST /rewards/{id}/claim.
func (h *RewardHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rw, err := h.svc.Claim(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Reward(rw))
}

// Delete handles DELETE /rewards/{id}.
func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

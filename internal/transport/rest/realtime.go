package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/auth"
	"github.com/heartmarshall/couplefine/internal/transport/middleware"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (auth.Identity, error)
}

type realtimeHub interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID)
}

// RealtimeHandler upgrades GET /realtime to a change-feed websocket.
// Browsers cannot set headers on websocket requests, so the access token is
// also accepted as the access_token query parameter.
type RealtimeHandler struct {
	tokens tokenValidator
	hub    realtimeHub
	log    *slog.Logger
}

func NewRealtimeHandler(tokens tokenValidator, hub realtimeHub, logger *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{tokens: tokens, hub: hub, log: logger.With("handler", "realtime")}
}

func (h *RealtimeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("access_token")
	if token == "" {
		token = middleware.BearerToken(r)
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, wire.CodeUnauthorized, "access token required", nil)
		return
	}

	id, err := h.tokens.ValidateToken(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, wire.CodeUnauthorized, "invalid or expired token", nil)
		return
	}
	h.hub.Serve(w, r, id.UserID)
}

package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/couplefine/internal/service/auth"
	"github.com/heartmarshall/couplefine/internal/transport/presenter"
	"github.com/heartmarshall/couplefine/pkg/ctxutil"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type authService interface {
	SignUp(ctx context.Context, input auth.SignUpInput) (*auth.AuthResult, error)
	SignIn(ctx context.Context, input auth.SignInInput) (*auth.AuthResult, error)
	Refresh(ctx context.Context, input auth.RefreshInput) (*auth.AuthResult, error)
	SignOut(ctx context.Context, input auth.RefreshInput) error
	SignOutAll(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input auth.ResetPasswordInput) error
}

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	svc authService
	log *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc authService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: logger.With("handler", "auth")}
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req wire.SignUpRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.SignUp(r.Context(), auth.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req wire.SignInRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.SignIn(r.Context(), auth.SignInInput{Email: req.Email, Password: req.Password})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req wire.RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Refresh(r.Context(), auth.RefreshInput{RefreshToken: req.RefreshToken})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

// SignOut handles POST /auth/signout. With ?scope=global an authenticated
// caller revokes every session; otherwise the given refresh token is revoked.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("scope") == "global" {
		if _, ok := ctxutil.UserIDFromCtx(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, wire.CodeUnauthorized, "unauthorized", nil)
			return
		}
		if err := h.svc.SignOutAll(r.Context()); err != nil {
			respondError(w, r, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req wire.RefreshRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.SignOut(r.Context(), auth.RefreshInput{RefreshToken: req.RefreshToken}); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset handles POST /auth/password/reset-request. It always
// answers 202 so the endpoint does not reveal which emails exist.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req wire.PasswordResetRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ResetPassword handles POST /auth/password/reset.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req wire.PasswordResetConfirm
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), auth.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	}); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toAuthResponse(res *auth.AuthResult) wire.AuthResponse {
	return wire.AuthResponse{
		Session: wire.TokenPair{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
			ExpiresAt:    res.Tokens.ExpiresAt.Unix(),
			TokenType:    res.Tokens.TokenType,
		},
		UserID:  res.User.ID,
		Profile: presenter.Profile(res.Profile),
	}
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

// SignUp registers a user and returns the first session.
func (c *Client) SignUp(ctx context.Context, in wire.SignUpRequest) (*wire.AuthResponse, error) {
	var out wire.AuthResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/signup", body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*wire.AuthResponse, error) {
	var out wire.AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/signin",
		body:   wire.SignInRequest{Email: email, Password: password},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates the refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*wire.AuthResponse, error) {
	var out wire.AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   wire.RefreshRequest{RefreshToken: refreshToken},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut revokes one refresh token.
func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	return c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/auth/signout",
		body:       wire.RefreshRequest{RefreshToken: refreshToken},
		idempotent: true,
	})
}

// SignOutAll revokes every session of the authenticated user.
func (c *Client) SignOutAll(ctx context.Context) error {
	return c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/auth/signout",
		query:      url.Values{"scope": {"global"}},
		idempotent: true,
	})
}

// RequestPasswordReset asks the server to mail a reset token.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/password/reset-request",
		body:   wire.PasswordResetRequest{Email: email},
	})
}

// ResetPassword sets a new password with a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/password/reset",
		body:   wire.PasswordResetConfirm{Token: token, NewPassword: newPassword},
	})
}

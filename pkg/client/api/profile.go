package api

import (
	"context"
	"net/http"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

// Me returns the caller's profile.
func (c *Client) Me(ctx context.Context) (*wire.Profile, error) {
	var out wire.Profile
	if err := c.do(ctx, request{method: http.MethodGet, path: "/me", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMe changes the caller's profile.
func (c *Client) UpdateMe(ctx context.Context, in wire.UpdateProfileRequest) (*wire.Profile, error) {
	var out wire.Profile
	err := c.do(ctx, request{method: http.MethodPatch, path: "/me", body: in, out: &out, idempotent: true})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Partner returns the other member of the caller's couple.
func (c *Client) Partner(ctx context.Context) (*wire.Profile, error) {
	var out wire.Profile
	if err := c.do(ctx, request{method: http.MethodGet, path: "/me/partner", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

package api

import (
	"context"
	"net/http"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

// CreateCouple creates a couple with the caller as first partner. An empty
// name uses the server default.
func (c *Client) CreateCouple(ctx context.Context, name string) (*wire.Couple, error) {
	var out wire.Couple
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/couples",
		body:   wire.CreateCoupleRequest{CoupleName: name},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinCouple joins the couple owning code.
func (c *Client) JoinCouple(ctx context.Context, code string) (*wire.Couple, error) {
	var out wire.Couple
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/couples/join",
		body:   wire.JoinCoupleRequest{CoupleCode: code},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaveCouple removes the caller from their couple and returns the outcome.
func (c *Client) LeaveCouple(ctx context.Context) (string, error) {
	var out wire.LeaveResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/couples/leave", out: &out}); err != nil {
		return "", err
	}
	return out.Outcome, nil
}

// CurrentCouple returns the caller's couple with partner profiles embedded.
func (c *Client) CurrentCouple(ctx context.Context) (*wire.Couple, error) {
	var out wire.Couple
	if err := c.do(ctx, request{method: http.MethodGet, path: "/couples/current", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameCouple changes the couple name.
func (c *Client) RenameCouple(ctx context.Context, name string) (*wire.Couple, error) {
	var out wire.Couple
	err := c.do(ctx, request{
		method:     http.MethodPatch,
		path:       "/couples/current",
		body:       wire.RenameCoupleRequest{CoupleName: name},
		out:        &out,
		idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the dashboard summary.
func (c *Client) Stats(ctx context.Context) (*wire.Stats, error) {
	var out wire.Stats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/couples/current/stats", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

// Rules lists the couple's rules. Inactive rules are included when all is set.
func (c *Client) Rules(ctx context.Context, all bool) ([]wire.Rule, error) {
	req := request{method: http.MethodGet, path: "/rules"}
	if all {
		req.query = url.Values{"all": {"true"}}
	}
	var out []wire.Rule
	req.out = &out
	if err := c.do(ctx, req); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRule adds a rule.
func (c *Client) CreateRule(ctx context.Context, in wire.CreateRuleRequest) (*wire.Rule, error) {
	var out wire.Rule
	if err := c.do(ctx, request{method: http.MethodPost, path: "/rules", body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRule patches a rule. A stale in.Version fails with ErrConflict.
func (c *Client) UpdateRule(ctx context.Context, id uuid.UUID, in wire.UpdateRuleRequest) (*wire.Rule, error) {
	var out wire.Rule
	err := c.do(ctx, request{method: http.MethodPatch, path: "/rules/" + id.String(), body: in, out: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRule deactivates a rule and returns it.
func (c *Client) DeleteRule(ctx context.Context, id uuid.UUID) (*wire.Rule, error) {
	var out wire.Rule
	err := c.do(ctx, request{method: http.MethodDelete, path: "/rules/" + id.String(), out: &out, idempotent: true})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

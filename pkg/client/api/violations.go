package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

// ViolationQuery filters GET /violations. Zero values are omitted.
type ViolationQuery struct {
	ViolatorID *uuid.UUID
	RuleID     *uuid.UUID
	Limit      int
	Offset     int
}

func (q ViolationQuery) values() url.Values {
	v := url.Values{}
	if q.ViolatorID != nil {
		v.Set("violator_id", q.ViolatorID.String())
	}
	if q.RuleID != nil {
		v.Set("rule_id", q.RuleID.String())
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// Violations returns one page of violations, newest first.
func (c *Client) Violations(ctx context.Context, q ViolationQuery) (*wire.ViolationPage, error) {
	var out wire.ViolationPage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/violations", query: q.values(), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateViolation records a violation.
func (c *Client) CreateViolation(ctx context.Context, in wire.CreateViolationRequest) (*wire.Violation, error) {
	var out wire.Violation
	if err := c.do(ctx, request{method: http.MethodPost, path: "/violations", body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateViolation patches a violation.
func (c *Client) UpdateViolation(ctx context.Context, id uuid.UUID, in wire.UpdateViolationRequest) (*wire.Violation, error) {
	var out wire.Violation
	err := c.do(ctx, request{method: http.MethodPatch, path: "/violations/" + id.String(), body: in, out: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteViolation removes a violation.
func (c *Client) DeleteViolation(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/violations/" + id.String()})
}

// Totals returns the signed fine sum per violator.
func (c *Client) Totals(ctx context.Context) ([]wire.UserTotal, error) {
	var out []wire.UserTotal
	if err := c.do(ctx, request{method: http.MethodGet, path: "/violations/totals", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

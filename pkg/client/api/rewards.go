package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

// Rewards lists the couple's rewards. Achieved ones are left out unless
// includeAchieved is set.
func (c *Client) Rewards(ctx context.Context, includeAchieved bool) ([]wire.Reward, error) {
	req := request{method: http.MethodGet, path: "/rewards"}
	if !includeAchieved {
		req.query = url.Values{"achieved": {"false"}}
	}
	var out []wire.Reward
	req.out = &out
	if err := c.do(ctx, req); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReward adds a savings goal.
func (c *Client) CreateReward(ctx context.Context, in wire.CreateRewardRequest) (*wire.Reward, error) {
	var out wire.Reward
	if err := c.do(ctx, request{method: http.MethodPost, path: "/rewards", body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClaimReward marks a reward achieved. It fails with ErrConflict while the
// balance is below the target.
func (c *Client) ClaimReward(ctx context.Context, id uuid.UUID) (*wire.Reward, error) {
	var out wire.Reward
	if err := c.do(ctx, request{method: http.MethodPost, path: "/rewards/" + id.String() + "/claim", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReward removes a reward.
func (c *Client) DeleteReward(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/rewards/" + id.String()})
}

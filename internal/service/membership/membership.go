// Package membership resolves the couple an authenticated caller belongs to.
package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/pkg/ctxutil"
)

type profileRepo interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

type coupleRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Couple, error)
}

// Resolver maps the caller in ctx to their active couple.
type Resolver struct {
	profiles profileRepo
	couples  coupleRepo
}

// NewResolver creates a Resolver.
func NewResolver(profiles profileRepo, couples coupleRepo) *Resolver {
	return &Resolver{profiles: profiles, couples: couples}
}

// Current returns the caller's id and active couple. Callers without a
// couple, or linked to a couple they no longer occupy, get
// domain.ErrNotInCouple.
func (r *Resolver) Current(ctx context.Context) (uuid.UUID, *domain.Couple, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, nil, domain.ErrUnauthorized
	}

	p, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return userID, nil, domain.ErrNotInCouple
		}
		return userID, nil, fmt.Errorf("membership: get profile: %w", err)
	}
	if !p.InCouple() {
		return userID, nil, domain.ErrNotInCouple
	}

	c, err := r.couples.GetByID(ctx, *p.CoupleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return userID, nil, domain.ErrNotInCouple
		}
		return userID, nil, fmt.Errorf("membership: get couple: %w", err)
	}
	if !c.IsActive || !c.HasMember(userID) {
		return userID, nil, domain.ErrNotInCouple
	}

	return userID, c, nil
}

// IsMember reports whether userID occupies a slot of the active couple
// coupleID. It backs realtime join authorization.
func (r *Resolver) IsMember(ctx context.Context, userID, coupleID uuid.UUID) (bool, error) {
	c, err := r.couples.GetByID(ctx, coupleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("membership: get couple: %w", err)
	}
	return c.IsActive && c.HasMember(userID), nil
}

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/pkg/ctxutil"
)

// GetMe returns the caller's profile, creating a default one when the
// account has none yet.
func (s *Service) GetMe(ctx context.Context) (*domain.Profile, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	p, err := s.profiles.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("profile.GetMe: %w", err)
	}

	p, err = s.createDefault(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile.GetMe: %w", err)
	}
	return p, nil
}

func (s *Service) createDefault(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	email := ctxutil.EmailFromCtx(ctx)
	if email == "" {
		u, err := s.profiles.GetUserByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		email = u.Email
	}

	def := domain.DefaultProfile(userID, email, s.now())
	created, err := s.profiles.CreateProfile(ctx, &def)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// A concurrent request created it first.
		return s.profiles.GetProfile(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.log.InfoContext(ctx, "default profile created", slog.String("user_id", userID.String()))
	return created, nil
}

// UpdateMe changes the caller's display name or avatar and notifies the
// partner through the profiles feed.
func (s *Service) UpdateMe(ctx context.Context, input UpdateMeInput) (*domain.Profile, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	input.normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Profile
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.profiles.UpdateProfile(txCtx, userID, domain.ProfileUpdate{
			DisplayName: input.DisplayName,
			AvatarURL:   input.AvatarURL,
		})
		if err != nil {
			return err
		}

		if updated.CoupleID != nil {
			s.publish(txCtx, domain.ChangeEvent{
				Table:    domain.TableProfiles,
				Type:     domain.ChangeUpdate,
				CoupleID: *updated.CoupleID,
				Record:   updated,
				Version:  updated.Version,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("profile.UpdateMe: %w", err)
	}

	return updated, nil
}

// GetPartner returns the profile of the caller's partner. ErrNotFound means
// the caller has no couple or the couple has no second member.
func (s *Service) GetPartner(ctx context.Context) (*domain.Profile, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	me, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile.GetPartner: %w", err)
	}
	if !me.InCouple() {
		return nil, fmt.Errorf("profile.GetPartner: no couple: %w", domain.ErrNotFound)
	}

	c, err := s.couples.GetByID(ctx, *me.CoupleID)
	if err != nil {
		return nil, fmt.Errorf("profile.GetPartner: %w", err)
	}

	partnerID, ok := c.PartnerOf(userID)
	if !ok {
		return nil, fmt.Errorf("profile.GetPartner: no partner: %w", domain.ErrNotFound)
	}

	partner, err := s.profiles.GetProfile(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("profile.GetPartner: %w", err)
	}
	return partner, nil
}

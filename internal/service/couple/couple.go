package couple

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/pkg/ctxutil"
)

// Create starts a new couple with the caller as partner_1. Default rules and
// rewards are seeded when the couple has none.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Couple, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	input.Name = domain.SanitizeText(input.Name)
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Name == "" {
		input.Name = domain.DefaultCoupleName
	}

	var created *domain.Couple
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		profile, err := s.profiles.GetProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		if profile.InCouple() {
			return domain.ErrAlreadyInCouple
		}

		created, err = s.insertWithFreshCode(ctx, userID, input.Name)
		if err != nil {
			return err
		}

		linked, err := s.profiles.SetCouple(ctx, userID, &created.ID)
		if err != nil {
			return fmt.Errorf("link profile: %w", err)
		}

		if err := s.seedDefaults(ctx, created.ID, userID); err != nil {
			return err
		}

		s.publish(ctx, coupleEvent(domain.ChangeInsert, created, nil))
		s.publish(ctx, profileEvent(created.ID, linked))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("couple.Create: %w", err)
	}

	s.log.InfoContext(ctx, "couple created",
		slog.String("user_id", userID.String()),
		slog.String("couple_id", created.ID.String()),
	)

	return created, nil
}

// insertWithFreshCode retries on code collisions. The repository resolves a
// collision without aborting the transaction.
func (s *Service) insertWithFreshCode(ctx context.Context, userID uuid.UUID, name string) (*domain.Couple, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}

		c, err := s.couples.Create(ctx, &domain.Couple{
			ID:         uuid.New(),
			Code:       code,
			Name:       name,
			Partner1ID: userID,
			IsActive:   true,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create couple: %w", err)
		}
		return c, nil
	}
	return nil, domain.ErrCodeSpaceExceeded
}

func (s *Service) seedDefaults(ctx context.Context, coupleID, userID uuid.UUID) error {
	n, err := s.rules.Count(ctx, coupleID, false)
	if err != nil {
		return fmt.Errorf("count rules: %w", err)
	}
	if n == 0 {
		rules := make([]domain.Rule, len(domain.DefaultRules))
		for i, d := range domain.DefaultRules {
			rules[i] = domain.Rule{
				ID:         uuid.New(),
				CoupleID:   coupleID,
				Title:      d.Title,
				Category:   d.Category,
				FineAmount: d.FineAmount,
				IsActive:   true,
				CreatedBy:  &userID,
			}
		}
		if _, err := s.rules.CreateBatch(ctx, rules); err != nil {
			return fmt.Errorf("seed rules: %w", err)
		}
	}

	n, err = s.rewards.Count(ctx, coupleID, false)
	if err != nil {
		return fmt.Errorf("count rewards: %w", err)
	}
	if n == 0 {
		rewards := make([]domain.Reward, len(domain.DefaultRewards))
		for i, d := range domain.DefaultRewards {
			rewards[i] = domain.Reward{
				ID:           uuid.New(),
				CoupleID:     coupleID,
				Title:        d.Title,
				TargetAmount: d.TargetAmount,
				CreatedBy:    &userID,
			}
		}
		if _, err := s.rewards.CreateBatch(ctx, rewards); err != nil {
			return fmt.Errorf("seed rewards: %w", err)
		}
	}
	return nil
}

// Join fills partner_2 of the active couple identified by code.
func (s *Service) Join(ctx context.Context, input JoinInput) (*domain.Couple, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	input.Code = domain.NormalizeCoupleCode(input.Code)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var joined *domain.Couple
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		profile, err := s.profiles.GetProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}

		c, err := s.couples.GetActiveByCodeForUpdate(ctx, input.Code)
		if err != nil {
			return fmt.Errorf("find couple: %w", err)
		}

		switch {
		case c.Partner1ID == userID:
			return domain.ErrJoinOwnCouple
		case profile.InCouple():
			return domain.ErrAlreadyInCouple
		case c.IsFull():
			return domain.ErrCoupleFull
		}

		old := *c
		c.Partner2ID = &userID
		joined, err = s.couples.Update(ctx, c)
		if err != nil {
			return fmt.Errorf("update couple: %w", err)
		}

		linked, err := s.profiles.SetCouple(ctx, userID, &joined.ID)
		if err != nil {
			return fmt.Errorf("link profile: %w", err)
		}

		s.publish(ctx, coupleEvent(domain.ChangeUpdate, joined, &old))
		s.publish(ctx, profileEvent(joined.ID, linked))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("couple.Join: %w", err)
	}

	s.log.InfoContext(ctx, "couple joined",
		slog.String("user_id", userID.String()),
		slog.String("couple_id", joined.ID.String()),
	)

	return joined, nil
}

// Leave removes the caller from their couple. A remaining partner_2 is
// promoted; a sole member deactivates the couple.
func (s *Service) Leave(ctx context.Context) (domain.LeaveOutcome, error) {
	userID, current, err := s.members.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("couple.Leave: %w", err)
	}

	var outcome domain.LeaveOutcome
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.couples.GetByIDForUpdate(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("lock couple: %w", err)
		}
		if !c.HasMember(userID) {
			return domain.ErrNotInCouple
		}

		old := *c
		outcome = c.Leave(userID)
		updated, err := s.couples.Update(ctx, c)
		if err != nil {
			return fmt.Errorf("update couple: %w", err)
		}

		unlinked, err := s.profiles.SetCouple(ctx, userID, nil)
		if err != nil {
			return fmt.Errorf("unlink profile: %w", err)
		}

		s.publish(ctx, coupleEvent(domain.ChangeUpdate, updated, &old))
		s.publish(ctx, profileEvent(updated.ID, unlinked))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("couple.Leave: %w", err)
	}

	s.log.InfoContext(ctx, "couple left",
		slog.String("user_id", userID.String()),
		slog.String("couple_id", current.ID.String()),
		slog.Int("outcome", int(outcome)),
	)

	return outcome, nil
}

// Get returns the caller's couple.
func (s *Service) Get(ctx context.Context) (*domain.Couple, error) {
	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("couple.Get: %w", err)
	}
	return c, nil
}

// Rename changes the display name of the caller's couple.
func (s *Service) Rename(ctx context.Context, input RenameInput) (*domain.Couple, error) {
	input.Name = domain.SanitizeText(input.Name)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	_, current, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("couple.Rename: %w", err)
	}

	var renamed *domain.Couple
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.couples.GetByIDForUpdate(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("lock couple: %w", err)
		}

		old := *c
		c.Name = input.Name
		renamed, err = s.couples.Update(ctx, c)
		if err != nil {
			return fmt.Errorf("update couple: %w", err)
		}

		s.publish(ctx, coupleEvent(domain.ChangeUpdate, renamed, &old))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("couple.Rename: %w", err)
	}

	return renamed, nil
}

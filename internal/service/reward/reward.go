package reward

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// List returns the caller's couple rewards, newest first.
func (s *Service) List(ctx context.Context, includeAchieved bool) ([]domain.Reward, error) {
	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reward.List: %w", err)
	}

	rewards, err := s.rewards.List(ctx, c.ID, includeAchieved)
	if err != nil {
		return nil, fmt.Errorf("reward.List: %w", err)
	}
	return rewards, nil
}

// Create adds an open reward to the caller's couple.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Reward, error) {
	input.Title = domain.SanitizeText(input.Title)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reward.Create: %w", err)
	}

	var created *domain.Reward
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.rewards.Create(ctx, &domain.Reward{
			ID:           uuid.New(),
			CoupleID:     c.ID,
			Title:        input.Title,
			TargetAmount: input.TargetAmount,
			CreatedBy:    &userID,
		})
		if err != nil {
			return err
		}
		s.publish(ctx, domain.ChangeInsert, created, nil)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reward.Create: %w", err)
	}

	return created, nil
}

// Claim marks a reward achieved once the couple balance covers its target.
func (s *Service) Claim(ctx context.Context, id uuid.UUID) (*domain.Reward, error) {
	userID, current, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reward.Claim: %w", err)
	}

	var claimed *domain.Reward
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Lock order: couple, then reward. Violation writes lock the couple too.
		c, err := s.couples.GetByIDForUpdate(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("lock couple: %w", err)
		}

		old, err := s.rewards.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock reward: %w", err)
		}
		if old.CoupleID != c.ID {
			return fmt.Errorf("reward %s: %w", id, domain.ErrNotFound)
		}
		if err := old.CanClaim(c.TotalBalance); err != nil {
			return err
		}

		claimed, err = s.rewards.MarkAchieved(ctx, id, s.now().UTC())
		if err != nil {
			return fmt.Errorf("mark achieved: %w", err)
		}

		s.publish(ctx, domain.ChangeUpdate, claimed, old)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reward.Claim: %w", err)
	}

	s.log.InfoContext(ctx, "reward claimed",
		slog.String("user_id", userID.String()),
		slog.String("reward_id", id.String()),
		slog.Int64("target_amount", claimed.TargetAmount),
	)

	return claimed, nil
}

// Delete removes a reward of the caller's couple.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*domain.Reward, error) {
	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reward.Delete: %w", err)
	}

	var deleted *domain.Reward
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.rewards.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.CoupleID != c.ID {
			return fmt.Errorf("reward %s: %w", id, domain.ErrNotFound)
		}

		deleted, err = s.rewards.Delete(ctx, id)
		if err != nil {
			return err
		}
		s.publish(ctx, domain.ChangeDelete, deleted, deleted)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reward.Delete: %w", err)
	}

	return deleted, nil
}

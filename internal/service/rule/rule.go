package rule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// List returns the caller's couple rules, newest first.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.Rule, error) {
	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("rule.List: %w", err)
	}

	rules, err := s.rules.List(ctx, c.ID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("rule.List: %w", err)
	}
	return rules, nil
}

// Create adds an active rule to the caller's couple.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Rule, error) {
	input.Title = domain.SanitizeText(input.Title)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("rule.Create: %w", err)
	}

	var created *domain.Rule
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.rules.Create(ctx, &domain.Rule{
			ID:         uuid.New(),
			CoupleID:   c.ID,
			Title:      input.Title,
			Category:   input.Category,
			FineAmount: input.FineAmount,
			IsActive:   true,
			CreatedBy:  &userID,
		})
		if err != nil {
			return err
		}
		s.publish(ctx, domain.ChangeInsert, created, nil)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rule.Create: %w", err)
	}

	s.log.InfoContext(ctx, "rule created",
		slog.String("user_id", userID.String()),
		slog.String("rule_id", created.ID.String()),
	)

	return created, nil
}

// Update changes the given fields of a rule of the caller's couple.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Rule, error) {
	if input.Title != nil {
		title := domain.SanitizeText(*input.Title)
		input.Title = &title
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	upd := domain.RuleUpdate{
		Title:      input.Title,
		Category:   input.Category,
		FineAmount: input.FineAmount,
	}
	updated, err := s.apply(ctx, id, upd, input.Version)
	if err != nil {
		return nil, fmt.Errorf("rule.Update: %w", err)
	}
	return updated, nil
}

// Delete deactivates a rule. Violations keep referencing it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	inactive := false
	deleted, err := s.apply(ctx, id, domain.RuleUpdate{IsActive: &inactive}, nil)
	if err != nil {
		return nil, fmt.Errorf("rule.Delete: %w", err)
	}

	s.log.InfoContext(ctx, "rule deactivated", slog.String("rule_id", id.String()))
	return deleted, nil
}

func (s *Service) apply(ctx context.Context, id uuid.UUID, upd domain.RuleUpdate, version *int64) (*domain.Rule, error) {
	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, err
	}

	var updated *domain.Rule
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		old, err := s.rules.GetByID(ctx, id)
		if err != nil {
			return err
		}
		// Another couple's rule is reported as missing.
		if old.CoupleID != c.ID {
			return fmt.Errorf("rule %s: %w", id, domain.ErrNotFound)
		}

		// A stale version surfaces as domain.ErrVersionMismatch (a conflict).
		updated, err = s.rules.Update(ctx, id, upd, version)
		if err != nil {
			return err
		}

		s.publish(ctx, domain.ChangeUpdate, updated, old)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

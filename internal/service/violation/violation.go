package violation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// Create records a violation and adds its amount to the couple balance.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Violation, error) {
	input.Memo = sanitizeMemo(input.Memo)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	userID, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("violation.Create: %w", err)
	}
	if !c.HasMember(input.ViolatorUserID) {
		return nil, domain.NewValidationError("violator_user_id", "not a partner of this couple")
	}

	var created *domain.Violation
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rule, err := s.rules.GetByID(ctx, input.RuleID)
		if err != nil {
			return fmt.Errorf("get rule: %w", err)
		}
		if rule.CoupleID != c.ID {
			return fmt.Errorf("rule %s: %w", input.RuleID, domain.ErrNotFound)
		}
		if !rule.IsActive {
			return domain.NewValidationError("rule_id", "rule is inactive")
		}

		amount := rule.FineAmount
		if input.Amount != nil {
			amount = *input.Amount
		}

		created, err = s.violations.Create(ctx, &domain.Violation{
			ID:               uuid.New(),
			CoupleID:         c.ID,
			RuleID:           rule.ID,
			ViolatorUserID:   input.ViolatorUserID,
			RecordedByUserID: userID,
			Amount:           amount,
			Memo:             emptyToNil(input.Memo),
			ViolationDate:    s.violationDate(input.ViolationDate),
		})
		if err != nil {
			return fmt.Errorf("insert violation: %w", err)
		}

		balance, err := s.couples.AddBalance(ctx, c.ID, amount)
		if err != nil {
			return fmt.Errorf("add balance: %w", err)
		}

		s.publish(ctx, violationEvent(domain.ChangeInsert, created, nil))
		s.publish(ctx, balanceEvent(balance))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("violation.Create: %w", err)
	}

	s.log.InfoContext(ctx, "violation recorded",
		slog.String("user_id", userID.String()),
		slog.String("violation_id", created.ID.String()),
		slog.Int64("amount", created.Amount),
	)

	return created, nil
}

// Update edits amount or memo. An amount change moves the balance by the
// difference.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Violation, error) {
	input.Memo = sanitizeMemo(input.Memo)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("violation.Update: %w", err)
	}

	var updated *domain.Violation
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// The couple row lock serializes balance changes.
		if _, err := s.couples.GetByIDForUpdate(ctx, c.ID); err != nil {
			return fmt.Errorf("lock couple: %w", err)
		}

		old, err := s.owned(ctx, c.ID, id)
		if err != nil {
			return err
		}

		updated, err = s.violations.Update(ctx, id, domain.ViolationUpdate{
			Amount: input.Amount,
			Memo:   input.Memo,
		}, input.Version)
		if err != nil {
			return fmt.Errorf("update violation: %w", err)
		}

		s.publish(ctx, violationEvent(domain.ChangeUpdate, updated, old))

		if delta := updated.Amount - old.Amount; delta != 0 {
			balance, err := s.couples.AddBalance(ctx, c.ID, delta)
			if err != nil {
				return fmt.Errorf("add balance: %w", err)
			}
			s.publish(ctx, balanceEvent(balance))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("violation.Update: %w", err)
	}

	return updated, nil
}

// Delete removes a violation and subtracts its amount from the balance.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*domain.Violation, error) {
	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("violation.Delete: %w", err)
	}

	var deleted *domain.Violation
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.couples.GetByIDForUpdate(ctx, c.ID); err != nil {
			return fmt.Errorf("lock couple: %w", err)
		}

		if _, err := s.owned(ctx, c.ID, id); err != nil {
			return err
		}

		var err error
		deleted, err = s.violations.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete violation: %w", err)
		}

		balance, err := s.couples.AddBalance(ctx, c.ID, -deleted.Amount)
		if err != nil {
			return fmt.Errorf("add balance: %w", err)
		}

		s.publish(ctx, violationEvent(domain.ChangeDelete, deleted, deleted))
		s.publish(ctx, balanceEvent(balance))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("violation.Delete: %w", err)
	}

	s.log.InfoContext(ctx, "violation deleted",
		slog.String("violation_id", id.String()),
		slog.Int64("amount", deleted.Amount),
	)

	return deleted, nil
}

// List returns one page of the caller's couple violations, newest first.
func (s *Service) List(ctx context.Context, input ListInput) (*domain.ViolationPage, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("violation.List: %w", err)
	}

	page, err := s.violations.List(ctx, c.ID, domain.ViolationFilter{
		ViolatorID: input.ViolatorID,
		RuleID:     input.RuleID,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("violation.List: %w", err)
	}
	return page, nil
}

// UserTotals returns the signed sum of amounts per partner. Partners without
// violations are reported with zero.
func (s *Service) UserTotals(ctx context.Context) ([]domain.UserTotal, error) {
	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("violation.UserTotals: %w", err)
	}

	totals, err := s.violations.TotalsByViolator(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("violation.UserTotals: %w", err)
	}

	byUser := make(map[uuid.UUID]int64, len(totals))
	for _, t := range totals {
		byUser[t.UserID] = t.Total
	}
	out := make([]domain.UserTotal, 0, len(totals))
	for _, id := range c.MemberIDs() {
		out = append(out, domain.UserTotal{UserID: id, Total: byUser[id]})
		delete(byUser, id)
	}
	// Former partners keep their history.
	for _, t := range totals {
		if _, ok := byUser[t.UserID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// owned loads a violation and hides those of other couples.
func (s *Service) owned(ctx context.Context, coupleID, id uuid.UUID) (*domain.Violation, error) {
	v, err := s.violations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get violation: %w", err)
	}
	if v.CoupleID != coupleID {
		return nil, fmt.Errorf("violation %s: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (s *Service) violationDate(in *time.Time) time.Time {
	d := s.now().UTC()
	if in != nil {
		d = in.UTC()
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

package couple

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// Reconcile checks one couple's stored balance against its violations. It
// only reports; nothing is corrected.
func (s *Service) Reconcile(ctx context.Context, coupleID uuid.UUID) (*domain.ReconcileReport, error) {
	c, err := s.couples.GetByID(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("couple.Reconcile: %w", err)
	}

	vs, err := s.violations.ListAll(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("couple.Reconcile: list violations: %w", err)
	}

	foreign, err := s.violations.ForeignRuleRefs(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("couple.Reconcile: foreign refs: %w", err)
	}

	report := &domain.ReconcileReport{
		CoupleID:        coupleID,
		StoredBalance:   c.TotalBalance,
		ComputedBalance: domain.SumAmounts(vs, nil),
		ForeignRuleRefs: foreign,
		DuplicateIDs:    duplicateIDs(vs),
	}

	if !report.Consistent() {
		s.log.WarnContext(ctx, "couple data inconsistent",
			slog.String("couple_id", coupleID.String()),
			slog.Int64("stored_balance", report.StoredBalance),
			slog.Int64("computed_balance", report.ComputedBalance),
			slog.Int("foreign_rule_refs", len(report.ForeignRuleRefs)),
			slog.Int("duplicate_ids", len(report.DuplicateIDs)),
		)
	}

	return report, nil
}

// ReconcileAll runs Reconcile for every active couple and returns the
// reports that found a discrepancy.
func (s *Service) ReconcileAll(ctx context.Context) ([]domain.ReconcileReport, error) {
	ids, err := s.couples.ListActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("couple.ReconcileAll: %w", err)
	}

	var bad []domain.ReconcileReport
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return bad, err
		}
		report, err := s.Reconcile(ctx, id)
		if err != nil {
			return bad, err
		}
		if !report.Consistent() {
			bad = append(bad, *report)
		}
	}

	s.log.InfoContext(ctx, "reconcile finished",
		slog.Int("couples", len(ids)),
		slog.Int("inconsistent", len(bad)),
	)

	return bad, nil
}

func duplicateIDs(vs []domain.Violation) []uuid.UUID {
	seen := make(map[uuid.UUID]int, len(vs))
	var dups []uuid.UUID
	for i := range vs {
		seen[vs[i].ID]++
		if seen[vs[i].ID] == 2 {
			dups = append(dups, vs[i].ID)
		}
	}
	return dups
}

package couple

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/couplefine/internal/domain"
)

const recentActivityLimit = 5

// Stats returns the dashboard summary of the caller's couple.
func (s *Service) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	_, c, err := s.members.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("couple.Stats: %w", err)
	}

	stats := &domain.DashboardStats{TotalBalance: c.TotalBalance}
	monthStart := startOfMonth(s.now())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.rules.Count(gctx, c.ID, true)
		if err != nil {
			return fmt.Errorf("count rules: %w", err)
		}
		stats.ActiveRules = n
		return nil
	})
	g.Go(func() error {
		n, err := s.violations.CountSince(gctx, c.ID, monthStart)
		if err != nil {
			return fmt.Errorf("count violations: %w", err)
		}
		stats.ThisMonthViolations = n
		return nil
	})
	g.Go(func() error {
		n, err := s.rewards.Count(gctx, c.ID, true)
		if err != nil {
			return fmt.Errorf("count rewards: %w", err)
		}
		stats.AvailableRewards = n
		return nil
	})
	g.Go(func() error {
		page, err := s.violations.List(gctx, c.ID, domain.ViolationFilter{Limit: recentActivityLimit})
		if err != nil {
			return fmt.Errorf("recent violations: %w", err)
		}
		stats.RecentActivity = page.Items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("couple.Stats: %w", err)
	}

	return stats, nil
}

// startOfMonth returns midnight of the first day of t's month in UTC.
func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Issue kinds reported by Validate.
const (
	IssueCoupleMismatch     = "couple_mismatch"
	IssueBalanceMismatch    = "balance_mismatch"
	IssueInactiveRule       = "inactive_rule"
	IssueDuplicateViolation = "duplicate_violation"
)

// Issue is one inconsistency between the cache and the server or within
// the cache.
type Issue struct {
	Kind   string
	Detail string
	ID     uuid.UUID
}

// Validate compares the cache against the server couple row and checks the
// cached collections for internal inconsistencies. Issues are logged and
// returned; nothing is corrected.
func (s *Syncer) Validate(ctx context.Context) ([]Issue, error) {
	st := s.store.State()
	if st.Couple == nil {
		return nil, nil
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	server, err := s.api.CurrentCouple(cctx)
	if err != nil {
		return nil, fmt.Errorf("sync: validate: %w", err)
	}

	var issues []Issue
	if server.ID != st.Couple.ID || server.CoupleCode != st.Couple.CoupleCode {
		issues = append(issues, Issue{
			Kind:   IssueCoupleMismatch,
			Detail: fmt.Sprintf("cached %s/%s, server %s/%s", st.Couple.ID, st.Couple.CoupleCode, server.ID, server.CoupleCode),
			ID:     st.Couple.ID,
		})
	}
	if server.TotalBalance != st.Couple.TotalBalance {
		issues = append(issues, Issue{
			Kind:   IssueBalanceMismatch,
			Detail: fmt.Sprintf("cached balance %d, server %d", st.Couple.TotalBalance, server.TotalBalance),
			ID:     st.Couple.ID,
		})
	}

	s.mu.RLock()
	complete := !s.hasMore
	s.mu.RUnlock()
	if complete {
		var sum int64
		for _, v := range st.Violations {
			sum += v.Amount
		}
		if sum != server.TotalBalance {
			issues = append(issues, Issue{
				Kind:   IssueBalanceMismatch,
				Detail: fmt.Sprintf("violations sum %d, server balance %d", sum, server.TotalBalance),
				ID:     st.Couple.ID,
			})
		}
	}

	for _, r := range st.Rules {
		if !r.IsActive {
			issues = append(issues, Issue{Kind: IssueInactiveRule, Detail: r.Title, ID: r.ID})
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(st.Violations))
	for _, v := range st.Violations {
		if _, dup := seen[v.ID]; dup {
			issues = append(issues, Issue{Kind: IssueDuplicateViolation, ID: v.ID})
			continue
		}
		seen[v.ID] = struct{}{}
	}

	for _, is := range issues {
		s.log.Warn("cache inconsistency",
			slog.String("kind", is.Kind),
			slog.String("id", is.ID.String()),
			slog.String("detail", is.Detail))
	}
	return issues, nil
}

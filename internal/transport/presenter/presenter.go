// Package presenter converts domain values into their wire shapes.
package presenter

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

func Profile(p *domain.Profile) *wire.Profile {
	if p == nil {
		return nil
	}
	return &wire.Profile{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		CoupleID:    p.CoupleID,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Couple converts c. Partner snapshots are looked up in profiles by id.
func Couple(c *domain.Couple, profiles map[uuid.UUID]*domain.Profile) *wire.Couple {
	if c == nil {
		return nil
	}
	out := &wire.Couple{
		ID:           c.ID,
		CoupleCode:   c.Code,
		CoupleName:   c.Name,
		Partner1ID:   c.Partner1ID,
		Partner2ID:   c.Partner2ID,
		TotalBalance: c.TotalBalance,
		IsActive:     c.IsActive,
		Version:      c.Version,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if profiles != nil {
		out.Partner1 = Profile(profiles[c.Partner1ID])
		if c.Partner2ID != nil {
			out.Partner2 = Profile(profiles[*c.Partner2ID])
		}
	}
	return out
}

func Rule(r *domain.Rule) wire.Rule {
	return wire.Rule{
		ID:         r.ID,
		CoupleID:   r.CoupleID,
		Title:      r.Title,
		Category:   r.Category.String(),
		FineAmount: r.FineAmount,
		IsActive:   r.IsActive,
		CreatedBy:  r.CreatedBy,
		Version:    r.Version,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func Rules(rs []domain.Rule) []wire.Rule {
	out := make([]wire.Rule, len(rs))
	for i := range rs {
		out[i] = Rule(&rs[i])
	}
	return out
}

// Violation converts v, embedding the violator profile when known.
func Violation(v *domain.Violation, violator *domain.Profile) wire.Violation {
	return wire.Violation{
		ID:               v.ID,
		CoupleID:         v.CoupleID,
		RuleID:           v.RuleID,
		ViolatorUserID:   v.ViolatorUserID,
		RecordedByUserID: v.RecordedByUserID,
		Amount:           v.Amount,
		Memo:             v.Memo,
		ViolationDate:    v.ViolationDate.Format(wire.DateLayout),
		Version:          v.Version,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
		Violator:         Profile(violator),
	}
}

// Violations converts vs, looking violators up in profiles by id.
func Violations(vs []domain.Violation, profiles map[uuid.UUID]*domain.Profile) []wire.Violation {
	out := make([]wire.Violation, len(vs))
	for i := range vs {
		out[i] = Violation(&vs[i], profiles[vs[i].ViolatorUserID])
	}
	return out
}

func ViolationPage(p *domain.ViolationPage, profiles map[uuid.UUID]*domain.Profile) wire.ViolationPage {
	return wire.ViolationPage{
		Data:       Violations(p.Items, profiles),
		Count:      p.Total,
		HasMore:    p.HasMore,
		NextOffset: p.NextOffset,
	}
}

func Reward(r *domain.Reward) wire.Reward {
	return wire.Reward{
		ID:           r.ID,
		CoupleID:     r.CoupleID,
		Title:        r.Title,
		TargetAmount: r.TargetAmount,
		IsAchieved:   r.IsAchieved,
		AchievedAt:   r.AchievedAt,
		CreatedBy:    r.CreatedBy,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func Rewards(rs []domain.Reward) []wire.Reward {
	out := make([]wire.Reward, len(rs))
	for i := range rs {
		out[i] = Reward(&rs[i])
	}
	return out
}

func Stats(s *domain.DashboardStats, profiles map[uuid.UUID]*domain.Profile) wire.Stats {
	return wire.Stats{
		TotalBalance:        s.TotalBalance,
		ActiveRules:         s.ActiveRules,
		ThisMonthViolations: s.ThisMonthViolations,
		AvailableRewards:    s.AvailableRewards,
		RecentActivity:      Violations(s.RecentActivity, profiles),
	}
}

func UserTotals(ts []domain.UserTotal) []wire.UserTotal {
	out := make([]wire.UserTotal, len(ts))
	for i, t := range ts {
		out[i] = wire.UserTotal{UserID: t.UserID, Total: t.Total}
	}
	return out
}

func LeaveOutcome(o domain.LeaveOutcome) string {
	switch o {
	case domain.LeavePromote:
		return wire.OutcomePromoted
	case domain.LeaveClearSecond:
		return wire.OutcomeSlotCleared
	default:
		return wire.OutcomeDeactivated
	}
}

// Record converts a row carried by a domain.ChangeEvent. Change feeds never
// embed profile snapshots.
func Record(v any) (any, error) {
	switch r := v.(type) {
	case nil:
		return nil, nil
	case *domain.Couple:
		return Couple(r, nil), nil
	case *domain.Rule:
		return Rule(r), nil
	case *domain.Violation:
		return Violation(r, nil), nil
	case *domain.Reward:
		return Reward(r), nil
	case *domain.Profile:
		return Profile(r), nil
	}
	return nil, fmt.Errorf("presenter: unsupported record %T", v)
}

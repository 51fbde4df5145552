// Package cache holds the client's view of the couple's data and the pure
// reducer that evolves it.
package cache

import (
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

// State is the cached data of the signed-in user's couple.
type State struct {
	User       *wire.Profile
	Couple     *wire.Couple
	Rules      []wire.Rule
	Violations []wire.Violation
	Rewards    []wire.Reward
	IsOnline   bool
}

// Initial returns the empty state.
func Initial() State {
	return State{
		Rules:      []wire.Rule{},
		Violations: []wire.Violation{},
		Rewards:    []wire.Reward{},
		IsOnline:   true,
	}
}

// Action is a state transition accepted by Reduce.
type Action interface{ action() }

type (
	SetUser         struct{ User *wire.Profile }
	SetCouple       struct{ Couple *wire.Couple }
	SetOnlineStatus struct{ Online bool }
	ResetState      struct{}

	SetRules   struct{ Rules []wire.Rule }
	AddRule    struct{ Rule wire.Rule }
	UpdateRule struct{ Rule wire.Rule }
	DeleteRule struct{ ID uuid.UUID }

	SetViolations   struct{ Violations []wire.Violation }
	AddViolation    struct{ Violation wire.Violation }
	UpdateViolation struct{ Violation wire.Violation }
	DeleteViolation struct{ ID uuid.UUID }

	SetRewards   struct{ Rewards []wire.Reward }
	AddReward    struct{ Reward wire.Reward }
	UpdateReward struct{ Reward wire.Reward }
	DeleteReward struct{ ID uuid.UUID }
)

func (SetUser) action() {}
func (SetCouple) action() {}
func (SetOnlineStatus) action() {}
func (ResetState) action() {}
func (SetRules) action() {}
func (AddRule) action() {}
func (UpdateRule) action() {}
func (DeleteRule) action() {}
func (SetViolations) action() {}
func (AddViolation) action() {}
func (UpdateViolation) action() {}
func (DeleteViolation) action() {}
func (SetRewards) action() {}
func (AddReward) action() {}
func (UpdateReward) action() {}
func (DeleteReward) action() {}

// Reduce returns the state after a. The input state and its slices are
// never modified. Updates apply only when the incoming version is not
// older than the cached row.
//
// AddRule, AddViolation and AddReward all insert at the front, keeping
// every list newest-first like the server's list endpoints. Callers that
// want rules or rewards in creation order must reverse them.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetUser:
		s.User = a.User
	case SetCouple:
		s.Couple = a.Couple
	case SetOnlineStatus:
		s.IsOnline = a.Online
	case ResetState:
		user := s.User
		s = Initial()
		s.User = user

	case SetRules:
		s.Rules = slices.Clone(a.Rules)
	case AddRule:
		s.Rules = prepend(s.Rules, a.Rule, ruleKey)
	case UpdateRule:
		s.Rules = replace(s.Rules, a.Rule, ruleKey)
	case DeleteRule:
		s.Rules = remove(s.Rules, a.ID, ruleKey)

	case SetViolations:
		s.Violations = slices.Clone(a.Violations)
	case AddViolation:
		s.Violations = prepend(s.Violations, a.Violation, violationKey)
	case UpdateViolation:
		s.Violations = replace(s.Violations, a.Violation, violationKey)
	case DeleteViolation:
		s.Violations = remove(s.Violations, a.ID, violationKey)

	case SetRewards:
		s.Rewards = slices.Clone(a.Rewards)
	case AddReward:
		s.Rewards = prepend(s.Rewards, a.Reward, rewardKey)
	case UpdateReward:
		s.Rewards = replace(s.Rewards, a.Reward, rewardKey)
	case DeleteReward:
		s.Rewards = remove(s.Rewards, a.ID, rewardKey)
	}
	return s
}

func ruleKey(r wire.Rule) (uuid.UUID, int64) { return r.ID, r.Version }
func violationKey(v wire.Violation) (uuid.UUID, int64) { return v.ID, v.Version }
func rewardKey(r wire.Reward) (uuid.UUID, int64) { return r.ID, r.Version }

func indexOf[T any](xs []T, id uuid.UUID, key func(T) (uuid.UUID, int64)) int {
	return slices.IndexFunc(xs, func(x T) bool {
		xid, _ := key(x)
		return xid == id
	})
}

func prepend[T any](xs []T, x T, key func(T) (uuid.UUID, int64)) []T {
	id, _ := key(x)
	if indexOf(xs, id, key) >= 0 {
		return xs
	}
	out := make([]T, 0, len(xs)+1)
	out = append(out, x)
	return append(out, xs...)
}

func replace[T any](xs []T, x T, key func(T) (uuid.UUID, int64)) []T {
	id, version := key(x)
	i := indexOf(xs, id, key)
	if i < 0 {
		return xs
	}
	if _, cached := key(xs[i]); version < cached {
		return xs
	}
	out := slices.Clone(xs)
	out[i] = x
	return out
}

func remove[T any](xs []T, id uuid.UUID, key func(T) (uuid.UUID, int64)) []T {
	if indexOf(xs, id, key) < 0 {
		return xs
	}
	return slices.DeleteFunc(slices.Clone(xs), func(x T) bool {
		xid, _ := key(x)
		return xid == id
	})
}

// UserTotalFines sums the signed amounts of userID's violations.
func UserTotalFines(s State, userID uuid.UUID) int64 {
	var total int64
	for _, v := range s.Violations {
		if v.ViolatorUserID == userID {
			total += v.Amount
		}
	}
	return total
}

// RewardProgress is userID's total fines as a percentage of target, within
// [0, 100]. A non-positive target yields 0.
func RewardProgress(s State, userID uuid.UUID, target int64) float64 {
	if target <= 0 {
		return 0
	}
	p := float64(UserTotalFines(s, userID)) / float64(target) * 100
	return min(max(p, 0), 100)
}

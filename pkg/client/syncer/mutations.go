package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/pkg/client/api"
	"github.com/heartmarshall/couplefine/pkg/client/cache"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

// Input limits checked before a request is sent. They mirror the server's.
const (
	MaxTitleLen        = 100
	MaxCoupleNameLen   = 30
	MaxMemoLen         = 500
	MaxFineAmount      = 1_000_000
	MaxViolationAmount = 1_000_000
	MaxRewardTarget    = 100_000_000
)

// ValidationError reports input rejected before any request was made. It
// matches api.ErrValidation.
type ValidationError struct {
	Fields []wire.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "sync: invalid input: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == api.ErrValidation }

type checker []wire.FieldError

func (c *checker) text(field, v string, required bool, limit int) {
	n := utf8.RuneCountInString(strings.TrimSpace(v))
	switch {
	case required && n == 0:
		*c = append(*c, wire.FieldError{Field: field, Message: "required"})
	case n > limit:
		*c = append(*c, wire.FieldError{Field: field, Message: "too long"})
	}
}

func (c *checker) amount(field string, v, limit int64, allowNegative bool) {
	switch {
	case v == 0:
		*c = append(*c, wire.FieldError{Field: field, Message: "must not be zero"})
	case v < 0 && !allowNegative:
		*c = append(*c, wire.FieldError{Field: field, Message: "must be positive"})
	case v > limit || v < -limit:
		*c = append(*c, wire.FieldError{Field: field, Message: "too large"})
	}
}

func (c *checker) id(field string, v uuid.UUID) {
	if v == uuid.Nil {
		*c = append(*c, wire.FieldError{Field: field, Message: "required"})
	}
}

func (c checker) err() error {
	if len(c) == 0 {
		return nil
	}
	return &ValidationError{Fields: c}
}

func (s *Syncer) refreshUser(ctx context.Context) {
	if s.users == nil {
		return
	}
	if err := s.users.RefreshUser(ctx); err != nil {
		s.log.Warn("refresh user", slog.String("error", err.Error()))
	}
}

// refreshCouple reloads the couple row so the cached balance follows a
// ledger change. Failures only log; the realtime feed catches up later.
func (s *Syncer) refreshCouple(ctx context.Context) {
	c, err := s.fetchCouple(ctx)
	if err != nil {
		s.log.Warn("refresh couple", slog.String("error", err.Error()))
		return
	}
	s.store.Dispatch(cache.SetCouple{Couple: c})
}

// CreateCouple creates a couple with the caller as first partner and loads it.
func (s *Syncer) CreateCouple(ctx context.Context, name string) (*wire.Couple, error) {
	var c checker
	c.text("couple_name", name, false, MaxCoupleNameLen)
	if err := c.err(); err != nil {
		return nil, err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	couple, err := s.api.CreateCouple(cctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("sync: create couple: %w", err)
	}
	s.store.Dispatch(cache.SetCouple{Couple: couple})
	s.refreshUser(ctx)
	if err := s.LoadCoupleData(ctx); err != nil {
		s.log.Warn("load after create", slog.String("error", err.Error()))
	}
	return couple, nil
}

// JoinCouple joins the couple owning code and loads it.
func (s *Syncer) JoinCouple(ctx context.Context, code string) (*wire.Couple, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var c checker
	c.text("couple_code", code, true, 8)
	if err := c.err(); err != nil {
		return nil, err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	couple, err := s.api.JoinCouple(cctx, code)
	if err != nil {
		return nil, fmt.Errorf("sync: join couple: %w", err)
	}
	s.store.Dispatch(cache.SetCouple{Couple: couple})
	s.refreshUser(ctx)
	if err := s.LoadCoupleData(ctx); err != nil {
		s.log.Warn("load after join", slog.String("error", err.Error()))
	}
	return couple, nil
}

// LeaveCouple leaves the caller's couple, clears the cached couple data and
// refreshes the profile. It returns the server's leave outcome.
func (s *Syncer) LeaveCouple(ctx context.Context) (string, error) {
	cctx, cancel := s.call(ctx)
	defer cancel()
	outcome, err := s.api.LeaveCouple(cctx)
	if err != nil {
		return "", fmt.Errorf("sync: leave couple: %w", err)
	}
	s.Unsubscribe()
	s.store.Dispatch(cache.ResetState{})
	s.refreshUser(ctx)
	return outcome, nil
}

// RenameCouple changes the couple name.
func (s *Syncer) RenameCouple(ctx context.Context, name string) (*wire.Couple, error) {
	var c checker
	c.text("couple_name", name, true, MaxCoupleNameLen)
	if err := c.err(); err != nil {
		return nil, err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	couple, err := s.api.RenameCouple(cctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("sync: rename couple: %w", err)
	}
	s.store.Dispatch(cache.SetCouple{Couple: mergeCouple(s.store.State().Couple, couple)})
	return couple, nil
}

// CreateRule adds a rule. category is "word" or "behavior".
func (s *Syncer) CreateRule(ctx context.Context, in wire.CreateRuleRequest) (*wire.Rule, error) {
	var c checker
	c.text("title", in.Title, true, MaxTitleLen)
	if in.Category != "word" && in.Category != "behavior" {
		c = append(c, wire.FieldError{Field: "category", Message: "must be word or behavior"})
	}
	c.amount("fine_amount", in.FineAmount, MaxFineAmount, false)
	if err := c.err(); err != nil {
		return nil, err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	r, err := s.api.CreateRule(cctx, in)
	if err != nil {
		return nil, fmt.Errorf("sync: create rule: %w", err)
	}
	s.store.Dispatch(cache.AddRule{Rule: *r})
	return r, nil
}

// UpdateRule patches a rule. Without an explicit version the cached one is
// sent, so a concurrent edit surfaces as api.ErrConflict.
func (s *Syncer) UpdateRule(ctx context.Context, id uuid.UUID, in wire.UpdateRuleRequest) (*wire.Rule, error) {
	var c checker
	c.id("id", id)
	if in.Title != nil {
		c.text("title", *in.Title, true, MaxTitleLen)
	}
	if in.Category != nil && *in.Category != "word" && *in.Category != "behavior" {
		c = append(c, wire.FieldError{Field: "category", Message: "must be word or behavior"})
	}
	if in.FineAmount != nil {
		c.amount("fine_amount", *in.FineAmount, MaxFineAmount, false)
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	if in.Version == nil {
		for _, r := range s.store.State().Rules {
			if r.ID == id {
				v := r.Version
				in.Version = &v
				break
			}
		}
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	r, err := s.api.UpdateRule(cctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("sync: update rule: %w", err)
	}
	s.store.Dispatch(cache.UpdateRule{Rule: *r})
	return r, nil
}

// DeleteRule deactivates a rule and drops it from the cache.
func (s *Syncer) DeleteRule(ctx context.Context, id uuid.UUID) error {
	var c checker
	c.id("id", id)
	if err := c.err(); err != nil {
		return err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	if _, err := s.api.DeleteRule(cctx, id); err != nil {
		return fmt.Errorf("sync: delete rule: %w", err)
	}
	s.store.Dispatch(cache.DeleteRule{ID: id})
	return nil
}

// CreateViolation records a violation and refreshes the couple balance.
// A nil Amount charges the rule's fine; a negative one is a deduction.
func (s *Syncer) CreateViolation(ctx context.Context, in wire.CreateViolationRequest) (*wire.Violation, error) {
	var c checker
	c.id("rule_id", in.RuleID)
	c.id("violator_user_id", in.ViolatorUserID)
	if in.Amount != nil {
		c.amount("amount", *in.Amount, MaxViolationAmount, true)
	}
	if in.Memo != nil {
		c.text("memo", *in.Memo, false, MaxMemoLen)
	}
	if err := c.err(); err != nil {
		return nil, err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	v, err := s.api.CreateViolation(cctx, in)
	if err != nil {
		return nil, fmt.Errorf("sync: create violation: %w", err)
	}
	st := s.store.State()
	s.store.Dispatch(cache.AddViolation{Violation: withViolators([]wire.Violation{*v}, st.Couple)[0]})
	s.refreshCouple(ctx)
	return v, nil
}

// UpdateViolation changes the amount or memo of a violation.
func (s *Syncer) UpdateViolation(ctx context.Context, id uuid.UUID, in wire.UpdateViolationRequest) (*wire.Violation, error) {
	var c checker
	c.id("id", id)
	if in.Amount != nil {
		c.amount("amount", *in.Amount, MaxViolationAmount, true)
	}
	if in.Memo != nil {
		c.text("memo", *in.Memo, false, MaxMemoLen)
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	if in.Version == nil {
		for _, v := range s.store.State().Violations {
			if v.ID == id {
				ver := v.Version
				in.Version = &ver
				break
			}
		}
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	v, err := s.api.UpdateViolation(cctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("sync: update violation: %w", err)
	}
	st := s.store.State()
	s.store.Dispatch(cache.UpdateViolation{Violation: withViolators([]wire.Violation{*v}, st.Couple)[0]})
	s.refreshCouple(ctx)
	return v, nil
}

// DeleteViolation removes a violation and refreshes the couple balance.
func (s *Syncer) DeleteViolation(ctx context.Context, id uuid.UUID) error {
	var c checker
	c.id("id", id)
	if err := c.err(); err != nil {
		return err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	if err := s.api.DeleteViolation(cctx, id); err != nil {
		return fmt.Errorf("sync: delete violation: %w", err)
	}
	s.store.Dispatch(cache.DeleteViolation{ID: id})
	s.refreshCouple(ctx)
	return nil
}

// CreateReward adds a savings goal.
func (s *Syncer) CreateReward(ctx context.Context, in wire.CreateRewardRequest) (*wire.Reward, error) {
	var c checker
	c.text("title", in.Title, true, MaxTitleLen)
	c.amount("target_amount", in.TargetAmount, MaxRewardTarget, false)
	if err := c.err(); err != nil {
		return nil, err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	r, err := s.api.CreateReward(cctx, in)
	if err != nil {
		return nil, fmt.Errorf("sync: create reward: %w", err)
	}
	s.store.Dispatch(cache.AddReward{Reward: *r})
	return r, nil
}

// ClaimReward marks a reward achieved. The server refuses while the couple
// balance is below the target.
func (s *Syncer) ClaimReward(ctx context.Context, id uuid.UUID) (*wire.Reward, error) {
	var c checker
	c.id("id", id)
	if err := c.err(); err != nil {
		return nil, err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	r, err := s.api.ClaimReward(cctx, id)
	if err != nil {
		return nil, fmt.Errorf("sync: claim reward: %w", err)
	}
	s.store.Dispatch(cache.UpdateReward{Reward: *r})
	return r, nil
}

// DeleteReward removes a reward.
func (s *Syncer) DeleteReward(ctx context.Context, id uuid.UUID) error {
	var c checker
	c.id("id", id)
	if err := c.err(); err != nil {
		return err
	}

	cctx, cancel := s.call(ctx)
	defer cancel()
	if err := s.api.DeleteReward(cctx, id); err != nil {
		return fmt.Errorf("sync: delete reward: %w", err)
	}
	s.store.Dispatch(cache.DeleteReward{ID: id})
	return nil
}

// mergeCouple keeps the cached partner snapshots when next arrives without
// them and names the same partners.
func mergeCouple(prev, next *wire.Couple) *wire.Couple {
	if next == nil || prev == nil || prev.ID != next.ID {
		return next
	}
	out := *next
	if out.Partner1 == nil && prev.Partner1 != nil && prev.Partner1.ID == out.Partner1ID {
		out.Partner1 = prev.Partner1
	}
	if out.Partner2 == nil && prev.Partner2 != nil && out.Partner2ID != nil && prev.Partner2.ID == *out.Partner2ID {
		out.Partner2 = prev.Partner2
	}
	return &out
}

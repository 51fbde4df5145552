package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCoupleName is used when a couple is created without a name.
const DefaultCoupleName = "우리"

// Couple links at most two partners and carries their shared balance.
type Couple struct {
	ID           uuid.UUID
	Code         string
	Name         string
	Partner1ID   uuid.UUID
	Partner2ID   *uuid.UUID
	TotalBalance int64
	IsActive     bool
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasMember reports whether userID occupies either slot.
func (c *Couple) HasMember(userID uuid.UUID) bool {
	return c.Partner1ID == userID || (c.Partner2ID != nil && *c.Partner2ID == userID)
}

// IsFull reports whether both slots are taken.
func (c *Couple) IsFull() bool {
	return c.Partner2ID != nil
}

// PartnerOf returns the other partner of userID, if any.
func (c *Couple) PartnerOf(userID uuid.UUID) (uuid.UUID, bool) {
	switch {
	case c.Partner1ID == userID && c.Partner2ID != nil:
		return *c.Partner2ID, true
	case c.Partner2ID != nil && *c.Partner2ID == userID:
		return c.Partner1ID, true
	}
	return uuid.Nil, false
}

// MemberIDs returns the occupied slots in slot order.
func (c *Couple) MemberIDs() []uuid.UUID {
	ids := []uuid.UUID{c.Partner1ID}
	if c.Partner2ID != nil {
		ids = append(ids, *c.Partner2ID)
	}
	return ids
}

// LeaveOutcome describes what happens to a couple when a member leaves.
type LeaveOutcome int

const (
	// LeavePromote: partner_1 left, partner_2 moves to slot one.
	LeavePromote LeaveOutcome = iota + 1
	// LeaveClearSecond: partner_2 left, slot two is emptied.
	LeaveClearSecond
	// LeaveDeactivate: the only member left.
	LeaveDeactivate
)

// Leave applies the departure of userID to c and reports the outcome.
// The caller must have checked membership.
func (c *Couple) Leave(userID uuid.UUID) LeaveOutcome {
	switch {
	case c.Partner1ID == userID && c.Partner2ID != nil:
		c.Partner1ID = *c.Partner2ID
		c.Partner2ID = nil
		return LeavePromote
	case c.Partner2ID != nil && *c.Partner2ID == userID:
		c.Partner2ID = nil
		return LeaveClearSecond
	default:
		c.IsActive = false
		return LeaveDeactivate
	}
}

// DashboardStats summarizes a couple for the home screen.
type DashboardStats struct {
	TotalBalance        int64
	ActiveRules         int
	ThisMonthViolations int
	AvailableRewards    int
	RecentActivity      []Violation
}

// ReconcileReport lists inconsistencies found in a couple's data: a balance
// that differs from the sum of violations, violations pointing at another
// couple's rules, and repeated ids. It is informational; nothing is corrected.
type ReconcileReport struct {
	CoupleID        uuid.UUID
	StoredBalance   int64
	ComputedBalance int64
	ForeignRuleRefs []uuid.UUID
	DuplicateIDs    []uuid.UUID
}

// Consistent reports whether no discrepancy was found.
func (r ReconcileReport) Consistent() bool {
	return r.StoredBalance == r.ComputedBalance && len(r.ForeignRuleRefs) == 0 && len(r.DuplicateIDs) == 0
}

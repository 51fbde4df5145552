package domain

import (
	"time"

	"github.com/google/uuid"
)

// Violation records one incident. A positive Amount adds to the balance, a
// negative one reduces it.
type Violation struct {
	ID               uuid.UUID
	CoupleID         uuid.UUID
	RuleID           uuid.UUID
	ViolatorUserID   uuid.UUID
	RecordedByUserID uuid.UUID
	Amount           int64
	Memo             *string
	ViolationDate    time.Time
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ViolationUpdate lists the violation fields to change. Nil fields are kept;
// an empty Memo clears it.
type ViolationUpdate struct {
	Amount *int64
	Memo   *string
}

// ViolationFilter narrows a violation listing. Zero values mean "any".
type ViolationFilter struct {
	ViolatorID *uuid.UUID
	RuleID     *uuid.UUID
	Since      *time.Time
	Limit      int
	Offset     int
}

// ViolationPage is one page of a violation listing.
type ViolationPage struct {
	Items      []Violation
	Total      int
	HasMore    bool
	NextOffset *int
}

// UserTotal is the signed sum of a user's violation amounts.
type UserTotal struct {
	UserID uuid.UUID
	Total  int64
}

// SumAmounts returns the signed sum of amounts, optionally restricted to a
// single violator.
func SumAmounts(vs []Violation, violator *uuid.UUID) int64 {
	var sum int64
	for i := range vs {
		if violator != nil && vs[i].ViolatorUserID != *violator {
			continue
		}
		sum += vs[i].Amount
	}
	return sum
}

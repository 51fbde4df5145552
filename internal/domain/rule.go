package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rule is an agreement whose violation costs FineAmount.
type Rule struct {
	ID         uuid.UUID
	CoupleID   uuid.UUID
	Title      string
	Category   RuleCategory
	FineAmount int64
	IsActive   bool
	CreatedBy  *uuid.UUID
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DefaultRule is a template seeded into new couples.
type DefaultRule struct {
	Title      string
	Category   RuleCategory
	FineAmount int64
}

// DefaultRules are seeded when a couple is created and has no rules yet.
var DefaultRules = []DefaultRule{
	{Title: "욕설 금지", Category: RuleCategoryWord, FineAmount: 5000},
	{Title: "약속 시간 지각", Category: RuleCategoryBehavior, FineAmount: 10000},
	{Title: "연락 없이 늦은 귀가", Category: RuleCategoryBehavior, FineAmount: 20000},
}

// RuleUpdate lists the rule fields to change. Nil fields are kept.
type RuleUpdate struct {
	Title      *string
	Category   *RuleCategory
	FineAmount *int64
	IsActive   *bool
}

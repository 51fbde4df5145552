package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reward is a savings goal the couple can claim once the balance reaches
// TargetAmount.
type Reward struct {
	ID           uuid.UUID
	CoupleID     uuid.UUID
	Title        string
	TargetAmount int64
	IsAchieved   bool
	AchievedAt   *time.Time
	CreatedBy    *uuid.UUID
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanClaim reports whether balance covers the target and the reward is open.
func (r *Reward) CanClaim(balance int64) error {
	if r.IsAchieved {
		return ErrRewardClaimed
	}
	if balance < r.TargetAmount {
		return ErrBalanceBelowGoal
	}
	return nil
}

// DefaultReward is a template seeded into new couples.
type DefaultReward struct {
	Title        string
	TargetAmount int64
}

// DefaultRewards are seeded when a couple is created and has no rewards yet.
var DefaultRewards = []DefaultReward{
	{Title: "영화 데이트", TargetAmount: 30000},
	{Title: "맛집 데이트", TargetAmount: 50000},
	{Title: "주말 여행", TargetAmount: 300000},
}

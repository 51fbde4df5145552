package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user account and its profile. Returns the profile.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.Profile {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.New()
	email := "partner-" + suffix + "@example.com"

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`,
		id, email, "$2a$04$placeholderplaceholderplaceholderplaceholderplac", now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	p := domain.DefaultProfile(id, email, now)
	_, err = pool.Exec(ctx,
		`INSERT INTO profiles (id, email, display_name, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`,
		p.ID, p.Email, p.DisplayName, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert profile: %v", err)
	}

	return p
}

// SeedCouple creates an active couple for partner1 (and partner2 if non-nil)
// and links their profiles to it.
func SeedCouple(t *testing.T, pool *pgxpool.Pool, partner1 uuid.UUID, partner2 *uuid.UUID) domain.Couple {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	c := domain.Couple{
		ID:         uuid.New(),
		Code:       seedCode(),
		Name:       domain.DefaultCoupleName,
		Partner1ID: partner1,
		Partner2ID: partner2,
		IsActive:   true,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO couples (id, code, couple_name, partner_1_id, partner_2_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		c.ID, c.Code, c.Name, c.Partner1ID, c.Partner2ID, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCouple insert: %v", err)
	}

	for _, member := range c.MemberIDs() {
		if _, err := pool.Exec(ctx, `UPDATE profiles SET couple_id = $1 WHERE id = $2`, c.ID, member); err != nil {
			t.Fatalf("testhelper: SeedCouple link profile: %v", err)
		}
	}

	return c
}

// SeedRule creates an active rule in the couple.
func SeedRule(t *testing.T, pool *pgxpool.Pool, coupleID, createdBy uuid.UUID, fine int64) domain.Rule {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	r := domain.Rule{
		ID:         uuid.New(),
		CoupleID:   coupleID,
		Title:      "rule " + uniqueSuffix(),
		Category:   domain.RuleCategoryBehavior,
		FineAmount: fine,
		IsActive:   true,
		CreatedBy:  &createdBy,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO rules (id, couple_id, title, category, fine_amount, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		r.ID, r.CoupleID, r.Title, string(r.Category), r.FineAmount, r.CreatedBy, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRule insert: %v", err)
	}

	return r
}

// SeedViolation records a violation and adds its amount to the couple balance.
func SeedViolation(t *testing.T, pool *pgxpool.Pool, rule domain.Rule, violator, recorder uuid.UUID, amount int64) domain.Violation {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	v := domain.Violation{
		ID:               uuid.New(),
		CoupleID:         rule.CoupleID,
		RuleID:           rule.ID,
		ViolatorUserID:   violator,
		RecordedByUserID: recorder,
		Amount:           amount,
		ViolationDate:    now.Truncate(24 * time.Hour),
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO violations (id, couple_id, rule_id, violator_user_id, recorded_by_user_id, amount, violation_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		v.ID, v.CoupleID, v.RuleID, v.ViolatorUserID, v.RecordedByUserID, v.Amount, v.ViolationDate, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedViolation insert: %v", err)
	}

	if _, err := pool.Exec(ctx, `UPDATE couples SET total_balance = total_balance + $1 WHERE id = $2`, amount, v.CoupleID); err != nil {
		t.Fatalf("testhelper: SeedViolation balance: %v", err)
	}

	return v
}

// SeedReward creates an open reward in the couple.
func SeedReward(t *testing.T, pool *pgxpool.Pool, coupleID uuid.UUID, target int64) domain.Reward {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rw := domain.Reward{
		ID:           uuid.New(),
		CoupleID:     coupleID,
		Title:        "reward " + uniqueSuffix(),
		TargetAmount: target,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO rewards (id, couple_id, title, target_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)`,
		rw.ID, rw.CoupleID, rw.Title, rw.TargetAmount, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReward insert: %v", err)
	}

	return rw
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func seedCode() string {
	id := uuid.New()
	b := make([]byte, 8)
	for i := range b {
		b[i] = codeAlphabet[int(id[i])%len(codeAlphabet)]
	}
	return string(b)
}

// Package couple implements the Couple repository using PostgreSQL.
package couple

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/couplefine/internal/adapter/postgres"
	"github.com/heartmarshall/couplefine/internal/domain"
)

const columns = "id, code, couple_name, partner_1_id, partner_2_id, total_balance, is_active, version, created_at, updated_at"

// Repo provides couple persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new couple repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID           uuid.UUID  `db:"id"`
	Code         string     `db:"code"`
	Name         string     `db:"couple_name"`
	Partner1ID   uuid.UUID  `db:"partner_1_id"`
	Partner2ID   *uuid.UUID `db:"partner_2_id"`
	TotalBalance int64      `db:"total_balance"`
	IsActive     bool       `db:"is_active"`
	Version      int64      `db:"version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (r row) toDomain() *domain.Couple {
	return &domain.Couple{
		ID:           r.ID,
		Code:         r.Code,
		Name:         r.Name,
		Partner1ID:   r.Partner1ID,
		Partner2ID:   r.Partner2ID,
		TotalBalance: r.TotalBalance,
		IsActive:     r.IsActive,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Create inserts a couple. A join-code collision yields domain.ErrAlreadyExists
// without aborting the surrounding transaction, so callers may retry with
// another code.
func (r *Repo) Create(ctx context.Context, c *domain.Couple) (*domain.Couple, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Insert("couples").
		Columns("id", "code", "couple_name", "partner_1_id", "partner_2_id", "total_balance", "is_active").
		Values(c.ID, c.Code, c.Name, c.Partner1ID, c.Partner2ID, c.TotalBalance, c.IsActive).
		Suffix("ON CONFLICT (code) DO NOTHING RETURNING "+columns))
	if postgres.IsNoRows(err) {
		return nil, fmt.Errorf("couple code %s: %w", c.Code, domain.ErrAlreadyExists)
	}
	if err != nil {
		return nil, postgres.MapError(err, "couple", c.ID)
	}

	return out.toDomain(), nil
}

// GetByID returns a couple by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Couple, error) {
	return r.get(ctx, sq.Eq{"id": id}, id, false)
}

// GetByIDForUpdate returns a couple and locks its row until the surrounding
// transaction ends.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Couple, error) {
	return r.get(ctx, sq.Eq{"id": id}, id, true)
}

// GetActiveByCodeForUpdate returns the active couple with the given
// normalized code and locks its row.
func (r *Repo) GetActiveByCodeForUpdate(ctx context.Context, code string) (*domain.Couple, error) {
	return r.get(ctx, sq.Eq{"code": code, "is_active": true}, uuid.Nil, true)
}

func (r *Repo) get(ctx context.Context, where sq.Eq, id uuid.UUID, lock bool) (*domain.Couple, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := postgres.Builder().
		Select(columns).
		From("couples").
		Where(where)
	if lock {
		query = query.Suffix("FOR UPDATE")
	}

	var out row
	if err := postgres.Get(ctx, q, &out, query); err != nil {
		return nil, postgres.MapError(err, "couple", id)
	}

	return out.toDomain(), nil
}

// Update persists the name, partner slots and active flag of c and bumps the version.
func (r *Repo) Update(ctx context.Context, c *domain.Couple) (*domain.Couple, error) {
	return r.update(ctx, c.ID, postgres.Builder().
		Update("couples").
		Set("couple_name", c.Name).
		Set("partner_1_id", c.Partner1ID).
		Set("partner_2_id", c.Partner2ID).
		Set("is_active", c.IsActive))
}

// AddBalance adds delta (which may be negative) to the couple's total balance.
func (r *Repo) AddBalance(ctx context.Context, id uuid.UUID, delta int64) (*domain.Couple, error) {
	return r.update(ctx, id, postgres.Builder().
		Update("couples").
		Set("total_balance", sq.Expr("total_balance + ?", delta)))
}

func (r *Repo) update(ctx context.Context, id uuid.UUID, stmt sq.UpdateBuilder) (*domain.Couple, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, stmt.
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING "+columns))
	if err != nil {
		return nil, postgres.MapError(err, "couple", id)
	}

	return out.toDomain(), nil
}

// ListActiveIDs returns the ids of all active couples, oldest first.
func (r *Repo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var ids []uuid.UUID
	err := postgres.Select(ctx, q, &ids, postgres.Builder().
		Select("id").
		From("couples").
		Where(sq.Eq{"is_active": true}).
		OrderBy("created_at ASC"))
	if err != nil {
		return nil, postgres.MapError(err, "couple", uuid.Nil)
	}

	return ids, nil
}

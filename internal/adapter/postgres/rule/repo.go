// Package rule implements the Rule repository using PostgreSQL.
package rule

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/couplefine/internal/adapter/postgres"
	"github.com/heartmarshall/couplefine/internal/domain"
)

const columns = "id, couple_id, title, category, fine_amount, is_active, created_by, version, created_at, updated_at"

// Repo provides rule persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new rule repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID         uuid.UUID  `db:"id"`
	CoupleID   uuid.UUID  `db:"couple_id"`
	Title      string     `db:"title"`
	Category   string     `db:"category"`
	FineAmount int64      `db:"fine_amount"`
	IsActive   bool       `db:"is_active"`
	CreatedBy  *uuid.UUID `db:"created_by"`
	Version    int64      `db:"version"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (r row) toDomain() domain.Rule {
	return domain.Rule{
		ID:         r.ID,
		CoupleID:   r.CoupleID,
		Title:      r.Title,
		Category:   domain.RuleCategory(r.Category),
		FineAmount: r.FineAmount,
		IsActive:   r.IsActive,
		CreatedBy:  r.CreatedBy,
		Version:    r.Version,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// Create inserts a rule.
func (r *Repo) Create(ctx context.Context, rl *domain.Rule) (*domain.Rule, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Insert("rules").
		Columns("id", "couple_id", "title", "category", "fine_amount", "is_active", "created_by").
		Values(rl.ID, rl.CoupleID, rl.Title, string(rl.Category), rl.FineAmount, rl.IsActive, rl.CreatedBy).
		Suffix("RETURNING "+columns))
	if err != nil {
		return nil, postgres.MapError(err, "rule", rl.ID)
	}

	res := out.toDomain()
	return &res, nil
}

// CreateBatch inserts several rules in one round trip.
func (r *Repo) CreateBatch(ctx context.Context, rules []domain.Rule) ([]domain.Rule, error) {
	if len(rules) == 0 {
		return []domain.Rule{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	batch := &pgx.Batch{}
	for i := range rules {
		rl := &rules[i]
		sql, args, err := postgres.Builder().
			Insert("rules").
			Columns("id", "couple_id", "title", "category", "fine_amount", "is_active", "created_by").
			Values(rl.ID, rl.CoupleID, rl.Title, string(rl.Category), rl.FineAmount, rl.IsActive, rl.CreatedBy).
			Suffix("RETURNING " + columns).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build rule insert: %w", err)
		}
		batch.Queue(sql, args...)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	out := make([]domain.Rule, 0, len(rules))
	for i := range rules {
		rows, err := results.Query()
		if err != nil {
			return nil, postgres.MapError(err, "rule", rules[i].ID)
		}
		created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[row])
		if err != nil {
			return nil, postgres.MapError(err, "rule", rules[i].ID)
		}
		out = append(out, created.toDomain())
	}

	return out, nil
}

// GetByID returns a rule by primary key, active or not.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Select(columns).
		From("rules").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, postgres.MapError(err, "rule", id)
	}

	res := out.toDomain()
	return &res, nil
}

// List returns the couple's rules, newest first.
func (r *Repo) List(ctx context.Context, coupleID uuid.UUID, activeOnly bool) ([]domain.Rule, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := postgres.Builder().
		Select(columns).
		From("rules").
		Where(sq.Eq{"couple_id": coupleID}).
		OrderBy("created_at DESC", "id")
	if activeOnly {
		query = query.Where(sq.Eq{"is_active": true})
	}

	var rows []row
	if err := postgres.Select(ctx, q, &rows, query); err != nil {
		return nil, postgres.MapError(err, "rule", uuid.Nil)
	}

	out := make([]domain.Rule, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// Count returns the number of the couple's rules.
func (r *Repo) Count(ctx context.Context, coupleID uuid.UUID, activeOnly bool) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := postgres.Builder().
		Select("count(*)").
		From("rules").
		Where(sq.Eq{"couple_id": coupleID})
	if activeOnly {
		query = query.Where(sq.Eq{"is_active": true})
	}

	var n int
	if err := postgres.Get(ctx, q, &n, query); err != nil {
		return 0, postgres.MapError(err, "rule", uuid.Nil)
	}
	return n, nil
}

// Update applies upd and bumps the version. When expectedVersion is set and
// differs from the stored one, domain.ErrVersionMismatch is returned.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, upd domain.RuleUpdate, expectedVersion *int64) (*domain.Rule, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stmt := postgres.Builder().Update("rules")
	if upd.Title != nil {
		stmt = stmt.Set("title", *upd.Title)
	}
	if upd.Category != nil {
		stmt = stmt.Set("category", string(*upd.Category))
	}
	if upd.FineAmount != nil {
		stmt = stmt.Set("fine_amount", *upd.FineAmount)
	}
	if upd.IsActive != nil {
		stmt = stmt.Set("is_active", *upd.IsActive)
	}
	stmt = stmt.
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + columns)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.WhereVersion(stmt, expectedVersion))
	if postgres.IsNoRows(err) {
		return nil, postgres.ResolveMiss(ctx, q, "rules", id, expectedVersion)
	}
	if err != nil {
		return nil, postgres.MapError(err, "rule", id)
	}

	res := out.toDomain()
	return &res, nil
}

// Package reward implements the Reward repository using PostgreSQL.
package reward

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

const columns = "id, couple_id, title, target_amount, is_achieved, achieved_at, created_by, version, created_at, updated_at"

// Repo provides reward persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new reward repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID           uuid.UUID  `db:"id"`
	CoupleID     uuid.UUID  `db:"couple_id"`
	Title        string     `db:"title"`
	TargetAmount int64      `db:"target_amount"`
	IsAchieved   bool       `db:"is_achieved"`
	AchievedAt   *time.Time `db:"achieved_at"`
	CreatedBy    *uuid.UUID `db:"created_by"`
	Version      int64      `db:"version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (r row) toDomain() domain.Reward {
	return domain.Reward{
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

func insert(rw *domain.Reward) sq.InsertBuilder {
	return postgres.Builder().
		Insert("rewards").
		Columns("id", "couple_id", "title", "target_amount", "created_by").
		Values(rw.ID, rw.CoupleID, rw.Title, rw.TargetAmount, rw.CreatedBy).
		Suffix("RETURNING " + columns)
}

// Create inserts a reward. New rewards are never achieved.
func (r *Repo) Create(ctx context.Context, rw *domain.Reward) (*domain.Reward, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	if err := postgres.Get(ctx, q, &out, insert(rw)); err != nil {
		return nil, postgres.MapError(err, "reward", rw.ID)
	}

	res := out.toDomain()
	return &res, nil
}

// CreateBatch inserts several rewards in one round trip.
func (r *Repo) CreateBatch(ctx context.Context, rewards []domain.Reward) ([]domain.Reward, error) {
	if len(rewards) == 0 {
		return []domain.Reward{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	batch := &pgx.Batch{}
	for i := range rewards {
		sql, args, err := insert(&rewards[i]).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build reward insert: %w", err)
		}
		batch.Queue(sql, args...)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	out := make([]domain.Reward, 0, len(rewards))
	for i := range rewards {
		rows, err := results.Query()
		if err != nil {
			return nil, postgres.MapError(err, "reward", rewards[i].ID)
		}
		created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[row])
		if err != nil {
			return nil, postgres.MapError(err, "reward", rewards[i].ID)
		}
		out = append(out, created.toDomain())
	}

	return out, nil
}

// GetByIDForUpdate returns a reward and locks its row.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Reward, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Select(columns).
		From("rewards").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE"))
	if err != nil {
		return nil, postgres.MapError(err, "reward", id)
	}

	res := out.toDomain()
	return &res, nil
}

// GetByID returns a reward by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reward, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Select(columns).
		From("rewards").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, postgres.MapError(err, "reward", id)
	}

	res := out.toDomain()
	return &res, nil
}

// List returns the couple's rewards, newest first.
func (r *Repo) List(ctx context.Context, coupleID uuid.UUID, includeAchieved bool) ([]domain.Reward, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := postgres.Builder().
		Select(columns).
		From("rewards").
		Where(sq.Eq{"couple_id": coupleID}).
		OrderBy("created_at DESC", "id")
	if !includeAchieved {
		query = query.Where(sq.Eq{"is_achieved": false})
	}

	var rows []row
	if err := postgres.Select(ctx, q, &rows, query); err != nil {
		return nil, postgres.MapError(err, "reward", uuid.Nil)
	}

	out := make([]domain.Reward, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// Count returns the number of the couple's rewards; openOnly skips achieved ones.
func (r *Repo) Count(ctx context.Context, coupleID uuid.UUID, openOnly bool) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := postgres.Builder().
		Select("count(*)").
		From("rewards").
		Where(sq.Eq{"couple_id": coupleID})
	if openOnly {
		query = query.Where(sq.Eq{"is_achieved": false})
	}

	var n int
	if err := postgres.Get(ctx, q, &n, query); err != nil {
		return 0, postgres.MapError(err, "reward", uuid.Nil)
	}
	return n, nil
}

// MarkAchieved flags an open reward as achieved at the given time.
// An already-achieved reward yields domain.ErrRewardClaimed.
func (r *Repo) MarkAchieved(ctx context.Context, id uuid.UUID, at time.Time) (*domain.Reward, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Update("rewards").
		Set("is_achieved", true).
		Set("achieved_at", at).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "is_achieved": false}).
		Suffix("RETURNING "+columns))
	if postgres.IsNoRows(err) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("reward %s: %w", id, domain.ErrRewardClaimed)
	}
	if err != nil {
		return nil, postgres.MapError(err, "reward", id)
	}

	res := out.toDomain()
	return &res, nil
}

// Delete removes a reward and returns the deleted row.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (*domain.Reward, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Delete("rewards").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING "+columns))
	if err != nil {
		return nil, postgres.MapError(err, "reward", id)
	}

	res := out.toDomain()
	return &res, nil
}

// Package violation implements the Violation repository using PostgreSQL.
package violation

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/couplefine/internal/adapter/postgres"
	"github.com/heartmarshall/couplefine/internal/domain"
)

const columns = "id, couple_id, rule_id, violator_user_id, recorded_by_user_id, amount, memo, violation_date, version, created_at, updated_at"

// Repo provides violation persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new violation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID               uuid.UUID `db:"id"`
	CoupleID         uuid.UUID `db:"couple_id"`
	RuleID           uuid.UUID `db:"rule_id"`
	ViolatorUserID   uuid.UUID `db:"violator_user_id"`
	RecordedByUserID uuid.UUID `db:"recorded_by_user_id"`
	Amount           int64     `db:"amount"`
	Memo             *string   `db:"memo"`
	ViolationDate    time.Time `db:"violation_date"`
	Version          int64     `db:"version"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r row) toDomain() domain.Violation {
	return domain.Violation{
		ID:               r.ID,
		CoupleID:         r.CoupleID,
		RuleID:           r.RuleID,
		ViolatorUserID:   r.ViolatorUserID,
		RecordedByUserID: r.RecordedByUserID,
		Amount:           r.Amount,
		Memo:             r.Memo,
		ViolationDate:    r.ViolationDate,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toDomainList(rows []row) []domain.Violation {
	out := make([]domain.Violation, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out
}

// Create inserts a violation.
func (r *Repo) Create(ctx context.Context, v *domain.Violation) (*domain.Violation, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Insert("violations").
		Columns("id", "couple_id", "rule_id", "violator_user_id", "recorded_by_user_id", "amount", "memo", "violation_date").
		Values(v.ID, v.CoupleID, v.RuleID, v.ViolatorUserID, v.RecordedByUserID, v.Amount, v.Memo, v.ViolationDate).
		Suffix("RETURNING "+columns))
	if err != nil {
		return nil, postgres.MapError(err, "violation", v.ID)
	}

	res := out.toDomain()
	return &res, nil
}

// GetByID returns a violation by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Violation, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Select(columns).
		From("violations").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, postgres.MapError(err, "violation", id)
	}

	res := out.toDomain()
	return &res, nil
}

// Update applies upd and bumps the version.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, upd domain.ViolationUpdate, expectedVersion *int64) (*domain.Violation, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stmt := postgres.Builder().Update("violations")
	if upd.Amount != nil {
		stmt = stmt.Set("amount", *upd.Amount)
	}
	if upd.Memo != nil {
		if *upd.Memo == "" {
			stmt = stmt.Set("memo", nil)
		} else {
			stmt = stmt.Set("memo", *upd.Memo)
		}
	}
	stmt = stmt.
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + columns)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.WhereVersion(stmt, expectedVersion))
	if postgres.IsNoRows(err) {
		return nil, postgres.ResolveMiss(ctx, q, "violations", id, expectedVersion)
	}
	if err != nil {
		return nil, postgres.MapError(err, "violation", id)
	}

	res := out.toDomain()
	return &res, nil
}

// Delete removes a violation and returns the deleted row.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (*domain.Violation, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var out row
	err := postgres.Get(ctx, q, &out, postgres.Builder().
		Delete("violations").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING "+columns))
	if err != nil {
		return nil, postgres.MapError(err, "violation", id)
	}

	res := out.toDomain()
	return &res, nil
}

// List returns one page of the couple's violations, newest first. The filter
// limit is clamped to [1, domain.MaxViolationLimit].
func (r *Repo) List(ctx context.Context, coupleID uuid.UUID, f domain.ViolationFilter) (*domain.ViolationPage, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	limit := f.Limit
	switch {
	case limit <= 0:
		limit = domain.DefaultViolationLimit
	case limit > domain.MaxViolationLimit:
		limit = domain.MaxViolationLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	where := sq.And{sq.Eq{"couple_id": coupleID}}
	if f.ViolatorID != nil {
		where = append(where, sq.Eq{"violator_user_id": *f.ViolatorID})
	}
	if f.RuleID != nil {
		where = append(where, sq.Eq{"rule_id": *f.RuleID})
	}
	if f.Since != nil {
		where = append(where, sq.GtOrEq{"created_at": *f.Since})
	}

	var total int
	err := postgres.Get(ctx, q, &total, postgres.Builder().
		Select("count(*)").
		From("violations").
		Where(where))
	if err != nil {
		return nil, postgres.MapError(err, "violation", uuid.Nil)
	}

	var rows []row
	err = postgres.Select(ctx, q, &rows, postgres.Builder().
		Select(columns).
		From("violations").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, postgres.MapError(err, "violation", uuid.Nil)
	}

	page := &domain.ViolationPage{
		Items: toDomainList(rows),
		Total: total,
	}
	if next := offset + len(rows); next < total {
		page.HasMore = true
		page.NextOffset = &next
	}
	return page, nil
}

// ListAll returns every violation of the couple, newest first.
func (r *Repo) ListAll(ctx context.Context, coupleID uuid.UUID) ([]domain.Violation, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var rows []row
	err := postgres.Select(ctx, q, &rows, postgres.Builder().
		Select(columns).
		From("violations").
		Where(sq.Eq{"couple_id": coupleID}).
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		return nil, postgres.MapError(err, "violation", uuid.Nil)
	}

	return toDomainList(rows), nil
}

// CountSince returns how many of the couple's violations were recorded at or after since.
func (r *Repo) CountSince(ctx context.Context, coupleID uuid.UUID, since time.Time) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var n int
	err := postgres.Get(ctx, q, &n, postgres.Builder().
		Select("count(*)").
		From("violations").
		Where(sq.Eq{"couple_id": coupleID}).
		Where(sq.GtOrEq{"created_at": since}))
	if err != nil {
		return 0, postgres.MapError(err, "violation", uuid.Nil)
	}
	return n, nil
}

type totalRow struct {
	UserID uuid.UUID `db:"violator_user_id"`
	Total  int64     `db:"total"`
}

// TotalsByViolator returns the signed sum of amounts per violator.
func (r *Repo) TotalsByViolator(ctx context.Context, coupleID uuid.UUID) ([]domain.UserTotal, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var rows []totalRow
	err := postgres.Select(ctx, q, &rows, postgres.Builder().
		Select("violator_user_id", "COALESCE(sum(amount), 0)::bigint AS total").
		From("violations").
		Where(sq.Eq{"couple_id": coupleID}).
		GroupBy("violator_user_id").
		OrderBy("violator_user_id"))
	if err != nil {
		return nil, postgres.MapError(err, "violation", uuid.Nil)
	}

	out := make([]domain.UserTotal, len(rows))
	for i := range rows {
		out[i] = domain.UserTotal{UserID: rows[i].UserID, Total: rows[i].Total}
	}
	return out, nil
}

// ForeignRuleRefs returns the ids of the couple's violations whose rule
// belongs to a different couple.
func (r *Repo) ForeignRuleRefs(ctx context.Context, coupleID uuid.UUID) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var ids []uuid.UUID
	err := postgres.Select(ctx, q, &ids, postgres.Builder().
		Select("v.id").
		From("violations v").
		Join("rules r ON r.id = v.rule_id").
		Where(sq.Eq{"v.couple_id": coupleID}).
		Where("r.couple_id <> v.couple_id").
		OrderBy("v.id"))
	if err != nil {
		return nil, postgres.MapError(err, "violation", uuid.Nil)
	}
	return ids, nil
}

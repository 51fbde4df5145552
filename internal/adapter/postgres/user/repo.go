// Package user implements account and profile persistence using PostgreSQL.
package user

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

const emailIndex = "ux_users_email"

const (
	userColumns    = "id, email, password_hash, created_at, updated_at"
	profileColumns = "id, email, display_name, avatar_url, couple_id, version, created_at, updated_at"
)

// Repo provides user and profile persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// User operations
// ---------------------------------------------------------------------------

type userRow struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// CreateUser inserts a new account. A taken email yields domain.ErrAlreadyExists.
func (r *Repo) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row userRow
	err := postgres.Get(ctx, q, &row, postgres.Builder().
		Insert("users").
		Columns("id", "email", "password_hash", "created_at", "updated_at").
		Values(u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
		Suffix("RETURNING "+userColumns))
	if postgres.IsUniqueViolation(err, emailIndex) {
		return nil, fmt.Errorf("email %s: %w", u.Email, domain.ErrAlreadyExists)
	}
	if err != nil {
		return nil, postgres.MapError(err, "user", u.ID)
	}

	return row.toDomain(), nil
}

// GetUserByID returns an account by primary key.
func (r *Repo) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getUser(ctx, sq.Eq{"id": id}, id)
}

// GetUserByEmail returns an account by its normalized email.
func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, sq.Eq{"email": email}, uuid.Nil)
}

func (r *Repo) getUser(ctx context.Context, where sq.Eq, id uuid.UUID) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row userRow
	err := postgres.Get(ctx, q, &row, postgres.Builder().
		Select(userColumns).
		From("users").
		Where(where))
	if err != nil {
		return nil, postgres.MapError(err, "user", id)
	}

	return row.toDomain(), nil
}

// UpdatePassword replaces the password hash of an account.
func (r *Repo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	n, err := postgres.Exec(ctx, q, postgres.Builder().
		Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if n == 0 {
		return postgres.MapError(pgx.ErrNoRows, "user", id)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Profile operations
// ---------------------------------------------------------------------------

type profileRow struct {
	ID          uuid.UUID  `db:"id"`
	Email       string     `db:"email"`
	DisplayName string     `db:"display_name"`
	AvatarURL   *string    `db:"avatar_url"`
	CoupleID    *uuid.UUID `db:"couple_id"`
	Version     int64      `db:"version"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r profileRow) toDomain() domain.Profile {
	return domain.Profile{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		CoupleID:    r.CoupleID,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// CreateProfile inserts a profile. The profile id must reference an existing user.
func (r *Repo) CreateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row profileRow
	err := postgres.Get(ctx, q, &row, postgres.Builder().
		Insert("profiles").
		Columns("id", "email", "display_name", "avatar_url", "couple_id", "created_at", "updated_at").
		Values(p.ID, p.Email, p.DisplayName, p.AvatarURL, p.CoupleID, p.CreatedAt, p.UpdatedAt).
		Suffix("RETURNING "+profileColumns))
	if err != nil {
		return nil, postgres.MapError(err, "profile", p.ID)
	}

	out := row.toDomain()
	return &out, nil
}

// GetProfile returns a profile by user id.
func (r *Repo) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row profileRow
	err := postgres.Get(ctx, q, &row, postgres.Builder().
		Select(profileColumns).
		From("profiles").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, postgres.MapError(err, "profile", id)
	}

	out := row.toDomain()
	return &out, nil
}

// GetProfilesByIDs returns the profiles matching ids in no particular order.
// Missing ids are skipped.
func (r *Repo) GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return []domain.Profile{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	var rows []profileRow
	err := postgres.Select(ctx, q, &rows, postgres.Builder().
		Select(profileColumns).
		From("profiles").
		Where(sq.Eq{"id": ids}))
	if err != nil {
		return nil, postgres.MapError(err, "profile", uuid.Nil)
	}

	out := make([]domain.Profile, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// UpdateProfile applies upd and bumps the version.
func (r *Repo) UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.Profile, error) {
	stmt := postgres.Builder().Update("profiles")
	if upd.DisplayName != nil {
		stmt = stmt.Set("display_name", *upd.DisplayName)
	}
	if upd.AvatarURL != nil {
		if *upd.AvatarURL == "" {
			stmt = stmt.Set("avatar_url", nil)
		} else {
			stmt = stmt.Set("avatar_url", *upd.AvatarURL)
		}
	}
	return r.updateProfile(ctx, id, stmt)
}

// SetCouple links (or, with nil, unlinks) a profile to a couple and bumps the version.
func (r *Repo) SetCouple(ctx context.Context, id uuid.UUID, coupleID *uuid.UUID) (*domain.Profile, error) {
	return r.updateProfile(ctx, id, postgres.Builder().Update("profiles").Set("couple_id", coupleID))
}

func (r *Repo) updateProfile(ctx context.Context, id uuid.UUID, stmt sq.UpdateBuilder) (*domain.Profile, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row profileRow
	err := postgres.Get(ctx, q, &row, stmt.
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING "+profileColumns))
	if err != nil {
		return nil, postgres.MapError(err, "profile", id)
	}

	out := row.toDomain()
	return &out, nil
}

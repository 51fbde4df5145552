// Package token implements refresh-token and password-reset persistence using PostgreSQL.
package token

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/couplefine/internal/adapter/postgres"
	"github.com/heartmarshall/couplefine/internal/domain"
)

const (
	refreshColumns = "id, user_id, token_hash, expires_at, revoked_at, created_at"
	resetColumns   = "id, user_id, token_hash, expires_at, used_at, created_at"
)

// Repo provides refresh-token persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new token repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type refreshRow struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (r refreshRow) toDomain() *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		RevokedAt: r.RevokedAt,
	}
}

// Create inserts a new refresh token.
func (r *Repo) Create(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row refreshRow
	err := postgres.Get(ctx, q, &row, postgres.Builder().
		Insert("refresh_tokens").
		Columns("user_id", "token_hash", "expires_at").
		Values(userID, tokenHash, expiresAt).
		Suffix("RETURNING "+refreshColumns))
	if err != nil {
		return nil, postgres.MapError(err, "refresh_token", uuid.Nil)
	}

	return row.toDomain(), nil
}

// GetByHash returns an active (non-revoked, non-expired) refresh token by its hash.
// Returns domain.ErrNotFound if the token does not exist, is revoked, or is expired.
func (r *Repo) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row refreshRow
	err := postgres.Get(ctx, q, &row, postgres.Builder().
		Select(refreshColumns).
		From("refresh_tokens").
		Where(sq.Eq{"token_hash": tokenHash, "revoked_at": nil}).
		Where("expires_at > now()"))
	if err != nil {
		return nil, postgres.MapError(err, "refresh_token", uuid.Nil)
	}

	return row.toDomain(), nil
}

// FindByHash returns a refresh token by its hash regardless of its state.
// Used to detect reuse of a rotated token.
func (r *Repo) FindByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row refreshRow
	err := postgres.Get(ctx, q, &row, postgres.Builder().
		Select(refreshColumns).
		From("refresh_tokens").
		Where(sq.Eq{"token_hash": tokenHash}))
	if err != nil {
		return nil, postgres.MapError(err, "refresh_token", uuid.Nil)
	}

	return row.toDomain(), nil
}

// RevokeByID revokes a specific refresh token by setting revoked_at.
// Idempotent: revoking an already-revoked token is not an error.
func (r *Repo) RevokeByID(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := postgres.Exec(ctx, q, postgres.Builder().
		Update("refresh_tokens").
		Set("revoked_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "revoked_at": nil}))
	if err != nil {
		return postgres.MapError(err, "refresh_token", id)
	}

	return nil
}

// RevokeAllByUser revokes all active refresh tokens for the given user.
func (r *Repo) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := postgres.Exec(ctx, q, postgres.Builder().
		Update("refresh_tokens").
		Set("revoked_at", sq.Expr("now()")).
		Where(sq.Eq{"user_id": userID, "revoked_at": nil}))
	if err != nil {
		return postgres.MapError(err, "refresh_token", uuid.Nil)
	}

	return nil
}

// DeleteExpired removes expired or revoked refresh tokens together with
// expired or used password resets. Returns the count of deleted rows.
// May delete many records; does not use a transaction.
func (r *Repo) DeleteExpired(ctx context.Context) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tokens, err := postgres.Exec(ctx, q, postgres.Builder().
		Delete("refresh_tokens").
		Where(sq.Or{sq.Expr("expires_at <= now()"), sq.NotEq{"revoked_at": nil}}))
	if err != nil {
		return 0, postgres.MapError(err, "refresh_token", uuid.Nil)
	}

	resets, err := postgres.Exec(ctx, q, postgres.Builder().
		Delete("password_resets").
		Where(sq.Or{sq.Expr("expires_at <= now()"), sq.NotEq{"used_at": nil}}))
	if err != nil {
		return 0, postgres.MapError(err, "password_reset", uuid.Nil)
	}

	return int(tokens + resets), nil
}

// ---------------------------------------------------------------------------
// Password resets
// ---------------------------------------------------------------------------

type resetRow struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (r resetRow) toDomain() *domain.PasswordReset {
	return &domain.PasswordReset{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		ExpiresAt: r.ExpiresAt,
		UsedAt:    r.UsedAt,
		CreatedAt: r.CreatedAt,
	}
}

// CreateReset stores a hashed password-reset token.
func (r *Repo) CreateReset(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*domain.PasswordReset, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row resetRow
	err := postgres.Get(ctx, q, &row, postgres.Builder().
		Insert("password_resets").
		Columns("user_id", "token_hash", "expires_at").
		Values(userID, tokenHash, expiresAt).
		Suffix("RETURNING "+resetColumns))
	if err != nil {
		return nil, postgres.MapError(err, "password_reset", uuid.Nil)
	}

	return row.toDomain(), nil
}

// ConsumeReset marks an unused, unexpired reset token as used and returns it.
// Returns domain.ErrNotFound when no usable token matches the hash.
func (r *Repo) ConsumeReset(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var row resetRow
	err := postgres.Get(ctx, q, &row, postgres.Builder().
		Update("password_resets").
		Set("used_at", sq.Expr("now()")).
		Where(sq.Eq{"token_hash": tokenHash, "used_at": nil}).
		Where("expires_at > now()").
		Suffix("RETURNING "+resetColumns))
	if err != nil {
		return nil, postgres.MapError(err, "password_reset", uuid.Nil)
	}

	return row.toDomain(), nil
}

package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the common interface implemented by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type txCtxKey struct{}

type txState struct {
	tx          pgx.Tx
	afterCommit []func()
}

// QuerierFromCtx returns the transaction from context if present,
// otherwise returns the pool.
func QuerierFromCtx(ctx context.Context, pool *pgxpool.Pool) Querier {
	if st, ok := ctx.Value(txCtxKey{}).(*txState); ok {
		return st.tx
	}
	return pool
}

// InTx reports whether ctx carries a transaction started by TxManager.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txCtxKey{}).(*txState)
	return ok
}

// AfterCommit schedules fn to run once the surrounding transaction commits.
// Outside a transaction fn runs immediately. Hooks are dropped on rollback.
func AfterCommit(ctx context.Context, fn func()) {
	if st, ok := ctx.Value(txCtxKey{}).(*txState); ok {
		st.afterCommit = append(st.afterCommit, fn)
		return
	}
	fn()
}

// Builder returns a squirrel statement builder using $n placeholders.
func Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Select runs a squirrel query and scans all rows into dst (pointer to slice).
func Select(ctx context.Context, q Querier, dst any, query sq.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	return pgxscan.Select(ctx, q, dst, sql, args...)
}

// Get runs a squirrel query and scans exactly one row into dst.
// No rows yields pgx.ErrNoRows, which MapError turns into ErrNotFound.
func Get(ctx context.Context, q Querier, dst any, query sq.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	err = pgxscan.Get(ctx, q, dst, sql, args...)
	if pgxscan.NotFound(err) {
		return pgx.ErrNoRows
	}
	return err
}

// Exec runs a squirrel statement and returns the affected row count.
func Exec(ctx context.Context, q Querier, stmt sq.Sqlizer) (int64, error) {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

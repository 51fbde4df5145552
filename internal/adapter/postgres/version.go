package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// WhereVersion narrows an update to the expected row version when one is given.
func WhereVersion(stmt sq.UpdateBuilder, expected *int64) sq.UpdateBuilder {
	if expected == nil {
		return stmt
	}
	return stmt.Where(sq.Eq{"version": *expected})
}

// ResolveMiss explains why a versioned update matched no row: the row is
// missing (ErrNotFound) or its version moved on (ErrVersionMismatch).
func ResolveMiss(ctx context.Context, q Querier, table string, id uuid.UUID, expected *int64) error {
	if expected == nil {
		return MapError(pgx.ErrNoRows, table, id)
	}

	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return MapError(err, table, id)
	}
	if !exists {
		return MapError(pgx.ErrNoRows, table, id)
	}
	return fmt.Errorf("%s %s: %w", table, id, domain.ErrVersionMismatch)
}

// IsNoRows reports whether err is pgx.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

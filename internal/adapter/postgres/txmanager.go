package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager runs units of work in a transaction carried through the context.
// Nested RunInTx calls join the outermost transaction.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// RunInTx runs fn in a read-committed transaction. A returned error or a
// panic rolls back; after a successful commit the AfterCommit hooks run in
// registration order, which is where realtime events get published.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	st := &txState{tx: tx}
	txCtx := context.WithValue(ctx, txCtxKey{}, st)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	for _, hook := range st.afterCommit {
		hook()
	}

	return nil
}

// AfterCommit registers fn to run after the transaction carried by ctx
// commits. Outside a transaction fn runs immediately.
func (m *TxManager) AfterCommit(ctx context.Context, fn func()) {
	AfterCommit(ctx, fn)
}

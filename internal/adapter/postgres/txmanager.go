package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner starts transactions. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxManager runs read paths inside a single read-only snapshot so that the
// precomputed configs and the content rows of one resolution agree.
// Nested RunInTx calls are NOT supported.
type TxManager struct {
	db   TxBeginner
	opts pgx.TxOptions
}

// NewTxManager creates a TxManager using REPEATABLE READ, READ ONLY transactions.
func NewTxManager(db TxBeginner) *TxManager {
	return &TxManager{
		db: db,
		opts: pgx.TxOptions{
			IsoLevel:   pgx.RepeatableRead,
			AccessMode: pgx.ReadOnly,
		},
	}
}

// RunInTx executes fn within a transaction.
// On success: commits.
// On error from fn: rolls back and returns the error.
// On panic from fn: rolls back and re-panics.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		return MapError(fmt.Errorf("begin transaction: %w", err), "tx", "begin")
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %w)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return MapError(fmt.Errorf("commit transaction: %w", err), "tx", "commit")
	}

	return nil
}

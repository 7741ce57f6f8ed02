package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Executor is the query surface shared by *sql.DB and *sql.Tx, letting a
// repository run either standalone or inside a caller's transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// beginner is implemented by *sql.DB.
type beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// InTx runs fn in a transaction. When ex can begin one (a *sql.DB), fn gets a
// fresh *sql.Tx that is committed on a nil return and rolled back otherwise.
// When ex is already a transaction, fn runs on it directly and the outer
// caller owns commit and rollback.
//
// With a single pooled connection, fn must use only the Executor it is given.
func InTx(ctx context.Context, ex Executor, fn func(Executor) error) error {
	b, ok := ex.(beginner)
	if !ok {
		return fn(ex)
	}

	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rolling back transaction: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

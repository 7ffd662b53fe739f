// Package dbx holds the small database plumbing shared by all repositories:
// the DBTX handle interface and a transaction wrapper.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql the repositories need. Both *sql.DB and
// *sql.Tx satisfy it, so a repository bound to a DBTX runs equally well
// standalone or inside a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with the transactional handle, and
// commits on success or rolls back on error. A panic inside fn rolls back
// and is rethrown.
//
// The dispatch path relies on this shape: a row lock taken inside fn is held
// until the commit here, never released early.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Querier is the common interface for DB and Tx.
// Model factory functions accept this so that queries work with both.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	dialect() Dialect
}

// Logger is the interface for query logging.
type Logger interface {
	Log(ctx context.Context, query string, args ...any)
}

// session is the state DB and Tx share: how to write SQL and where to log it.
type session struct {
	d      Dialect
	logger Logger
}

func (s session) log(ctx context.Context, query string, args []any) {
	if s.logger != nil {
		s.logger.Log(ctx, query, args...)
	}
}

func (s session) dialect() Dialect { return s.d }

// DB wraps *sql.DB with a Dialect and satisfies Querier.
type DB struct {
	session
	raw *sql.DB
}

// New wraps a *sql.DB with the given Dialect.
func New(db *sql.DB, d Dialect) *DB {
	return &DB{session: session{d: d}, raw: db}
}

// Debug returns a *DB sharing the same pool that logs every query, including
// those run inside transactions it starts, through l.
func (db *DB) Debug(l Logger) *DB {
	return &DB{session: session{d: db.d, logger: l}, raw: db.raw}
}

// Dialect reports the dialect the DB was opened with.
func (db *DB) Dialect() Dialect { return db.d }

// SQL returns the wrapped *sql.DB, e.g. for running migrations.
func (db *DB) SQL() *sql.DB { return db.raw }

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db.log(ctx, query, args)
	return db.raw.QueryContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db.log(ctx, query, args)
	return db.raw.ExecContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

// Begin starts a transaction. opts may be nil for the driver defaults.
func (db *DB) Begin(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.raw.BeginTx(ctx, opts)
	if err != nil {
		return nil, err //nolint:wrapcheck // thin wrapper
	}
	return &Tx{session: db.session, raw: tx}, nil
}

// Transaction runs fn in a transaction with the driver's default options.
// See TransactionWith.
func (db *DB) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	return db.TransactionWith(ctx, nil, fn)
}

// TransactionWith runs fn in a transaction started with opts.
// If fn returns nil the transaction is committed. If fn returns an error
// or panics it is rolled back, so no statement issued through tx is
// observable afterwards; fn's error is returned unchanged. A failed commit
// is returned as is, so callers can still match driver errors.
func (db *DB) TransactionWith(ctx context.Context, opts *sql.TxOptions, fn func(tx *Tx) error) (err error) {
	tx, err := db.Begin(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("orm: rollback: %w", rbErr))
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the underlying *sql.DB.
func (db *DB) Close() error { return db.raw.Close() } //nolint:wrapcheck // thin wrapper

// Tx wraps *sql.Tx with a Dialect and satisfies Querier.
type Tx struct {
	session
	raw *sql.Tx
}

func (tx *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	tx.log(ctx, query, args)
	return tx.raw.QueryContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx.log(ctx, query, args)
	return tx.raw.ExecContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

// Commit commits the transaction.
func (tx *Tx) Commit() error { return tx.raw.Commit() } //nolint:wrapcheck // thin wrapper

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error { return tx.raw.Rollback() } //nolint:wrapcheck // thin wrapper

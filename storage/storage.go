// Package storage opens the relational database behind the store and keeps
// its schema current. It is the only package that knows about concrete
// database drivers.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mickamy/reviewdb/orm"
)

// Config selects the database to open.
type Config struct {
	// Dialect is "sqlite", "mysql" or "postgres".
	Dialect string
	// DSN is the driver-specific data source name. For SQLite it is a file
	// path or ":memory:"; foreign key enforcement is switched on for every
	// connection.
	DSN string
}

// DefaultConfig opens a SQLite file in the working directory.
func DefaultConfig() Config {
	return Config{Dialect: "sqlite", DSN: "reviewdb.sqlite"}
}

// Open connects to the database described by cfg. The connection is not
// verified; call Ping or Migrate to surface connection errors.
func Open(cfg Config) (*orm.DB, error) {
	d, err := orm.DialectByName(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, errors.New("storage: DSN is required")
	}

	var sqlDB *sql.DB
	switch d {
	case orm.MySQL:
		sqlDB, err = sql.Open("mysql", cfg.DSN)
	case orm.PostgreSQL:
		sqlDB, err = sql.Open("pgx", cfg.DSN)
	case orm.SQLite:
		sqlDB, err = sql.Open("sqlite", sqliteDSN(cfg.DSN))
		if err == nil && strings.Contains(cfg.DSN, ":memory:") {
			// Every connection to :memory: is a separate database.
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", d.Name(), err)
	}
	return orm.New(sqlDB, d), nil
}

// sqliteDSN switches on foreign key enforcement and makes write
// transactions take the write lock at BEGIN. A deferred transaction that
// reads before writing gets SQLITE_BUSY without waiting when another writer
// holds the lock; BEGIN IMMEDIATE waits up to busy_timeout instead.
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_txlock") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// ReadTxOptions returns the options for multi-statement read transactions
// on d: a read-only snapshot where the engine offers one. SQLite
// transactions are already serializable, so it gets the driver default.
func ReadTxOptions(d orm.Dialect) *sql.TxOptions {
	switch d {
	case orm.MySQL, orm.PostgreSQL:
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	default:
		return nil
	}
}

// IsForeignKeyViolation reports whether err is a foreign key constraint
// failure from any of the supported drivers: a child row referencing a
// missing parent, or a parent deleted while children still reference it.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// ER_ROW_IS_REFERENCED_2, ER_NO_REFERENCED_ROW_2
		return myErr.Number == 1451 || myErr.Number == 1452
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "FOREIGN KEY")
	}

	return false
}

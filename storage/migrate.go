package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/mickamy/reviewdb/orm"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending schema migration for the DB's dialect.
// It uses a goose Provider rather than goose's package-level state, so
// several databases can be migrated concurrently (e.g. parallel tests).
func Migrate(ctx context.Context, db *orm.DB) error {
	p, err := newProvider(db)
	if err != nil {
		return err
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("storage: migrate up: %w", err)
	}
	return nil
}

// SchemaVersion returns the version of the most recently applied migration.
func SchemaVersion(ctx context.Context, db *orm.DB) (int64, error) {
	p, err := newProvider(db)
	if err != nil {
		return 0, err
	}
	v, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("storage: schema version: %w", err)
	}
	return v, nil
}

func newProvider(db *orm.DB) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch db.Dialect() {
	case orm.MySQL:
		dialect = goose.DialectMySQL
	case orm.PostgreSQL:
		dialect = goose.DialectPostgres
	case orm.SQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("storage: no migrations for dialect %q", db.Dialect().Name())
	}

	fsys, err := fs.Sub(migrationsFS, "migrations/"+db.Dialect().Name())
	if err != nil {
		return nil, fmt.Errorf("storage: migrations: %w", err)
	}
	p, err := goose.NewProvider(dialect, db.SQL(), fsys)
	if err != nil {
		return nil, fmt.Errorf("storage: migrations: %w", err)
	}
	return p, nil
}

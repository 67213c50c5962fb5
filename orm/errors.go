package orm

import "errors"

var (
	// ErrNotFound is returned when a query expects exactly one row but finds none.
	ErrNotFound = errors.New("orm: not found")

	// ErrNoPrimaryKey is returned by Update when the row has no primary key value.
	ErrNoPrimaryKey = errors.New("orm: primary key value is required")

	// ErrUnguardedDelete is returned by Delete when no WHERE clause is set.
	ErrUnguardedDelete = errors.New("orm: Delete without WHERE clause is not allowed")
)

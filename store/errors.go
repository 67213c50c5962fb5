package store

import (
	"errors"
	"fmt"

	"github.com/mickamy/reviewdb/model"
	"github.com/mickamy/reviewdb/orm"
)

var (
	// ErrValidation is returned when input is rejected before reaching the database.
	ErrValidation = model.ErrValidation

	// ErrReferentialIntegrity is returned when a write would leave a foreign
	// key pointing at a missing row. The transaction is rolled back.
	ErrReferentialIntegrity = errors.New("store: referential integrity violated")

	// ErrNotFound is returned when a lookup by id finds no row.
	ErrNotFound = errors.New("store: not found")

	// ErrDataIntegrity is returned when stored rows break a relationship
	// invariant at read time. It indicates a bug, not bad input.
	ErrDataIntegrity = model.ErrDataIntegrity
)

// NotFoundError names the missing row. It matches ErrNotFound and
// orm.ErrNotFound.
type NotFoundError struct {
	Kind model.Kind
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: %s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func (e *NotFoundError) Is(target error) bool { return target == orm.ErrNotFound }

// ReferenceError describes a broken or blocking reference.
// It matches ErrReferentialIntegrity.
type ReferenceError struct {
	// Kind and ID identify the row being written or deleted.
	Kind model.Kind
	ID   int64
	// Column is the foreign key involved, e.g. "customer_id".
	Column string
	// Ref is the referenced id for a create, or the number of referencing
	// reviews for a restricted delete.
	Ref int64
	// Restricted is true when a delete was refused because reviews still
	// reference the row.
	Restricted bool
}

func (e *ReferenceError) Error() string {
	if e.Restricted {
		return fmt.Sprintf("store: %s %d is referenced by %d review(s) via %s", e.Kind, e.ID, e.Ref, e.Column)
	}
	return fmt.Sprintf("store: %s.%s = %d does not reference an existing row", e.Kind, e.Column, e.Ref)
}

func (e *ReferenceError) Unwrap() error { return ErrReferentialIntegrity }

func notFound(kind model.Kind, id int64) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func dataIntegrity(kind model.Kind, id int64, column string, ref int64) error {
	return fmt.Errorf("%w: %s %d: %s = %d does not resolve", ErrDataIntegrity, kind, id, column, ref)
}

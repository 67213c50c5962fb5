// Package store is the entity store for Customers, Items and Reviews.
//
// Every mutating call runs in a single database transaction: either all of
// its changes commit or none do. A Review can only be created against an
// existing Customer and Item, and its foreign keys never change afterwards.
//
// Reads never cache. The relationship helpers (ReviewsOfCustomer,
// CustomerOf, ...) and the association proxy (ItemsOf, CustomersOf) are
// computed from the reviews table on every call, so they always reflect
// the writes committed before the call.
//
// # Errors
//
//   - [ErrValidation] - input rejected before reaching the database
//   - [ErrReferentialIntegrity] - a foreign key would not resolve, or a
//     restricted delete still has reviews
//   - [ErrNotFound] - no row with that id
//   - [ErrDataIntegrity] - stored rows violate a relationship invariant
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mickamy/reviewdb/model"
	"github.com/mickamy/reviewdb/orm"
	"github.com/mickamy/reviewdb/storage"
)

// Store provides CRUD and relationship reads over one database.
// It holds no state besides its handles and is safe for concurrent use.
type Store struct {
	db       *orm.DB
	config   Config
	logger   zerolog.Logger
	readOpts *sql.TxOptions
}

// New creates a Store over db. Pass zerolog.Nop() to disable logging.
func New(db *orm.DB, cfg Config, logger zerolog.Logger) *Store {
	cfg.validate()
	return &Store{
		db:       db,
		config:   cfg,
		logger:   logger.With().Str("component", "store").Logger(),
		readOpts: storage.ReadTxOptions(db.Dialect()),
	}
}

// Config returns the effective configuration.
func (s *Store) Config() Config { return s.config }

// write runs fn in a transaction. The context handed to fn carries a
// logger tagged with a fresh tx_id. Foreign key violations reported by the
// database are surfaced as ErrReferentialIntegrity.
func (s *Store) write(ctx context.Context, op string, fn func(ctx context.Context, tx *orm.Tx) error) error {
	logger := s.logger.With().Str("op", op).Str("tx_id", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)

	err := s.db.Transaction(ctx, func(tx *orm.Tx) error {
		return fn(ctx, tx)
	})
	switch {
	case err == nil:
		logger.Debug().Msg("committed")
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		logger.Debug().Err(err).Msg("rolled back")
	case errors.Is(err, ErrReferentialIntegrity):
		logger.Warn().Err(err).Msg("rolled back")
	case storage.IsForeignKeyViolation(err):
		logger.Warn().Err(err).Msg("rolled back")
		return errors.Join(ErrReferentialIntegrity, err)
	default:
		logger.Error().Err(err).Msg("rolled back")
	}
	return err
}

// read runs fn in a read-only snapshot transaction, so multi-statement
// reads see a single committed state.
func (s *Store) read(ctx context.Context, fn func(ctx context.Context, tx *orm.Tx) error) error {
	err := s.db.TransactionWith(ctx, s.readOpts, func(tx *orm.Tx) error {
		return fn(ctx, tx)
	})
	if errors.Is(err, ErrDataIntegrity) {
		s.logger.Error().Err(err).Msg("data integrity violated")
	}
	return err
}

// Count returns the number of stored rows of the given kind.
func (s *Store) Count(ctx context.Context, kind model.Kind) (int64, error) {
	switch kind {
	case model.KindCustomer:
		return model.Customers(s.db).Count(ctx)
	case model.KindItem:
		return model.Items(s.db).Count(ctx)
	case model.KindReview:
		return model.Reviews(s.db).Count(ctx)
	default:
		return 0, unknownKind(kind)
	}
}

func unknownKind(kind model.Kind) error {
	return &model.FieldError{Kind: kind, Field: "kind", Reason: "is not a known entity kind"}
}

// exists reports whether a row with id exists in the table for kind.
func exists(ctx context.Context, q orm.Querier, kind model.Kind, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	switch kind {
	case model.KindCustomer:
		return model.Customers(q).Where("id = ?", id).Exists(ctx)
	case model.KindItem:
		return model.Items(q).Where("id = ?", id).Exists(ctx)
	case model.KindReview:
		return model.Reviews(q).Where("id = ?", id).Exists(ctx)
	default:
		return false, unknownKind(kind)
	}
}

func mustExist(ctx context.Context, q orm.Querier, kind model.Kind, id int64) error {
	ok, err := exists(ctx, q, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(kind, id)
	}
	return nil
}

package store

import (
	"context"
	"errors"

	"github.com/mickamy/reviewdb/model"
	"github.com/mickamy/reviewdb/orm"
	"github.com/mickamy/reviewdb/scope"
)

// ReviewsOfCustomer returns the Reviews written by a Customer, oldest
// first. Extra scopes (e.g. scope.Limit) narrow the result.
func (s *Store) ReviewsOfCustomer(ctx context.Context, customerID int64, scopes ...scope.Scope) ([]model.Review, error) {
	return s.reviewsOf(ctx, model.KindCustomer, model.ReviewCustomerFK, customerID, scopes)
}

// ReviewsOfItem returns the Reviews of an Item, oldest first.
func (s *Store) ReviewsOfItem(ctx context.Context, itemID int64, scopes ...scope.Scope) ([]model.Review, error) {
	return s.reviewsOf(ctx, model.KindItem, model.ReviewItemFK, itemID, scopes)
}

func (s *Store) reviewsOf(ctx context.Context, kind model.Kind, column string, id int64, scopes []scope.Scope) ([]model.Review, error) {
	var reviews []model.Review
	err := s.read(ctx, func(ctx context.Context, tx *orm.Tx) error {
		if err := mustExist(ctx, tx, kind, id); err != nil {
			return err
		}
		var err error
		reviews, err = model.Reviews(tx).
			Scopes(scope.Eq(column, id)).
			Scopes(scopes...).
			OrderBy("id").
			All(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// CustomerOf returns the Customer r.CustomerID refers to. A key that no
// longer resolves fails with ErrDataIntegrity.
func (s *Store) CustomerOf(ctx context.Context, r model.Review) (model.Customer, error) {
	c, err := model.Customers(s.db).Where("id = ?", r.CustomerID).First(ctx)
	if errors.Is(err, orm.ErrNotFound) {
		return model.Customer{}, s.dangling(r, model.ReviewCustomerFK, r.CustomerID)
	}
	return c, err
}

// ItemOf returns the Item r.ItemID refers to.
func (s *Store) ItemOf(ctx context.Context, r model.Review) (model.Item, error) {
	i, err := model.Items(s.db).Where("id = ?", r.ItemID).First(ctx)
	if errors.Is(err, orm.ErrNotFound) {
		return model.Item{}, s.dangling(r, model.ReviewItemFK, r.ItemID)
	}
	return i, err
}

// LoadReview returns the Review with the given id with its Customer and
// Item loaded from the same snapshot.
func (s *Store) LoadReview(ctx context.Context, id int64) (model.Review, error) {
	var r model.Review
	err := s.read(ctx, func(ctx context.Context, tx *orm.Tx) error {
		var err error
		r, err = first(ctx,
			model.Reviews(tx).Where("id = ?", id).Preload("Customer").Preload("Item"),
			model.KindReview, id)
		return err
	})
	return r, err
}

// LoadCustomer returns the Customer with its Reviews (oldest first) and
// the distinct Items it reviewed, all read from one snapshot.
func (s *Store) LoadCustomer(ctx context.Context, id int64) (model.Customer, error) {
	var c model.Customer
	err := s.read(ctx, func(ctx context.Context, tx *orm.Tx) error {
		var err error
		c, err = first(ctx,
			model.Customers(tx).Where("id = ?", id).Preload("Reviews").Preload("Items"),
			model.KindCustomer, id)
		return err
	})
	return c, err
}

// LoadItem returns the Item with its Reviews and the distinct Customers
// who reviewed it.
func (s *Store) LoadItem(ctx context.Context, id int64) (model.Item, error) {
	var i model.Item
	err := s.read(ctx, func(ctx context.Context, tx *orm.Tx) error {
		var err error
		i, err = first(ctx,
			model.Items(tx).Where("id = ?", id).Preload("Reviews").Preload("Customers"),
			model.KindItem, id)
		return err
	})
	return i, err
}

func (s *Store) dangling(r model.Review, column string, ref int64) error {
	err := dataIntegrity(model.KindReview, r.ID, column, ref)
	s.logger.Error().Err(err).Stringer("kind", model.KindReview).Int64("id", r.ID).Msg("dangling reference")
	return err
}

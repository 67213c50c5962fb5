package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mickamy/reviewdb/model"
	"github.com/mickamy/reviewdb/orm"
)

// --- Create ---

// CreateCustomer inserts c and sets c.ID to the assigned id.
func (s *Store) CreateCustomer(ctx context.Context, c *model.Customer) error {
	if err := checkNew(c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	err := s.write(ctx, "create_customer", func(ctx context.Context, tx *orm.Tx) error {
		if err := model.Customers(tx).Create(ctx, c); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Debug().Stringer("kind", model.KindCustomer).Int64("id", c.ID).Msg("created")
		return nil
	})
	if err != nil {
		c.ID = 0
	}
	return err
}

// CreateItem inserts i and sets i.ID to the assigned id.
func (s *Store) CreateItem(ctx context.Context, i *model.Item) error {
	if err := checkNew(i); err != nil {
		return err
	}
	if err := i.Validate(); err != nil {
		return err
	}
	err := s.write(ctx, "create_item", func(ctx context.Context, tx *orm.Tx) error {
		if err := model.Items(tx).Create(ctx, i); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Debug().Stringer("kind", model.KindItem).Int64("id", i.ID).Msg("created")
		return nil
	})
	if err != nil {
		i.ID = 0
	}
	return err
}

// CreateReview inserts r and sets r.ID to the assigned id. Both the
// Customer and the Item it references must already exist; otherwise
// nothing is written and a *ReferenceError is returned.
func (s *Store) CreateReview(ctx context.Context, r *model.Review) error {
	if err := checkNew(r); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	err := s.write(ctx, "create_review", func(ctx context.Context, tx *orm.Tx) error {
		if err := checkReference(ctx, tx, model.KindCustomer, model.ReviewCustomerFK, r.CustomerID); err != nil {
			return err
		}
		if err := checkReference(ctx, tx, model.KindItem, model.ReviewItemFK, r.ItemID); err != nil {
			return err
		}
		if err := model.Reviews(tx).Create(ctx, r); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Debug().
			Stringer("kind", model.KindReview).
			Int64("id", r.ID).
			Int64(model.ReviewCustomerFK, r.CustomerID).
			Int64(model.ReviewItemFK, r.ItemID).
			Msg("created")
		return nil
	})
	if err != nil {
		// The row was rolled back; do not hand out its id.
		r.ID = 0
	}
	return err
}

func checkNew(e model.Entity) error {
	if e.PrimaryKey() != 0 {
		return &model.FieldError{Kind: e.Kind(), Field: "id", Reason: "is assigned by the store"}
	}
	return nil
}

func checkReference(ctx context.Context, q orm.Querier, kind model.Kind, column string, id int64) error {
	ok, err := exists(ctx, q, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Kind: model.KindReview, Column: column, Ref: id}
	}
	return nil
}

// --- Get ---

// GetCustomer returns the Customer with the given id.
func (s *Store) GetCustomer(ctx context.Context, id int64) (model.Customer, error) {
	return first(ctx, model.Customers(s.db).Where("id = ?", id), model.KindCustomer, id)
}

// GetItem returns the Item with the given id.
func (s *Store) GetItem(ctx context.Context, id int64) (model.Item, error) {
	return first(ctx, model.Items(s.db).Where("id = ?", id), model.KindItem, id)
}

// GetReview returns the Review with the given id. Its Customer and Item
// fields are left nil; see LoadReview.
func (s *Store) GetReview(ctx context.Context, id int64) (model.Review, error) {
	return first(ctx, model.Reviews(s.db).Where("id = ?", id), model.KindReview, id)
}

// Get looks up an entity by kind and id.
func (s *Store) Get(ctx context.Context, kind model.Kind, id int64) (model.Entity, error) {
	switch kind {
	case model.KindCustomer:
		return s.GetCustomer(ctx, id)
	case model.KindItem:
		return s.GetItem(ctx, id)
	case model.KindReview:
		return s.GetReview(ctx, id)
	default:
		return nil, unknownKind(kind)
	}
}

func first[T any](ctx context.Context, q *orm.Query[T], kind model.Kind, id int64) (T, error) {
	v, err := q.First(ctx)
	if errors.Is(err, orm.ErrNotFound) {
		return v, notFound(kind, id)
	}
	return v, err
}

// --- Update ---

// UpdateCustomer overwrites every stored field of c.
func (s *Store) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.write(ctx, "update_customer", func(ctx context.Context, tx *orm.Tx) error {
		if err := mustExist(ctx, tx, model.KindCustomer, c.ID); err != nil {
			return err
		}
		return model.Customers(tx).Update(ctx, c)
	})
}

// UpdateItem overwrites every stored field of i.
func (s *Store) UpdateItem(ctx context.Context, i *model.Item) error {
	if err := i.Validate(); err != nil {
		return err
	}
	return s.write(ctx, "update_item", func(ctx context.Context, tx *orm.Tx) error {
		if err := mustExist(ctx, tx, model.KindItem, i.ID); err != nil {
			return err
		}
		return model.Items(tx).Update(ctx, i)
	})
}

// UpdateReview stores r's comment. A Review's customer_id and item_id are
// fixed at creation; passing different values fails with ErrValidation.
func (s *Store) UpdateReview(ctx context.Context, r *model.Review) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.write(ctx, "update_review", func(ctx context.Context, tx *orm.Tx) error {
		cur, err := first(ctx, model.Reviews(tx).Where("id = ?", r.ID), model.KindReview, r.ID)
		if err != nil {
			return err
		}
		if cur.CustomerID != r.CustomerID {
			return &model.FieldError{Kind: model.KindReview, Field: model.ReviewCustomerFK, Reason: "cannot be changed"}
		}
		if cur.ItemID != r.ItemID {
			return &model.FieldError{Kind: model.KindReview, Field: model.ReviewItemFK, Reason: "cannot be changed"}
		}
		return model.Reviews(tx).Update(ctx, r)
	})
}

// --- Delete ---

// DeleteCustomer removes the Customer with the given id. What happens to
// its Reviews is decided by Config.DeletePolicy.
func (s *Store) DeleteCustomer(ctx context.Context, id int64) error {
	return s.write(ctx, "delete_customer", func(ctx context.Context, tx *orm.Tx) error {
		if err := s.releaseReviews(ctx, tx, model.KindCustomer, model.ReviewCustomerFK, id); err != nil {
			return err
		}
		return deleteRow(ctx, model.Customers(tx).Where("id = ?", id), model.KindCustomer, id)
	})
}

// DeleteItem removes the Item with the given id. What happens to its
// Reviews is decided by Config.DeletePolicy.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.write(ctx, "delete_item", func(ctx context.Context, tx *orm.Tx) error {
		if err := s.releaseReviews(ctx, tx, model.KindItem, model.ReviewItemFK, id); err != nil {
			return err
		}
		return deleteRow(ctx, model.Items(tx).Where("id = ?", id), model.KindItem, id)
	})
}

// DeleteReview removes the Review with the given id.
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	return s.write(ctx, "delete_review", func(ctx context.Context, tx *orm.Tx) error {
		return deleteRow(ctx, model.Reviews(tx).Where("id = ?", id), model.KindReview, id)
	})
}

// Delete removes an entity by kind and id.
func (s *Store) Delete(ctx context.Context, kind model.Kind, id int64) error {
	switch kind {
	case model.KindCustomer:
		return s.DeleteCustomer(ctx, id)
	case model.KindItem:
		return s.DeleteItem(ctx, id)
	case model.KindReview:
		return s.DeleteReview(ctx, id)
	default:
		return unknownKind(kind)
	}
}

// releaseReviews applies the delete policy to the reviews whose column
// references id.
func (s *Store) releaseReviews(ctx context.Context, tx *orm.Tx, kind model.Kind, column string, id int64) error {
	reviews := model.Reviews(tx).Where(column+" = ?", id)
	switch s.config.DeletePolicy {
	case DeleteCascade:
		n, err := reviews.Delete(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			zerolog.Ctx(ctx).Debug().Stringer("kind", kind).Int64("id", id).Int64("reviews", n).Msg("cascaded")
		}
		return nil
	default:
		n, err := reviews.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return &ReferenceError{Kind: kind, ID: id, Column: column, Ref: n, Restricted: true}
		}
		return nil
	}
}

func deleteRow[T any](ctx context.Context, q *orm.Query[T], kind model.Kind, id int64) error {
	n, err := q.Delete(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	zerolog.Ctx(ctx).Debug().Stringer("kind", kind).Int64("id", id).Msg("deleted")
	return nil
}

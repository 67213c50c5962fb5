package store

import (
	"context"

	"github.com/mickamy/reviewdb/model"
	"github.com/mickamy/reviewdb/orm"
	"github.com/mickamy/reviewdb/scope"
)

// ItemsOf returns the distinct Items a Customer has reviewed, in the order
// of the Customer's first Review of each. It is read from the reviews
// table on every call and never cached: an Item is in the result exactly
// when a Review with this customer_id and its item_id exists.
func (s *Store) ItemsOf(ctx context.Context, customerID int64) ([]model.Item, error) {
	var items []model.Item
	err := s.read(ctx, func(ctx context.Context, tx *orm.Tx) error {
		var err error
		items, err = associated(ctx, tx, model.KindCustomer, customerID, model.CustomerItems, model.Items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CustomersOf returns the distinct Customers who reviewed an Item.
func (s *Store) CustomersOf(ctx context.Context, itemID int64) ([]model.Customer, error) {
	var customers []model.Customer
	err := s.read(ctx, func(ctx context.Context, tx *orm.Tx) error {
		var err error
		customers, err = associated(ctx, tx, model.KindItem, itemID, model.ItemCustomers, model.Customers)
		return err
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// HasItem reports whether the Customer has reviewed the Item at least once.
func (s *Store) HasItem(ctx context.Context, customerID, itemID int64) (bool, error) {
	return linked(ctx, s.db, customerID, itemID)
}

// HasCustomer reports whether the Item has been reviewed by the Customer.
func (s *Store) HasCustomer(ctx context.Context, itemID, customerID int64) (bool, error) {
	return linked(ctx, s.db, customerID, itemID)
}

func linked(ctx context.Context, q orm.Querier, customerID, itemID int64) (bool, error) {
	return model.Reviews(q).
		Scopes(scope.Eq(model.ReviewCustomerFK, customerID), scope.Eq(model.ReviewItemFK, itemID)).
		Exists(ctx)
}

// associated follows jt from the owner to its distinct targets. Only the
// owner's join rows are read.
func associated[T model.Entity](
	ctx context.Context,
	tx *orm.Tx,
	ownerKind model.Kind,
	ownerID int64,
	jt orm.JoinTable,
	targets func(orm.Querier) *orm.Query[T],
) ([]T, error) {
	if err := mustExist(ctx, tx, ownerKind, ownerID); err != nil {
		return nil, err
	}
	pairs, err := orm.QueryJoinTable[int64, int64](ctx, tx, jt, []int64{ownerID})
	if err != nil {
		return nil, err
	}
	ids := orm.UniqueTargets(pairs)
	if len(ids) == 0 {
		return []T{}, nil
	}

	rows, err := targets(tx).Scopes(scope.In("id", ids)).All(ctx)
	if err != nil {
		return nil, err
	}
	byPK := make(map[int64]T, len(rows))
	for _, r := range rows {
		byPK[r.PrimaryKey()] = r
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		v, ok := byPK[id]
		if !ok {
			return nil, dataIntegrity(ownerKind, ownerID, jt.Target, id)
		}
		out = append(out, v)
	}
	return out, nil
}

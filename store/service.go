package store

import (
	"context"

	"github.com/mickamy/reviewdb/model"
)

// Service is the record-level boundary over a Store: it accepts and
// returns flat model.Records rather than entities, for callers such as a
// request handler that speak a wire format.
type Service struct {
	store *Store
}

// NewService wraps s.
func NewService(s *Store) *Service {
	return &Service{store: s}
}

// CreateCustomer decodes rec, stores the Customer and returns its Record
// with the assigned id.
func (svc *Service) CreateCustomer(ctx context.Context, rec model.Record) (model.Record, error) {
	c, err := model.DecodeCustomer(rec)
	if err != nil {
		return nil, err
	}
	if err := svc.store.CreateCustomer(ctx, &c); err != nil {
		return nil, err
	}
	return model.Serialize(c)
}

// CreateItem decodes rec, stores the Item and returns its Record.
func (svc *Service) CreateItem(ctx context.Context, rec model.Record) (model.Record, error) {
	i, err := model.DecodeItem(rec)
	if err != nil {
		return nil, err
	}
	if err := svc.store.CreateItem(ctx, &i); err != nil {
		return nil, err
	}
	return model.Serialize(i)
}

// CreateReview decodes rec, stores the Review and returns its Record.
func (svc *Service) CreateReview(ctx context.Context, rec model.Record) (model.Record, error) {
	r, err := model.DecodeReview(rec)
	if err != nil {
		return nil, err
	}
	if err := svc.store.CreateReview(ctx, &r); err != nil {
		return nil, err
	}
	return model.Serialize(r)
}

// Lookup returns the Record of the entity with the given kind and id. A
// missing row fails with ErrNotFound; it never yields an empty Record.
func (svc *Service) Lookup(ctx context.Context, kind model.Kind, id int64) (model.Record, error) {
	e, err := svc.store.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return model.Serialize(e)
}

// ItemsOf returns the Records of the distinct Items a Customer reviewed.
func (svc *Service) ItemsOf(ctx context.Context, customerID int64) ([]model.Record, error) {
	items, err := svc.store.ItemsOf(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return model.SerializeAll(items)
}

// CustomersOf returns the Records of the distinct Customers who reviewed an Item.
func (svc *Service) CustomersOf(ctx context.Context, itemID int64) ([]model.Record, error) {
	customers, err := svc.store.CustomersOf(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return model.SerializeAll(customers)
}

// ReviewsOfCustomer returns the Records of a Customer's Reviews, oldest first.
func (svc *Service) ReviewsOfCustomer(ctx context.Context, customerID int64) ([]model.Record, error) {
	reviews, err := svc.store.ReviewsOfCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return model.SerializeAll(reviews)
}

// ReviewsOfItem returns the Records of an Item's Reviews, oldest first.
func (svc *Service) ReviewsOfItem(ctx context.Context, itemID int64) ([]model.Record, error) {
	reviews, err := svc.store.ReviewsOfItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return model.SerializeAll(reviews)
}

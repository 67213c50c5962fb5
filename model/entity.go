// Package model defines the Customer, Item and Review entities, their row
// mappings for the orm query builder, and their flat wire representation.
package model

// Kind names an entity type.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindItem     Kind = "item"
	KindReview   Kind = "review"
)

// Kinds lists every entity kind in dependency order: parents before the
// Review rows that reference them.
var Kinds = []Kind{KindCustomer, KindItem, KindReview}

func (k Kind) String() string { return string(k) }

// Entity is implemented by Customer, Item and Review.
type Entity interface {
	Kind() Kind
	PrimaryKey() int64
}

var (
	_ Entity = Customer{}
	_ Entity = Item{}
	_ Entity = Review{}
)

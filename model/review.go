package model

import (
	"context"
	"database/sql"

	"github.com/mickamy/reviewdb/internal/naming"
	"github.com/mickamy/reviewdb/orm"
	"github.com/mickamy/reviewdb/scope"
)

// Review records that a Customer reviewed an Item. CustomerID and ItemID
// are set once at creation and never change; the same pair may appear in
// any number of Reviews.
type Review struct {
	ID         int64
	Comment    *string
	CustomerID int64
	ItemID     int64

	Customer *Customer // belongs_to via customer_id
	Item     *Item     // belongs_to via item_id
}

func (Review) Kind() Kind { return KindReview }

func (r Review) PrimaryKey() int64 { return r.ID }

func (r *Review) setPrimaryKey(id int64) { r.ID = id }

// Comment returns a pointer to s, for filling Review.Comment.
func Comment(s string) *string { return &s }

// Validate checks the fields required before a Review reaches the store.
// Whether the referenced rows exist is checked by the store.
func (r Review) Validate() error {
	if r.CustomerID <= 0 {
		return fieldError(KindReview, ReviewCustomerFK, "is required")
	}
	if r.ItemID <= 0 {
		return fieldError(KindReview, ReviewItemFK, "is required")
	}
	return nil
}

var (
	// ReviewCustomerFK is the reviews column referencing customers.id.
	ReviewCustomerFK = naming.ForeignKey("Customer")
	// ReviewItemFK is the reviews column referencing items.id.
	ReviewItemFK = naming.ForeignKey("Item")

	// CustomerItems reads the reviews table as a customer → item join table.
	CustomerItems = orm.JoinTable{
		Name:   naming.TableName("Review"),
		Source: ReviewCustomerFK,
		Target: ReviewItemFK,
		Order:  "id",
	}
	// ItemCustomers reads the reviews table as an item → customer join table.
	ItemCustomers = CustomerItems.Reverse()
)

var reviewsTable = &orm.Table[Review]{
	Name:    naming.TableName("Review"),
	Columns: []string{"id", "comment", ReviewCustomerFK, ReviewItemFK},
	PK:      "id",
	Scan:    scanReview,
	Values:  reviewColumnValuePairs,
	SetPK:   (*Review).setPrimaryKey,
}

// Reviews returns a new Query for the reviews table.
// Preloads: "Customer", "Item".
func Reviews(db orm.Querier) *orm.Query[Review] {
	q := orm.NewQuery(db, reviewsTable)
	q.RegisterPreloader("Customer", preloadReviewCustomer)
	q.RegisterPreloader("Item", preloadReviewItem)
	return q
}

func scanReview(rows *sql.Rows) (Review, error) {
	cols, _ := rows.Columns()
	var v Review
	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case "id":
			dest[i] = &v.ID
		case "comment":
			dest[i] = &v.Comment
		case ReviewCustomerFK:
			dest[i] = &v.CustomerID
		case ReviewItemFK:
			dest[i] = &v.ItemID
		default:
			dest[i] = new(any)
		}
	}
	err := rows.Scan(dest...)
	return v, err
}

func reviewColumnValuePairs(v *Review, includesPK bool) ([]string, []any) {
	if includesPK {
		return []string{"id", "comment", ReviewCustomerFK, ReviewItemFK},
			[]any{v.ID, v.Comment, v.CustomerID, v.ItemID}
	}
	return []string{"comment", ReviewCustomerFK, ReviewItemFK},
		[]any{v.Comment, v.CustomerID, v.ItemID}
}

func preloadReviewCustomer(ctx context.Context, db orm.Querier, results []Review) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int64, len(results))
	for i := range results {
		ids[i] = results[i].CustomerID
	}
	related, err := Customers(db).Scopes(scope.In("id", ids)).All(ctx)
	if err != nil {
		return err
	}
	byPK := make(map[int64]*Customer, len(related))
	for i := range related {
		byPK[related[i].ID] = &related[i]
	}
	for i := range results {
		c, ok := byPK[results[i].CustomerID]
		if !ok {
			return integrityError("review %d references missing customer %d", results[i].ID, results[i].CustomerID)
		}
		results[i].Customer = c
	}
	return nil
}

func preloadReviewItem(ctx context.Context, db orm.Querier, results []Review) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int64, len(results))
	for i := range results {
		ids[i] = results[i].ItemID
	}
	related, err := Items(db).Scopes(scope.In("id", ids)).All(ctx)
	if err != nil {
		return err
	}
	byPK := make(map[int64]*Item, len(related))
	for i := range related {
		byPK[related[i].ID] = &related[i]
	}
	for i := range results {
		it, ok := byPK[results[i].ItemID]
		if !ok {
			return integrityError("review %d references missing item %d", results[i].ID, results[i].ItemID)
		}
		results[i].Item = it
	}
	return nil
}

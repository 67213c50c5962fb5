package model

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mickamy/reviewdb/internal/naming"
	"github.com/mickamy/reviewdb/orm"
	"github.com/mickamy/reviewdb/scope"
)

// Customer writes Reviews. Reviews and Items are navigation fields filled
// only by Preload; they are never stored or serialized.
type Customer struct {
	ID   int64
	Name string

	Reviews []Review // has_many through reviews.customer_id
	Items   []Item   // many_to_many through reviews
}

func (Customer) Kind() Kind { return KindCustomer }

func (c Customer) PrimaryKey() int64 { return c.ID }

func (c *Customer) setPrimaryKey(id int64) { c.ID = id }

// Validate checks the fields required before a Customer reaches the store.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fieldError(KindCustomer, "name", "is required")
	}
	return nil
}

var customersTable = &orm.Table[Customer]{
	Name:    naming.TableName("Customer"),
	Columns: []string{"id", "name"},
	PK:      "id",
	Scan:    scanCustomer,
	Values:  customerColumnValuePairs,
	SetPK:   (*Customer).setPrimaryKey,
}

// Customers returns a new Query for the customers table.
// Preloads: "Reviews", "Items".
func Customers(db orm.Querier) *orm.Query[Customer] {
	q := orm.NewQuery(db, customersTable)
	q.RegisterPreloader("Reviews", preloadCustomerReviews)
	q.RegisterPreloader("Items", preloadCustomerItems)
	return q
}

func scanCustomer(rows *sql.Rows) (Customer, error) {
	cols, _ := rows.Columns()
	var v Customer
	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case "id":
			dest[i] = &v.ID
		case "name":
			dest[i] = &v.Name
		default:
			dest[i] = new(any)
		}
	}
	err := rows.Scan(dest...)
	return v, err
}

func customerColumnValuePairs(v *Customer, includesPK bool) ([]string, []any) {
	if includesPK {
		return []string{"id", "name"}, []any{v.ID, v.Name}
	}
	return []string{"name"}, []any{v.Name}
}

func preloadCustomerReviews(ctx context.Context, db orm.Querier, results []Customer) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int64, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}
	related, err := Reviews(db).Scopes(scope.In(ReviewCustomerFK, ids), scope.OrderBy("id")).All(ctx)
	if err != nil {
		return err
	}
	byFK := make(map[int64][]Review)
	for _, r := range related {
		byFK[r.CustomerID] = append(byFK[r.CustomerID], r)
	}
	for i := range results {
		results[i].Reviews = byFK[results[i].ID]
	}
	return nil
}

func preloadCustomerItems(ctx context.Context, db orm.Querier, results []Customer) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int64, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}
	pairs, err := orm.QueryJoinTable[int64, int64](ctx, db, CustomerItems, ids)
	if err != nil {
		return err
	}
	related, err := Items(db).Scopes(scope.In("id", orm.UniqueTargets(pairs))).All(ctx)
	if err != nil {
		return err
	}
	byPK := make(map[int64]Item, len(related))
	for _, r := range related {
		byPK[r.ID] = r
	}
	grouped := orm.GroupBySource(pairs)
	for i := range results {
		tIDs := grouped[results[i].ID]
		items := make([]Item, 0, len(tIDs))
		for _, tid := range tIDs {
			v, ok := byPK[tid]
			if !ok {
				return integrityError("customer %d links to missing item %d", results[i].ID, tid)
			}
			items = append(items, v)
		}
		results[i].Items = items
	}
	return nil
}

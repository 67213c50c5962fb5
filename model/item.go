package model

import (
	"context"
	"database/sql"
	"math"
	"strings"

	"github.com/mickamy/reviewdb/internal/naming"
	"github.com/mickamy/reviewdb/orm"
	"github.com/mickamy/reviewdb/scope"
)

// Item is something Customers review. Price is optional.
type Item struct {
	ID    int64
	Name  string
	Price *float64

	Reviews   []Review   // has_many through reviews.item_id
	Customers []Customer // many_to_many through reviews
}

func (Item) Kind() Kind { return KindItem }

func (i Item) PrimaryKey() int64 { return i.ID }

func (i *Item) setPrimaryKey(id int64) { i.ID = id }

// Validate checks the fields required before an Item reaches the store.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fieldError(KindItem, "name", "is required")
	}
	if i.Price != nil {
		p := *i.Price
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fieldError(KindItem, "price", "must be a non-negative number")
		}
	}
	return nil
}

// Price returns a pointer to p, for filling Item.Price.
func Price(p float64) *float64 { return &p }

var itemsTable = &orm.Table[Item]{
	Name:    naming.TableName("Item"),
	Columns: []string{"id", "name", "price"},
	PK:      "id",
	Scan:    scanItem,
	Values:  itemColumnValuePairs,
	SetPK:   (*Item).setPrimaryKey,
}

// Items returns a new Query for the items table.
// Preloads: "Reviews", "Customers".
func Items(db orm.Querier) *orm.Query[Item] {
	q := orm.NewQuery(db, itemsTable)
	q.RegisterPreloader("Reviews", preloadItemReviews)
	q.RegisterPreloader("Customers", preloadItemCustomers)
	return q
}

func scanItem(rows *sql.Rows) (Item, error) {
	cols, _ := rows.Columns()
	var v Item
	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case "id":
			dest[i] = &v.ID
		case "name":
			dest[i] = &v.Name
		case "price":
			dest[i] = &v.Price
		default:
			dest[i] = new(any)
		}
	}
	err := rows.Scan(dest...)
	return v, err
}

func itemColumnValuePairs(v *Item, includesPK bool) ([]string, []any) {
	if includesPK {
		return []string{"id", "name", "price"}, []any{v.ID, v.Name, v.Price}
	}
	return []string{"name", "price"}, []any{v.Name, v.Price}
}

func preloadItemReviews(ctx context.Context, db orm.Querier, results []Item) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int64, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}
	related, err := Reviews(db).Scopes(scope.In(ReviewItemFK, ids), scope.OrderBy("id")).All(ctx)
	if err != nil {
		return err
	}
	byFK := make(map[int64][]Review)
	for _, r := range related {
		byFK[r.ItemID] = append(byFK[r.ItemID], r)
	}
	for i := range results {
		results[i].Reviews = byFK[results[i].ID]
	}
	return nil
}

func preloadItemCustomers(ctx context.Context, db orm.Querier, results []Item) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int64, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}
	pairs, err := orm.QueryJoinTable[int64, int64](ctx, db, ItemCustomers, ids)
	if err != nil {
		return err
	}
	related, err := Customers(db).Scopes(scope.In("id", orm.UniqueTargets(pairs))).All(ctx)
	if err != nil {
		return err
	}
	byPK := make(map[int64]Customer, len(related))
	for _, r := range related {
		byPK[r.ID] = r
	}
	grouped := orm.GroupBySource(pairs)
	for i := range results {
		tIDs := grouped[results[i].ID]
		customers := make([]Customer, 0, len(tIDs))
		for _, tid := range tIDs {
			v, ok := byPK[tid]
			if !ok {
				return integrityError("item %d links to missing customer %d", results[i].ID, tid)
			}
			customers = append(customers, v)
		}
		results[i].Customers = customers
	}
	return nil
}

package model_test

import (
	"errors"
	"maps"
	"slices"
	"testing"

	"github.com/mickamy/reviewdb/model"
)

func keys(rec model.Record) []string {
	return slices.Sorted(maps.Keys(rec))
}

func TestSerializeCustomer(t *testing.T) {
	t.Parallel()

	c := model.Customer{ID: 1, Name: "Phil"}
	got, err := model.Serialize(c)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if want := []string{"id", "name"}; !slices.Equal(keys(got), want) {
		t.Errorf("keys = %v, want %v", keys(got), want)
	}
	if got["id"] != int64(1) || got["name"] != "Phil" {
		t.Errorf("Serialize = %v", got)
	}
}

func TestSerializeItem(t *testing.T) {
	t.Parallel()

	i := &model.Item{ID: 2, Name: "Insulated Mug", Price: model.Price(9.99)}
	got, err := model.Serialize(i)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := model.Record{"id": int64(2), "name": "Insulated Mug", "price": 9.99}
	if !maps.Equal(got, want) {
		t.Errorf("Serialize = %v, want %v", got, want)
	}
}

func TestSerializeItemWithoutPrice(t *testing.T) {
	t.Parallel()

	got, err := model.Serialize(model.Item{ID: 3, Name: "Sample Item"})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	v, ok := got["price"]
	if !ok || v != nil {
		t.Errorf("price = %v (present %v), want nil", v, ok)
	}
}

func TestSerializeReview(t *testing.T) {
	t.Parallel()

	r := model.Review{ID: 4, Comment: model.Comment("great!"), CustomerID: 1, ItemID: 2}
	got, err := model.Serialize(r)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := model.Record{"id": int64(4), "comment": "great!", "customer_id": int64(1), "item_id": int64(2)}
	if !maps.Equal(got, want) {
		t.Errorf("Serialize = %v, want %v", got, want)
	}
}

func TestSerializeNeverNests(t *testing.T) {
	t.Parallel()

	c := &model.Customer{ID: 1, Name: "John Doe"}
	i := &model.Item{ID: 2, Name: "Sample Item"}
	r := model.Review{ID: 3, CustomerID: 1, ItemID: 2, Customer: c, Item: i}
	c.Reviews = []model.Review{r}
	c.Items = []model.Item{*i}
	i.Reviews = []model.Review{r}
	i.Customers = []model.Customer{*c}

	for _, e := range []model.Entity{c, i, r} {
		rec, err := model.Serialize(e)
		if err != nil {
			t.Fatalf("Serialize(%s): %v", e.Kind(), err)
		}
		for k, v := range rec {
			switch v.(type) {
			case nil, int64, float64, string:
			default:
				t.Errorf("%s.%s = %T, want a scalar", e.Kind(), k, v)
			}
		}
	}
}

func TestSerializeUnsavedIDIsNil(t *testing.T) {
	t.Parallel()

	got, err := model.Serialize(model.Customer{Name: "Phil"})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got["id"] != nil {
		t.Errorf("id = %v, want nil before creation", got["id"])
	}
}

func TestSerializeReviewIntegrity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    model.Review
	}{
		{"no customer", model.Review{ID: 1, ItemID: 2}},
		{"no item", model.Review{ID: 1, CustomerID: 2}},
		{"stale customer", model.Review{ID: 1, CustomerID: 2, ItemID: 3, Customer: &model.Customer{ID: 9}}},
		{"stale item", model.Review{ID: 1, CustomerID: 2, ItemID: 3, Item: &model.Item{ID: 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := model.Serialize(tt.r)
			if !errors.Is(err, model.ErrDataIntegrity) {
				t.Errorf("err = %v, want ErrDataIntegrity", err)
			}
		})
	}
}

func TestSerializeAll(t *testing.T) {
	t.Parallel()

	got, err := model.SerializeAll([]model.Item{
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b", Price: model.Price(1)},
	})
	if err != nil {
		t.Fatalf("SerializeAll: %v", err)
	}
	if len(got) != 2 || got[1]["price"] != 1.0 {
		t.Errorf("SerializeAll = %v", got)
	}
}

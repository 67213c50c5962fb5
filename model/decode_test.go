package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/mickamy/reviewdb/model"
)

func decodeJSON(t *testing.T, s string) model.Record {
	t.Helper()

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var rec model.Record
	if err := dec.Decode(&rec); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return rec
}

func TestDecodeReview(t *testing.T) {
	t.Parallel()

	r, err := model.DecodeReview(decodeJSON(t, `{"comment":"great!","customer_id":1,"item_id":2}`))
	if err != nil {
		t.Fatalf("DecodeReview: %v", err)
	}
	if r.Comment == nil || *r.Comment != "great!" || r.CustomerID != 1 || r.ItemID != 2 {
		t.Errorf("DecodeReview = %+v", r)
	}
}

func TestDecodeItem(t *testing.T) {
	t.Parallel()

	i, err := model.DecodeItem(model.Record{"name": "Insulated Mug", "price": 9.99})
	if err != nil {
		t.Fatalf("DecodeItem: %v", err)
	}
	if i.Name != "Insulated Mug" || i.Price == nil || *i.Price != 9.99 {
		t.Errorf("DecodeItem = %+v", i)
	}
}

func TestDecodeIntegerKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    any
		want int64
	}{
		{"int", 3, 3},
		{"int16", int16(3), 3},
		{"uint8", uint8(3), 3},
		{"uint64", uint64(3), 3},
		{"whole float", 3.0, 3},
		{"json.Number", json.Number("3"), 3},
		{"largest exact float", float64(1 << 62), 1 << 62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := model.DecodeReview(model.Record{"customer_id": tt.v, "item_id": 1})
			if err != nil {
				t.Fatalf("DecodeReview: %v", err)
			}
			if r.CustomerID != tt.want {
				t.Errorf("CustomerID = %d, want %d", r.CustomerID, tt.want)
			}
		})
	}
}

func TestDecodeRejectsWrongTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		decode func() error
		field  string
	}{
		{"review comment", func() error {
			_, err := model.DecodeReview(model.Record{"comment": 5, "customer_id": 1, "item_id": 1})
			return err
		}, "comment"},
		{"review customer_id", func() error {
			_, err := model.DecodeReview(model.Record{"customer_id": "one", "item_id": 1})
			return err
		}, "customer_id"},
		{"review item_id fraction", func() error {
			_, err := model.DecodeReview(model.Record{"customer_id": 1, "item_id": 1.5})
			return err
		}, "item_id"},
		{"review item_id beyond int64", func() error {
			_, err := model.DecodeReview(model.Record{"customer_id": 1, "item_id": 1e20})
			return err
		}, "item_id"},
		{"review customer_id -2^64", func() error {
			_, err := model.DecodeReview(model.Record{"customer_id": -18446744073709551616.0, "item_id": 1})
			return err
		}, "customer_id"},
		{"review item_id NaN", func() error {
			_, err := model.DecodeReview(model.Record{"customer_id": 1, "item_id": math.NaN()})
			return err
		}, "item_id"},
		{"review customer_id max uint64", func() error {
			_, err := model.DecodeReview(model.Record{"customer_id": uint64(math.MaxUint64), "item_id": 1})
			return err
		}, "customer_id"},
		{"customer id beyond int64", func() error {
			_, err := model.DecodeCustomer(model.Record{"id": 1e19, "name": "Phil"})
			return err
		}, "id"},
		{"item price", func() error {
			_, err := model.DecodeItem(model.Record{"name": "x", "price": "cheap"})
			return err
		}, "price"},
		{"customer name", func() error {
			_, err := model.DecodeCustomer(model.Record{"name": []string{"Phil"}})
			return err
		}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.decode()
			if !errors.Is(err, model.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			var fe *model.FieldError
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Errorf("field = %v, want %q", fe, tt.field)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		e     interface{ Validate() error }
		valid bool
	}{
		{"customer", model.Customer{Name: "John Doe"}, true},
		{"customer blank name", model.Customer{Name: "  "}, false},
		{"item without price", model.Item{Name: "Sample Item"}, true},
		{"item zero price", model.Item{Name: "Freebie", Price: model.Price(0)}, true},
		{"item negative price", model.Item{Name: "Laptop", Price: model.Price(-1)}, false},
		{"item no name", model.Item{Price: model.Price(1)}, false},
		{"review", model.Review{CustomerID: 1, ItemID: 1}, true},
		{"review without comment ok", model.Review{CustomerID: 1, ItemID: 2, Comment: nil}, true},
		{"review missing customer", model.Review{ItemID: 1}, false},
		{"review missing item", model.Review{CustomerID: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.e.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate = %v, want nil", err)
			}
			if !tt.valid && !errors.Is(err, model.ErrValidation) {
				t.Errorf("Validate = %v, want ErrValidation", err)
			}
		})
	}
}

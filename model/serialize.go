package model

import "fmt"

// Record is the flat wire form of an entity: field name to scalar value.
// Values are int64, float64, string or nil; never a nested entity.
type Record map[string]any

// Serialize converts e into its Record. The field set per kind is fixed:
//
//	customer: id, name
//	item:     id, name, price
//	review:   id, comment, customer_id, item_id
//
// Navigation fields (Reviews, Items, Customer, ...) are never followed, so
// cyclic graphs serialize without recursion. An id of zero (not yet
// created) serializes as nil. A Review whose foreign keys are unset or
// disagree with its loaded Customer/Item fails with ErrDataIntegrity.
func Serialize(e Entity) (Record, error) {
	switch v := e.(type) {
	case Customer:
		return record(customerColumnValuePairs(&v, true)), nil
	case *Customer:
		return record(customerColumnValuePairs(v, true)), nil
	case Item:
		return record(itemColumnValuePairs(&v, true)), nil
	case *Item:
		return record(itemColumnValuePairs(v, true)), nil
	case Review:
		return serializeReview(&v)
	case *Review:
		return serializeReview(v)
	default:
		return nil, fmt.Errorf("model: cannot serialize %T", e)
	}
}

// SerializeAll serializes each entity in order.
func SerializeAll[T Entity](entities []T) ([]Record, error) {
	out := make([]Record, 0, len(entities))
	for _, e := range entities {
		rec, err := Serialize(e)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func serializeReview(r *Review) (Record, error) {
	if err := checkReviewLinks(r); err != nil {
		return nil, err
	}
	return record(reviewColumnValuePairs(r, true)), nil
}

func checkReviewLinks(r *Review) error {
	if r.CustomerID <= 0 {
		return integrityError("review %d has no customer", r.ID)
	}
	if r.ItemID <= 0 {
		return integrityError("review %d has no item", r.ID)
	}
	if r.Customer != nil && r.Customer.ID != r.CustomerID {
		return integrityError("review %d: customer_id %d but customer %d loaded", r.ID, r.CustomerID, r.Customer.ID)
	}
	if r.Item != nil && r.Item.ID != r.ItemID {
		return integrityError("review %d: item_id %d but item %d loaded", r.ID, r.ItemID, r.Item.ID)
	}
	return nil
}

func record(columns []string, values []any) Record {
	rec := make(Record, len(columns))
	for i, col := range columns {
		rec[col] = scalar(values[i])
	}
	if id, ok := rec["id"].(int64); ok && id == 0 {
		rec["id"] = nil
	}
	return rec
}

// scalar dereferences optional columns so a Record never holds pointers.
func scalar(v any) any {
	switch p := v.(type) {
	case *float64:
		if p == nil {
			return nil
		}
		return *p
	case *string:
		if p == nil {
			return nil
		}
		return *p
	default:
		return v
	}
}

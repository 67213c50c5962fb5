package model

import (
	"encoding/json"
	"math"
)

// DecodeCustomer builds a Customer from a wire Record such as a decoded
// JSON object. Wrong value types fail with ErrValidation; missing required
// fields are left to Validate.
func DecodeCustomer(rec Record) (Customer, error) {
	var c Customer
	var err error
	if c.ID, err = optionalID(KindCustomer, rec); err != nil {
		return Customer{}, err
	}
	if c.Name, err = optionalString(KindCustomer, rec, "name"); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// DecodeItem builds an Item from a wire Record.
func DecodeItem(rec Record) (Item, error) {
	var i Item
	var err error
	if i.ID, err = optionalID(KindItem, rec); err != nil {
		return Item{}, err
	}
	if i.Name, err = optionalString(KindItem, rec, "name"); err != nil {
		return Item{}, err
	}
	if v, ok := rec["price"]; ok && v != nil {
		p, ok := toFloat(v)
		if !ok {
			return Item{}, fieldError(KindItem, "price", "must be a number")
		}
		i.Price = &p
	}
	return i, nil
}

// DecodeReview builds a Review from a wire Record.
func DecodeReview(rec Record) (Review, error) {
	var r Review
	var err error
	if r.ID, err = optionalID(KindReview, rec); err != nil {
		return Review{}, err
	}
	if v, ok := rec["comment"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return Review{}, fieldError(KindReview, "comment", "must be a string")
		}
		r.Comment = &s
	}
	for _, fk := range []struct {
		column string
		dst    *int64
	}{
		{ReviewCustomerFK, &r.CustomerID},
		{ReviewItemFK, &r.ItemID},
	} {
		v, ok := rec[fk.column]
		if !ok || v == nil {
			continue
		}
		id, ok := toInt64(v)
		if !ok {
			return Review{}, fieldError(KindReview, fk.column, "must be an integer id")
		}
		*fk.dst = id
	}
	return r, nil
}

func optionalID(kind Kind, rec Record) (int64, error) {
	v, ok := rec["id"]
	if !ok || v == nil {
		return 0, nil
	}
	id, ok := toInt64(v)
	if !ok {
		return 0, fieldError(kind, "id", "must be an integer id")
	}
	return id, nil
}

func optionalString(kind Kind, rec Record, field string) (string, error) {
	v, ok := rec[field]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fieldError(kind, field, "must be a string")
	}
	return s, nil
}

// toInt64 accepts any integer type, or a float or json.Number holding a
// whole number, as long as the value fits in an int64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return fromUint(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return fromUint(n)
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func fromUint(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// fromFloat rejects fractions, NaN, infinities and values outside
// [-2^63, 2^63), whose conversion to int64 is undefined.
func fromFloat(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Price is an optional currency amount. The zero value is an absent price,
// which is never the same thing as a price of zero.
type Price struct {
	Amount decimal.Decimal
	Valid  bool
}

// SomePrice returns a present price.
func SomePrice(amount decimal.Decimal) Price {
	return Price{Amount: amount, Valid: true}
}

// NoPrice returns an absent price.
func NoPrice() Price {
	return Price{}
}

// String formats the price with two decimals, or "" when absent.
func (p Price) String() string {
	if !p.Valid {
		return ""
	}
	return p.Amount.StringFixed(2)
}

// AtMost reports whether the price is present and not above limit.
func (p Price) AtMost(limit decimal.Decimal) bool {
	return p.Valid && p.Amount.LessThanOrEqual(limit)
}

// MarshalJSON encodes an absent price as null.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Amount.StringFixed(2))
}

// MinPrice returns the smallest present price, or an absent price.
func MinPrice(prices ...Price) Price {
	lowest := NoPrice()
	for _, p := range prices {
		if !p.Valid {
			continue
		}
		if !lowest.Valid || p.Amount.LessThan(lowest.Amount) {
			lowest = p
		}
	}
	return lowest
}

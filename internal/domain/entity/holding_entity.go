package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Holding is the current quantity of one asset owned by a user.
// It is a materialized view of the user's ledger for that symbol.
type Holding struct {
	UserID    string
	Symbol    string
	Quantity  decimal.Decimal
	AvgCost   decimal.NullDecimal
	UpdatedAt time.Time
}

// NormalizeSymbol trims and upper-cases an asset symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ApplyDelta returns the holding after adding delta bought or sold at price.
// Buys move the average cost basis; sells leave it untouched.
func (h Holding) ApplyDelta(delta, price decimal.Decimal, at time.Time) Holding {
	next := h
	next.Quantity = h.Quantity.Add(delta)
	next.UpdatedAt = at
	if delta.IsPositive() {
		if h.AvgCost.Valid && h.Quantity.IsPositive() {
			cost := h.Quantity.Mul(h.AvgCost.Decimal).Add(delta.Mul(price))
			next.AvgCost = decimal.NewNullDecimal(cost.Div(next.Quantity))
		} else {
			next.AvgCost = decimal.NewNullDecimal(price)
		}
	}
	if next.Quantity.IsZero() {
		next.AvgCost = decimal.NullDecimal{}
	}
	return next
}

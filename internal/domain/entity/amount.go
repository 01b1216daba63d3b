package entity

import "github.com/shopspring/decimal"

// Quantities and prices are stored as NUMERIC(38,18): at most 18 fractional
// and 20 integer digits.
const AmountScale = 18

var amountLimit = decimal.New(1, 20)

// AmountProblem returns why d cannot be stored exactly, or "" when it can.
func AmountProblem(d decimal.Decimal) string {
	if !d.Equal(d.Truncate(AmountScale)) {
		return "must have at most 18 decimal places"
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return "must be less than 1e20 in magnitude"
	}
	return ""
}

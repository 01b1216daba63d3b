package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionSource tells how a ledger entry was produced.
type TransactionSource string

const (
	SourceTrade      TransactionSource = "trade"
	SourceAdjustment TransactionSource = "adjustment"
)

// Transaction is an immutable ledger entry. Quantity is a signed delta:
// positive for a buy, negative for a sell.
type Transaction struct {
	ID         string
	UserID     string
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Source     TransactionSource
	ExecutedAt time.Time
}

// IsBuy reports whether the entry adds to the holding.
func (t Transaction) IsBuy() bool { return t.Quantity.IsPositive() }

// Amount is |quantity| x price.
func (t Transaction) Amount() decimal.Decimal {
	return t.Quantity.Abs().Mul(t.Price)
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is an ephemeral market price for one symbol.
type PriceQuote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
	Stale     bool            `json:"stale"`
}

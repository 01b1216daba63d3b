package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestHoldingApplyDelta(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	testCases := []struct {
		name    string
		start   Holding
		delta   string
		price   string
		wantQty string
		wantAvg string // empty means no cost basis
	}{
		{"first buy sets cost basis", Holding{Quantity: decimal.Zero}, "2", "100", "2", "100"},
		{"second buy averages", Holding{Quantity: d("2"), AvgCost: decimal.NewNullDecimal(d("100"))}, "1", "150", "3", "116.6666666666666667"},
		{"sell keeps cost basis", Holding{Quantity: d("3"), AvgCost: decimal.NewNullDecimal(d("120"))}, "-1", "500", "2", "120"},
		{"selling out clears cost basis", Holding{Quantity: d("3"), AvgCost: decimal.NewNullDecimal(d("120"))}, "-3", "500", "0", ""},
		{"buy without basis starts one", Holding{Quantity: d("1")}, "1", "10", "2", "10"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.ApplyDelta(d(tt.delta), d(tt.price), at)

			assert.True(t, d(tt.wantQty).Equal(got.Quantity), "quantity %s", got.Quantity)
			assert.Equal(t, at, got.UpdatedAt)
			if tt.wantAvg == "" {
				assert.False(t, got.AvgCost.Valid)
				return
			}
			assert.True(t, got.AvgCost.Valid)
			assert.True(t, d(tt.wantAvg).Equal(got.AvgCost.Decimal), "avg %s", got.AvgCost.Decimal)
		})
	}
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTC", NormalizeSymbol("  btc "))
	assert.Equal(t, "", NormalizeSymbol("   "))
}

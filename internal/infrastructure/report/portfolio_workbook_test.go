package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPortfolioWorkbook(t *testing.T) {
	rows := []Row{
		{Symbol: "BTC", Quantity: decimal.NewFromInt(3), AvgCost: decimal.NewNullDecimal(decimal.RequireFromString("116.67")),
			Price: decimal.NewFromInt(120), Value: decimal.NewFromInt(360), Source: "crypto"},
		{Symbol: "AAPL", Quantity: decimal.NewFromInt(1), Price: decimal.Zero, Value: decimal.Zero, Stale: true},
	}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	data, err := PortfolioWorkbook(rows, decimal.NewFromInt(360), at)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Portfolio"}, f.GetSheetList())

	get := func(cell string) string {
		v, err := f.GetCellValue(sheetName, cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "2024-05-01T10:00:00Z", get("B1"))
	assert.Equal(t, "Symbol", get("A3"))
	assert.Equal(t, "BTC", get("A4"))
	assert.Equal(t, "116.67", get("C4"))
	assert.Equal(t, "360", get("E4"))
	assert.Equal(t, "", get("C5"))
	assert.Equal(t, "TRUE", get("G5"))
	assert.Equal(t, "Total", get("D6"))
	assert.Equal(t, "360", get("E6"))
}

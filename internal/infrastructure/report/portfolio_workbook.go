package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Portfolio"

// Row is one valued holding in the export.
type Row struct {
	Symbol   string
	Quantity decimal.Decimal
	AvgCost  decimal.NullDecimal
	Price    decimal.Decimal
	Value    decimal.Decimal
	Source   string
	Stale    bool
}

var header = []string{"Symbol", "Quantity", "Avg cost", "Price", "Value", "Price source", "Stale"}

// PortfolioWorkbook renders rows into a single-sheet xlsx file.
func PortfolioWorkbook(rows []Row, total decimal.Decimal, valuedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return nil, err
	}
	staleStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#f4cccc"}},
	})
	if err != nil {
		return nil, err
	}

	_ = f.SetCellStr(sheetName, "A1", "Valued at")
	_ = f.SetCellStr(sheetName, "B1", valuedAt.UTC().Format(time.RFC3339))

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellStr(sheetName, cell, h)
	}
	if err := f.SetCellStyle(sheetName, "A3", "G3", headStyle); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, r := range rows {
		line := i + 4
		avg := ""
		if r.AvgCost.Valid {
			avg = r.AvgCost.Decimal.String()
		}
		// decimals are written as text to keep every digit
		values := []any{r.Symbol, r.Quantity.String(), avg, r.Price.String(), r.Value.String(), r.Source, r.Stale}
		start, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheetName, start, &values); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if r.Stale {
			end, _ := excelize.CoordinatesToCellName(len(header), line)
			_ = f.SetCellStyle(sheetName, start, end, staleStyle)
		}
	}

	totalLine := len(rows) + 4
	_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", totalLine), "Total")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", totalLine), total.String())
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("D%d", totalLine), fmt.Sprintf("E%d", totalLine), headStyle)

	_ = f.SetColWidth(sheetName, "A", "G", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

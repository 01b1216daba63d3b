package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-portfolio-tracker/internal/application"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
)

// Decimals marshal as JSON strings.

type holdingDTO struct {
	AssetSymbol string              `json:"assetSymbol"`
	Quantity    decimal.Decimal     `json:"quantity"`
	AvgCost     decimal.NullDecimal `json:"avgCost"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type portfolioLineDTO struct {
	AssetSymbol string              `json:"assetSymbol"`
	Quantity    decimal.Decimal     `json:"quantity"`
	AvgCost     decimal.NullDecimal `json:"avgCost"`
	Price       decimal.Decimal     `json:"price"`
	Value       decimal.Decimal     `json:"value"`
	PriceSource string              `json:"priceSource,omitempty"`
	Stale       bool                `json:"stale"`
}

type portfolioDTO struct {
	Portfolio       []portfolioLineDTO `json:"portfolio"`
	PortfolioValue  decimal.Decimal    `json:"portfolioValue"`
	UnpricedSymbols []string           `json:"unpricedSymbols"`
	ValuedAt        time.Time          `json:"valuedAt"`
}

type transactionDTO struct {
	ID          string          `json:"id"`
	AssetSymbol string          `json:"assetSymbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Source      string          `json:"source"`
	Date        time.Time       `json:"date"`
}

func toHoldingDTOs(hs []entity.Holding) []holdingDTO {
	out := make([]holdingDTO, 0, len(hs))
	for _, h := range hs {
		out = append(out, holdingDTO{AssetSymbol: h.Symbol, Quantity: h.Quantity, AvgCost: h.AvgCost, UpdatedAt: h.UpdatedAt})
	}
	return out
}

func toPortfolioDTO(v application.PortfolioView) portfolioDTO {
	lines := make([]portfolioLineDTO, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, portfolioLineDTO{
			AssetSymbol: l.Symbol,
			Quantity:    l.Quantity,
			AvgCost:     l.AvgCost,
			Price:       l.Price,
			Value:       l.Value,
			PriceSource: l.PriceSource,
			Stale:       l.Stale,
		})
	}
	return portfolioDTO{
		Portfolio:       lines,
		PortfolioValue:  v.Value,
		UnpricedSymbols: v.UnpricedSymbols,
		ValuedAt:        v.ValuedAt,
	}
}

func toTransactionDTO(t entity.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		AssetSymbol: t.Symbol,
		Quantity:    t.Quantity,
		Price:       t.Price,
		Source:      string(t.Source),
		Date:        t.ExecutedAt,
	}
}

func toTransactionDTOs(ts []entity.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionDTO(t))
	}
	return out
}

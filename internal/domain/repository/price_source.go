package repository

import (
	"context"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
)

// PriceSource fetches the current market price of a symbol.
type PriceSource interface {
	Name() string
	Price(ctx context.Context, symbol string) (entity.PriceQuote, error)
}

package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
)

// StaticSource serves fixed prices. Used for local development (PRICE_STATIC) and tests.
type StaticSource struct {
	prices map[string]decimal.Decimal
}

func NewStaticSource(prices map[string]decimal.Decimal) *StaticSource {
	cp := make(map[string]decimal.Decimal, len(prices))
	for k, v := range prices {
		cp[entity.NormalizeSymbol(k)] = v
	}
	return &StaticSource{prices: cp}
}

// ParseStaticPrices converts SYMBOL -> price strings into a StaticSource.
func ParseStaticPrices(raw map[string]string) (*StaticSource, error) {
	prices := make(map[string]decimal.Decimal, len(raw))
	for sym, s := range raw {
		p, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("static price for %s: %w", sym, err)
		}
		if !p.IsPositive() {
			return nil, fmt.Errorf("static price for %s must be positive", sym)
		}
		prices[sym] = p
	}
	return NewStaticSource(prices), nil
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Price(_ context.Context, symbol string) (entity.PriceQuote, error) {
	p, ok := s.prices[symbol]
	if !ok {
		return entity.PriceQuote{}, apperror.New(apperror.KindPriceUnavailable, "no price for "+symbol)
	}
	return entity.PriceQuote{Symbol: symbol, Price: p, Source: s.Name(), FetchedAt: time.Now().UTC()}, nil
}

var _ repository.PriceSource = (*StaticSource)(nil)

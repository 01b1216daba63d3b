package prices

import (
	"context"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
)

// Router sends crypto symbols to one source and everything else to another.
// A nil source means the class is not configured.
type Router struct {
	cryptoSymbols map[string]struct{}
	crypto        repository.PriceSource
	stock         repository.PriceSource
}

func NewRouter(cryptoIDs map[string]string, crypto, stock repository.PriceSource) *Router {
	set := make(map[string]struct{}, len(cryptoIDs))
	for sym := range cryptoIDs {
		set[entity.NormalizeSymbol(sym)] = struct{}{}
	}
	return &Router{cryptoSymbols: set, crypto: crypto, stock: stock}
}

func (r *Router) Name() string { return "router" }

// IsCrypto reports whether symbol is priced by the crypto source.
func (r *Router) IsCrypto(symbol string) bool {
	_, ok := r.cryptoSymbols[symbol]
	return ok
}

func (r *Router) Price(ctx context.Context, symbol string) (entity.PriceQuote, error) {
	src := r.stock
	if r.IsCrypto(symbol) {
		src = r.crypto
	}
	if src == nil {
		return entity.PriceQuote{}, apperror.New(apperror.KindPriceUnavailable, "no price source for "+symbol)
	}
	return src.Price(ctx, symbol)
}

var _ repository.PriceSource = (*Router)(nil)

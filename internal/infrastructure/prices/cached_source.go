package prices

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
)

// QuoteStore keeps the last successful quote per symbol.
type QuoteStore interface {
	Save(ctx context.Context, q entity.PriceQuote) error
	Last(ctx context.Context, symbol string) (entity.PriceQuote, bool, error)
}

// RedisQuoteStore stores quotes as JSON under price:last:<SYMBOL>.
type RedisQuoteStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisQuoteStore(rdb redis.Cmdable, ttl time.Duration) *RedisQuoteStore {
	return &RedisQuoteStore{rdb: rdb, ttl: ttl}
}

func quoteKey(symbol string) string { return "price:last:" + symbol }

func (s *RedisQuoteStore) Save(ctx context.Context, q entity.PriceQuote) error {
	return helpers.RedisSetJSON(ctx, s.rdb, quoteKey(q.Symbol), q, s.ttl)
}

func (s *RedisQuoteStore) Last(ctx context.Context, symbol string) (entity.PriceQuote, bool, error) {
	var q entity.PriceQuote
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, quoteKey(symbol), &q)
	return q, ok, err
}

// CachedSource remembers every successful quote and serves the last one,
// marked stale, when the wrapped source fails.
type CachedSource struct {
	inner  repository.PriceSource
	store  QuoteStore
	logger *logrus.Logger
}

func NewCachedSource(inner repository.PriceSource, store QuoteStore, logger *logrus.Logger) *CachedSource {
	return &CachedSource{inner: inner, store: store, logger: logger}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

func (s *CachedSource) Price(ctx context.Context, symbol string) (entity.PriceQuote, error) {
	q, err := s.inner.Price(ctx, symbol)
	if err == nil {
		if serr := s.store.Save(ctx, q); serr != nil {
			s.logger.WithError(serr).WithField("symbol", symbol).Warn("price cache write failed")
		}
		return q, nil
	}

	last, ok, lerr := s.store.Last(ctx, symbol)
	if lerr != nil {
		s.logger.WithError(lerr).WithField("symbol", symbol).Warn("price cache read failed")
	}
	if !ok || lerr != nil {
		return entity.PriceQuote{}, err
	}

	staleServed.Add(1)
	s.logger.WithError(err).WithFields(logrus.Fields{
		"symbol":     symbol,
		"fetched_at": last.FetchedAt,
	}).Warn("serving stale price")
	last.Symbol = symbol
	last.Source = "cache"
	last.Stale = true
	return last, nil
}

var _ repository.PriceSource = (*CachedSource)(nil)

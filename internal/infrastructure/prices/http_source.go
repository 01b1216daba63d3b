package prices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
)

// quoteRequest describes where the quote for one symbol lives.
type quoteRequest struct {
	Path     string
	Query    map[string]string
	JSONPath string
}

// HTTPSource fetches a JSON quote document and extracts the price with a jsonpath expression.
// The client makes at most two attempts: the first call plus one retry.
type HTTPSource struct {
	name    string
	client  *resty.Client
	request func(symbol string) (quoteRequest, error)
	now     func() time.Time
}

func newHTTPSource(name, baseURL string, timeout time.Duration, request func(string) (quoteRequest, error)) *HTTPSource {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(1).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(300 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	return &HTTPSource{name: name, client: client, request: request, now: time.Now}
}

// NewCryptoSource queries a CoinGecko-style /simple/price endpoint. ids maps
// an upper-cased symbol to the provider's coin id.
func NewCryptoSource(baseURL string, ids map[string]string, timeout time.Duration) *HTTPSource {
	return newHTTPSource("crypto", baseURL, timeout, func(symbol string) (quoteRequest, error) {
		id, ok := ids[symbol]
		if !ok {
			return quoteRequest{}, apperror.New(apperror.KindPriceUnavailable, "unknown crypto symbol "+symbol)
		}
		return quoteRequest{
			Path:     "/simple/price",
			Query:    map[string]string{"ids": id, "vs_currencies": "usd"},
			JSONPath: fmt.Sprintf("$[%q].usd", id),
		}, nil
	})
}

// NewStockSource queries GET {baseURL}/quote?symbol=SYMBOL and reads the price at jsonPath.
func NewStockSource(baseURL, jsonPath, apiKey string, timeout time.Duration) *HTTPSource {
	return newHTTPSource("stock", baseURL, timeout, func(symbol string) (quoteRequest, error) {
		q := map[string]string{"symbol": symbol}
		if apiKey != "" {
			q["apikey"] = apiKey
		}
		return quoteRequest{Path: "/quote", Query: q, JSONPath: jsonPath}, nil
	})
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) Price(ctx context.Context, symbol string) (entity.PriceQuote, error) {
	q, err := s.fetch(ctx, symbol)
	recordFetch(s.name, err)
	return q, err
}

func (s *HTTPSource) fetch(ctx context.Context, symbol string) (entity.PriceQuote, error) {
	req, err := s.request(symbol)
	if err != nil {
		return entity.PriceQuote{}, err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(req.Query).
		Get(req.Path)
	if err != nil {
		return entity.PriceQuote{}, apperror.Wrap(apperror.KindUpstreamUnavailable, s.name+" price provider unreachable", err)
	}
	if resp.IsError() {
		return entity.PriceQuote{}, apperror.Wrap(apperror.KindUpstreamUnavailable, s.name+" price provider failed",
			fmt.Errorf("status %d", resp.StatusCode()))
	}

	price, err := extractPrice(resp.Body(), req.JSONPath)
	if err != nil {
		return entity.PriceQuote{}, apperror.Wrap(apperror.KindUpstreamUnavailable, s.name+" price provider returned a bad quote", err)
	}
	if !price.IsPositive() {
		return entity.PriceQuote{}, apperror.Wrap(apperror.KindUpstreamUnavailable, s.name+" price provider returned a bad quote",
			fmt.Errorf("non-positive price %s", price))
	}

	return entity.PriceQuote{
		Symbol:    symbol,
		Price:     price,
		Source:    s.name,
		FetchedAt: s.now().UTC(),
	}, nil
}

// extractPrice evaluates path against body. Numbers keep their exact decimal text.
func extractPrice(body []byte, path string) (decimal.Decimal, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode quote: %w", err)
	}

	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("eval %q: %w", path, err)
	}
	// wildcard and filter expressions yield a list; keep the first match
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return decimal.Decimal{}, fmt.Errorf("eval %q: no match", path)
		}
		val = list[0]
	}

	switch v := val.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("eval %q: not a number: %v", path, val)
	}
}

var _ repository.PriceSource = (*HTTPSource)(nil)

package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	repo "github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
	"github.com/oksasatya/go-portfolio-tracker/internal/infrastructure/report"
)

const (
	maxParallelQuotes = 8
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ObjectUploader stores a blob and returns its URL. Implemented by helpers.GCSUploader.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type PortfolioService struct {
	Repo     repo.PortfolioRepository
	Prices   repo.PriceSource
	Uploader ObjectUploader
	Logger   *logrus.Logger

	now func() time.Time
}

func NewPortfolioService(r repo.PortfolioRepository, prices repo.PriceSource, uploader ObjectUploader, logger *logrus.Logger) *PortfolioService {
	return &PortfolioService{Repo: r, Prices: prices, Uploader: uploader, Logger: logger, now: time.Now}
}

// PortfolioLine is one valued holding.
type PortfolioLine struct {
	Symbol      string
	Quantity    decimal.Decimal
	AvgCost     decimal.NullDecimal
	Price       decimal.Decimal
	Value       decimal.Decimal
	PriceSource string
	Stale       bool
}

// PortfolioView is the valuation of all holdings of one user.
type PortfolioView struct {
	Lines []PortfolioLine
	Value decimal.Decimal
	// Symbols whose live quote failed; they are valued at a cached price or zero.
	UnpricedSymbols []string
	ValuedAt        time.Time
}

// AssetInput is one row of a portfolio update.
type AssetInput struct {
	Symbol   string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// GetPortfolio values every holding at its current price.
// A failing quote never fails the read.
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID string) (PortfolioView, error) {
	holdings, err := s.Repo.ListHoldings(ctx, userID)
	if err != nil {
		return PortfolioView{}, apperror.Wrap(apperror.KindInternal, "load holdings", err)
	}

	quotes := s.quotes(ctx, holdings)

	view := PortfolioView{
		Lines:           make([]PortfolioLine, 0, len(holdings)),
		Value:           decimal.Zero,
		UnpricedSymbols: []string{},
		ValuedAt:        s.clock().UTC(),
	}
	unpriced := map[string]struct{}{}
	for _, h := range holdings {
		line := PortfolioLine{
			Symbol:   h.Symbol,
			Quantity: h.Quantity,
			AvgCost:  h.AvgCost,
			Price:    decimal.Zero,
		}
		if q, ok := quotes[h.Symbol]; ok {
			line.Price = q.Price
			line.PriceSource = q.Source
			line.Stale = q.Stale
			if q.Stale {
				unpriced[h.Symbol] = struct{}{}
			}
		} else {
			line.Stale = true
			unpriced[h.Symbol] = struct{}{}
		}
		line.Value = h.Quantity.Mul(line.Price)
		view.Value = view.Value.Add(line.Value)
		view.Lines = append(view.Lines, line)
	}
	for sym := range unpriced {
		view.UnpricedSymbols = append(view.UnpricedSymbols, sym)
	}
	sort.Strings(view.UnpricedSymbols)
	return view, nil
}

// quotes fetches one quote per distinct symbol. Failed symbols are absent from the result.
func (s *PortfolioService) quotes(ctx context.Context, holdings []entity.Holding) map[string]entity.PriceQuote {
	symbols := make([]string, 0, len(holdings))
	seen := map[string]struct{}{}
	for _, h := range holdings {
		if _, ok := seen[h.Symbol]; ok {
			continue
		}
		seen[h.Symbol] = struct{}{}
		symbols = append(symbols, h.Symbol)
	}

	results := make([]*entity.PriceQuote, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelQuotes)
	for i, sym := range symbols {
		g.Go(func() error {
			q, err := s.Prices.Price(gctx, sym)
			if err != nil {
				s.Logger.WithError(err).WithField("symbol", sym).Warn("price unavailable, valuing at zero")
				return nil
			}
			results[i] = &q
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]entity.PriceQuote, len(symbols))
	for i, q := range results {
		if q != nil {
			out[symbols[i]] = *q
		}
	}
	return out
}

// UpdatePortfolio sets holdings to the given quantities in one atomic write.
// Every change is recorded as an adjustment in the ledger, so holdings stay
// reconcilable. Holdings not named in assets are left alone.
func (s *PortfolioService) UpdatePortfolio(ctx context.Context, userID string, assets []AssetInput) ([]entity.Holding, error) {
	if err := validateAssets(assets); err != nil {
		return nil, err
	}

	at := s.clock().UTC()
	writes := make([]repo.LedgerWrite, 0, len(assets))
	for _, a := range assets {
		writes = append(writes, repo.LedgerWrite{
			Symbol: entity.NormalizeSymbol(a.Symbol),
			Mutate: setHolding(a.Quantity, a.Price, at),
		})
	}
	if err := s.Repo.ApplyBatch(ctx, userID, writes); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "update holdings", err)
	}

	holdings, err := s.Repo.ListHoldings(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "load holdings", err)
	}
	return holdings, nil
}

// setHolding moves a holding to target, recording the difference as an adjustment.
func setHolding(target, price decimal.Decimal, at time.Time) repo.LedgerMutation {
	return func(cur *entity.Holding) (*entity.Transaction, *entity.Holding, error) {
		if cur == nil && target.IsZero() {
			return nil, nil, nil
		}
		current := entity.Holding{Quantity: decimal.Zero}
		if cur != nil {
			current = *cur
		}

		next := current
		next.Quantity = target
		next.UpdatedAt = at
		next.AvgCost = decimal.NewNullDecimal(price)
		if target.IsZero() {
			next.AvgCost = decimal.NullDecimal{}
		}

		var tx *entity.Transaction
		if delta := target.Sub(current.Quantity); !delta.IsZero() {
			tx = &entity.Transaction{
				Quantity:   delta,
				Price:      price,
				Source:     entity.SourceAdjustment,
				ExecutedAt: at,
			}
		}
		return tx, &next, nil
	}
}

func validateAssets(assets []AssetInput) error {
	details := map[string]string{}
	if len(assets) == 0 {
		details["assets"] = "is required"
	}
	seen := map[string]int{}
	for i, a := range assets {
		field := fmt.Sprintf("assets[%d]", i)
		sym := entity.NormalizeSymbol(a.Symbol)
		if sym == "" {
			details[field+".assetSymbol"] = "is required"
		} else if prev, dup := seen[sym]; dup {
			details[field+".assetSymbol"] = fmt.Sprintf("duplicates assets[%d]", prev)
		} else {
			seen[sym] = i
		}
		if a.Quantity.IsNegative() {
			details[field+".quantity"] = "must be greater than or equal to 0"
		} else if msg := entity.AmountProblem(a.Quantity); msg != "" {
			details[field+".quantity"] = msg
		}
		if !a.Price.IsPositive() {
			details[field+".price"] = "must be greater than 0"
		} else if msg := entity.AmountProblem(a.Price); msg != "" {
			details[field+".price"] = msg
		}
	}
	if len(details) > 0 {
		return apperror.Validation("validation error", details)
	}
	return nil
}

// ExportPortfolio uploads the current valuation as an xlsx workbook and returns its URL.
func (s *PortfolioService) ExportPortfolio(ctx context.Context, userID string) (string, error) {
	if s.Uploader == nil {
		return "", apperror.New(apperror.KindUnavailable, "export storage is not configured")
	}

	view, err := s.GetPortfolio(ctx, userID)
	if err != nil {
		return "", err
	}

	rows := make([]report.Row, 0, len(view.Lines))
	for _, l := range view.Lines {
		rows = append(rows, report.Row{
			Symbol:   l.Symbol,
			Quantity: l.Quantity,
			AvgCost:  l.AvgCost,
			Price:    l.Price,
			Value:    l.Value,
			Source:   l.PriceSource,
			Stale:    l.Stale,
		})
	}
	data, err := report.PortfolioWorkbook(rows, view.Value, view.ValuedAt)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, "render workbook", err)
	}

	objectPath := fmt.Sprintf("exports/%s/%s.xlsx", userID, uuid.NewString())
	url, err := s.Uploader.Upload(ctx, objectPath, xlsxContentType, bytes.NewReader(data))
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("portfolio export upload failed")
		return "", apperror.Wrap(apperror.KindUpstreamUnavailable, "export upload failed", err)
	}
	return url, nil
}

func (s *PortfolioService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

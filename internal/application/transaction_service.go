package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	repo "github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// TransactionIndex is the full-text view of the ledger. Implemented by search.TransactionIndex.
type TransactionIndex interface {
	Index(ctx context.Context, tx entity.Transaction) error
	Search(ctx context.Context, userID, q string, size int) ([]entity.Transaction, error)
}

type TransactionService struct {
	Repo     repo.PortfolioRepository
	Users    repo.UserRepository
	Search   TransactionIndex
	Notifier *Notifier
	Logger   *logrus.Logger

	now func() time.Time
}

func NewTransactionService(r repo.PortfolioRepository, users repo.UserRepository, search TransactionIndex, notifier *Notifier, logger *logrus.Logger) *TransactionService {
	return &TransactionService{Repo: r, Users: users, Search: search, Notifier: notifier, Logger: logger, now: time.Now}
}

// CreateTransaction appends a trade and moves the holding by quantity.
// Positive quantity buys, negative sells.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID, symbol string, quantity, price decimal.Decimal) (*entity.Transaction, error) {
	sym := entity.NormalizeSymbol(symbol)
	details := map[string]string{}
	if sym == "" {
		details["assetSymbol"] = "is required"
	}
	if quantity.IsZero() {
		details["quantity"] = "must not be equal to 0"
	} else if msg := entity.AmountProblem(quantity); msg != "" {
		details["quantity"] = msg
	}
	if !price.IsPositive() {
		details["price"] = "must be greater than 0"
	} else if msg := entity.AmountProblem(price); msg != "" {
		details["price"] = msg
	}
	if len(details) > 0 {
		return nil, apperror.Validation("validation error", details)
	}

	at := s.clock().UTC()
	tx, _, err := s.Repo.Apply(ctx, userID, sym, func(cur *entity.Holding) (*entity.Transaction, *entity.Holding, error) {
		current := entity.Holding{UserID: userID, Symbol: sym, Quantity: decimal.Zero}
		if cur != nil {
			current = *cur
		}
		if current.Quantity.Add(quantity).IsNegative() {
			return nil, nil, apperror.ErrInsufficientHoldings.WithDetails(map[string]string{
				"assetSymbol": sym,
				"held":        current.Quantity.String(),
				"requested":   quantity.Neg().String(),
			})
		}
		next := current.ApplyDelta(quantity, price, at)
		if msg := entity.AmountProblem(next.Quantity); msg != "" {
			return nil, nil, apperror.Validation("validation error", map[string]string{"quantity": "resulting holding " + msg})
		}
		return &entity.Transaction{
			Quantity:   quantity,
			Price:      price,
			Source:     entity.SourceTrade,
			ExecutedAt: at,
		}, &next, nil
	})
	if err != nil {
		if apperror.Is(err, apperror.KindInsufficientHoldings) || apperror.Is(err, apperror.KindValidation) {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.KindInternal, "record transaction", err)
	}

	s.Logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"tx_id":    tx.ID,
		"symbol":   sym,
		"quantity": quantity.String(),
	}).Info("transaction recorded")

	s.afterCreate(ctx, userID, *tx)
	return tx, nil
}

// afterCreate feeds the search index and the receipt email. Neither can fail the request.
func (s *TransactionService) afterCreate(ctx context.Context, userID string, tx entity.Transaction) {
	if s.Search != nil {
		if err := s.Search.Index(ctx, tx); err != nil {
			s.Logger.WithError(err).WithField("tx_id", tx.ID).Warn("transaction index failed")
		}
	}
	if s.Notifier.enabled() && s.Users != nil {
		u, err := s.Users.GetByID(ctx, userID)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("receipt skipped, user lookup failed")
			return
		}
		s.Notifier.TransactionReceipt(ctx, u.Email, tx)
	}
}

// ListTransactions returns the user's ledger, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string) ([]entity.Transaction, error) {
	txs, err := s.Repo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "list transactions", err)
	}
	return txs, nil
}

// GetTransaction returns one of the user's transactions.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id string) (*entity.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.New(apperror.KindNotFound, "transaction not found")
	}
	tx, err := s.Repo.GetTransaction(ctx, userID, id)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "transaction not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "load transaction", err)
	}
	return tx, nil
}

// SearchTransactions runs a full-text query over the user's ledger.
// Without a configured index the result is empty.
func (s *TransactionService) SearchTransactions(ctx context.Context, userID, q string, size int) ([]entity.Transaction, error) {
	if s.Search == nil {
		return []entity.Transaction{}, nil
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}
	txs, err := s.Search.Search(ctx, userID, q, size)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("transaction search failed")
		return nil, apperror.Wrap(apperror.KindUpstreamUnavailable, "search unavailable", err)
	}
	return txs, nil
}

func (s *TransactionService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

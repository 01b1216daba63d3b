package repository

import (
	"context"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
)

// LedgerMutation receives the current holding for (user, symbol), or nil when
// the user holds none, and returns the ledger entry to append together with
// the resulting holding. A returned holding with zero quantity is removed.
// Returning an error aborts the write and leaves both tables unchanged.
type LedgerMutation func(current *entity.Holding) (*entity.Transaction, *entity.Holding, error)

// LedgerWrite pairs a symbol with the mutation to run against it in ApplyBatch.
type LedgerWrite struct {
	Symbol string
	Mutate LedgerMutation
}

// PortfolioRepository stores holdings and the transaction ledger.
type PortfolioRepository interface {
	// ListHoldings returns the user's holdings ordered by symbol.
	ListHoldings(ctx context.Context, userID string) ([]entity.Holding, error)

	// Apply runs fn while holding an exclusive lock on (userID, symbol) and
	// persists its results atomically. Concurrent Apply calls for the same
	// pair are serialized.
	Apply(ctx context.Context, userID, symbol string, fn LedgerMutation) (*entity.Transaction, *entity.Holding, error)

	// ApplyBatch runs the writes in order as one atomic unit: every result
	// persists or none does. Symbols must be distinct.
	ApplyBatch(ctx context.Context, userID string, writes []LedgerWrite) error

	// ListTransactions returns the user's ledger, newest first.
	ListTransactions(ctx context.Context, userID string) ([]entity.Transaction, error)

	// GetTransaction returns apperror.ErrNotFound when id does not belong to userID.
	GetTransaction(ctx context.Context, userID, id string) (*entity.Transaction, error)

	// DistinctSymbols lists every symbol currently held by any user.
	DistinctSymbols(ctx context.Context) ([]string, error)
}

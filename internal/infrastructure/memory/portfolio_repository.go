package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
)

type holdingKey struct {
	userID string
	symbol string
}

// PortfolioRepository keeps holdings and the ledger in process memory.
// A single mutex serializes every write, which also covers the
// per-(user, symbol) ordering the Postgres repository gets from advisory locks.
type PortfolioRepository struct {
	mu       sync.Mutex
	holdings map[holdingKey]entity.Holding
	ledger   []entity.Transaction
}

func NewPortfolioRepository() *PortfolioRepository {
	return &PortfolioRepository{holdings: map[holdingKey]entity.Holding{}}
}

func (r *PortfolioRepository) ListHoldings(_ context.Context, userID string) ([]entity.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Holding, 0)
	for k, h := range r.holdings {
		if k.userID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (r *PortfolioRepository) Apply(ctx context.Context, userID, symbol string, fn repository.LedgerMutation) (*entity.Transaction, *entity.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	key := holdingKey{userID: userID, symbol: symbol}
	var current *entity.Holding
	if h, ok := r.holdings[key]; ok {
		current = &h
	}

	tx, next, err := fn(current)
	if err != nil {
		return nil, nil, err
	}

	if tx != nil {
		rec := record(userID, symbol, tx)
		r.ledger = append(r.ledger, rec)
		tx = &rec
	}

	if next != nil {
		if next.Quantity.IsZero() {
			delete(r.holdings, key)
		} else {
			h := stamp(userID, symbol, next)
			r.holdings[key] = h
			next = &h
		}
	}
	return tx, next, nil
}

// ApplyBatch stages every write and commits only when all mutations succeed.
func (r *PortfolioRepository) ApplyBatch(ctx context.Context, userID string, writes []repository.LedgerWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	staged := map[holdingKey]*entity.Holding{} // nil marks a removal
	var entries []entity.Transaction
	for _, w := range writes {
		key := holdingKey{userID: userID, symbol: w.Symbol}
		var current *entity.Holding
		if h, ok := staged[key]; ok {
			if h != nil {
				c := *h
				current = &c
			}
		} else if h, ok := r.holdings[key]; ok {
			current = &h
		}

		tx, next, err := w.Mutate(current)
		if err != nil {
			return err
		}
		if tx != nil {
			entries = append(entries, record(userID, w.Symbol, tx))
		}
		if next != nil {
			if next.Quantity.IsZero() {
				staged[key] = nil
			} else {
				h := stamp(userID, w.Symbol, next)
				staged[key] = &h
			}
		}
	}

	r.ledger = append(r.ledger, entries...)
	for key, h := range staged {
		if h == nil {
			delete(r.holdings, key)
		} else {
			r.holdings[key] = *h
		}
	}
	return nil
}

func record(userID, symbol string, tx *entity.Transaction) entity.Transaction {
	rec := *tx
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UserID = userID
	rec.Symbol = symbol
	return rec
}

func stamp(userID, symbol string, next *entity.Holding) entity.Holding {
	h := *next
	h.UserID = userID
	h.Symbol = symbol
	return h
}

func (r *PortfolioRepository) ListTransactions(_ context.Context, userID string) ([]entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Transaction, 0)
	for _, t := range r.ledger {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ExecutedAt.Equal(out[j].ExecutedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].ExecutedAt.After(out[j].ExecutedAt)
	})
	return out, nil
}

func (r *PortfolioRepository) GetTransaction(_ context.Context, userID, id string) (*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.ledger {
		if t.ID == id && t.UserID == userID {
			found := t
			return &found, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *PortfolioRepository) DistinctSymbols(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]struct{}{}
	for k := range r.holdings {
		seen[k.symbol] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

var _ repository.PortfolioRepository = (*PortfolioRepository)(nil)

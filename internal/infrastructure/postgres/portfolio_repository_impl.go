package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
)

type PortfolioRepository struct {
	pool *pgxpool.Pool
}

func NewPortfolioRepository(pool *pgxpool.Pool) *PortfolioRepository {
	return &PortfolioRepository{pool: pool}
}

func (r *PortfolioRepository) ListHoldings(ctx context.Context, userID string) ([]entity.Holding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, symbol, quantity, avg_cost, updated_at
		FROM holdings
		WHERE user_id = $1
		ORDER BY symbol
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Holding, 0)
	for rows.Next() {
		var h entity.Holding
		if err := rows.Scan(&h.UserID, &h.Symbol, &h.Quantity, &h.AvgCost, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Apply serializes writers on (userID, symbol) with a transaction-scoped
// advisory lock, so the first buy of a symbol is covered too (there is no
// row to lock FOR UPDATE yet).
func (r *PortfolioRepository) Apply(ctx context.Context, userID, symbol string, fn repository.LedgerMutation) (*entity.Transaction, *entity.Holding, error) {
	var (
		outTx      *entity.Transaction
		outHolding *entity.Holding
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockHolding(ctx, tx, userID, symbol); err != nil {
			return err
		}
		var err error
		outTx, outHolding, err = applyInTx(ctx, tx, userID, symbol, fn)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return outTx, outHolding, nil
}

// ApplyBatch takes every advisory lock up front in symbol order, so two
// batches over overlapping symbols cannot deadlock, then applies the writes
// in one transaction.
func (r *PortfolioRepository) ApplyBatch(ctx context.Context, userID string, writes []repository.LedgerWrite) error {
	symbols := make([]string, 0, len(writes))
	for _, w := range writes {
		symbols = append(symbols, w.Symbol)
	}
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, sym := range symbols {
			if err := lockHolding(ctx, tx, userID, sym); err != nil {
				return err
			}
		}
		for _, w := range writes {
			if _, _, err := applyInTx(ctx, tx, userID, w.Symbol, w.Mutate); err != nil {
				return err
			}
		}
		return nil
	})
}

func lockHolding(ctx context.Context, tx pgx.Tx, userID, symbol string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`, userID, symbol); err != nil {
		return fmt.Errorf("lock holding: %w", err)
	}
	return nil
}

// applyInTx runs fn against the locked holding and writes its results.
func applyInTx(ctx context.Context, tx pgx.Tx, userID, symbol string, fn repository.LedgerMutation) (*entity.Transaction, *entity.Holding, error) {
	var current *entity.Holding
	var h entity.Holding
	err := tx.QueryRow(ctx, `
		SELECT user_id, symbol, quantity, avg_cost, updated_at
		FROM holdings
		WHERE user_id = $1 AND symbol = $2
		FOR UPDATE
	`, userID, symbol).Scan(&h.UserID, &h.Symbol, &h.Quantity, &h.AvgCost, &h.UpdatedAt)
	switch {
	case err == nil:
		current = &h
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, nil, fmt.Errorf("select holding: %w", err)
	}

	ledgerTx, next, err := fn(current)
	if err != nil {
		return nil, nil, err
	}

	if ledgerTx != nil {
		ledgerTx.UserID = userID
		ledgerTx.Symbol = symbol
		if err := tx.QueryRow(ctx, `
			INSERT INTO transactions (user_id, symbol, quantity, price, source, executed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, userID, symbol, ledgerTx.Quantity, ledgerTx.Price, string(ledgerTx.Source), ledgerTx.ExecutedAt).Scan(&ledgerTx.ID); err != nil {
			return nil, nil, fmt.Errorf("insert transaction: %w", err)
		}
	}

	if next != nil {
		next.UserID = userID
		next.Symbol = symbol
		if next.Quantity.IsZero() {
			if _, err := tx.Exec(ctx, `DELETE FROM holdings WHERE user_id = $1 AND symbol = $2`, userID, symbol); err != nil {
				return nil, nil, fmt.Errorf("delete holding: %w", err)
			}
		} else if _, err := tx.Exec(ctx, `
			INSERT INTO holdings (user_id, symbol, quantity, avg_cost, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, symbol)
			DO UPDATE SET quantity = EXCLUDED.quantity, avg_cost = EXCLUDED.avg_cost, updated_at = EXCLUDED.updated_at
		`, userID, symbol, next.Quantity, next.AvgCost, next.UpdatedAt); err != nil {
			return nil, nil, fmt.Errorf("upsert holding: %w", err)
		}
	}
	return ledgerTx, next, nil
}

func (r *PortfolioRepository) ListTransactions(ctx context.Context, userID string) ([]entity.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, symbol, quantity, price, source, executed_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY executed_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *PortfolioRepository) GetTransaction(ctx context.Context, userID, id string) (*entity.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, symbol, quantity, price, source, executed_at
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	return t, err
}

func (r *PortfolioRepository) DistinctSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT symbol FROM holdings ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var (
		t      entity.Transaction
		source string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Quantity, &t.Price, &source, &t.ExecutedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	t.Source = entity.TransactionSource(source)
	return &t, nil
}

var _ repository.PortfolioRepository = (*PortfolioRepository)(nil)

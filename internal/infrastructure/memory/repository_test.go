package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
)

func buy(qty string, at time.Time) func(*entity.Holding) (*entity.Transaction, *entity.Holding, error) {
	return func(cur *entity.Holding) (*entity.Transaction, *entity.Holding, error) {
		delta := decimal.RequireFromString(qty)
		base := entity.Holding{Quantity: decimal.Zero}
		if cur != nil {
			base = *cur
		}
		next := base.ApplyDelta(delta, decimal.NewFromInt(10), at)
		return &entity.Transaction{Quantity: delta, Price: decimal.NewFromInt(10), Source: entity.SourceTrade, ExecutedAt: at}, &next, nil
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u := &entity.User{Email: "a@x.io", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	err := repo.Create(ctx, &entity.User{Email: "a@x.io", Password: "other"})
	assert.True(t, apperror.Is(err, apperror.KindDuplicateUser))

	got, err := repo.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", got.Email)

	_, err = repo.GetByEmail(ctx, "missing@x.io")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPortfolioApplyAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tx, h, err := repo.Apply(ctx, "u1", "BTC", buy("2", t0))
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "u1", tx.UserID)
	assert.Equal(t, "BTC", h.Symbol)

	_, _, err = repo.Apply(ctx, "u1", "ETH", buy("1", t0.Add(time.Hour)))
	require.NoError(t, err)

	holdings, err := repo.ListHoldings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "BTC", holdings[0].Symbol)

	// selling out deletes the holding but keeps the ledger
	_, _, err = repo.Apply(ctx, "u1", "BTC", buy("-2", t0.Add(2*time.Hour)))
	require.NoError(t, err)

	holdings, _ = repo.ListHoldings(ctx, "u1")
	require.Len(t, holdings, 1)
	assert.Equal(t, "ETH", holdings[0].Symbol)

	txs, err := repo.ListTransactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.True(t, txs[0].Quantity.Equal(decimal.NewFromInt(-2)), "newest first")

	symbols, _ := repo.DistinctSymbols(ctx)
	assert.Equal(t, []string{"ETH"}, symbols)
}

func TestPortfolioApplyErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository()
	boom := errors.New("boom")

	_, _, err := repo.Apply(ctx, "u1", "BTC", func(*entity.Holding) (*entity.Transaction, *entity.Holding, error) {
		return nil, nil, boom
	})
	assert.ErrorIs(t, err, boom)

	txs, _ := repo.ListTransactions(ctx, "u1")
	assert.Empty(t, txs)
}

func TestGetTransactionIsScopedToUser(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository()

	tx, _, err := repo.Apply(ctx, "u1", "BTC", buy("1", time.Now()))
	require.NoError(t, err)

	_, err = repo.GetTransaction(ctx, "u2", tx.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got, err := repo.GetTransaction(ctx, "u1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)

	other, _ := repo.ListTransactions(ctx, "u2")
	assert.Empty(t, other)
}

func TestConcurrentApplyKeepsLedgerAndHoldingInSync(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = repo.Apply(ctx, "u1", "BTC", buy("1", time.Now()))
		}()
	}
	wg.Wait()

	holdings, _ := repo.ListHoldings(ctx, "u1")
	require.Len(t, holdings, 1)
	assert.True(t, holdings[0].Quantity.Equal(decimal.NewFromInt(50)))

	txs, _ := repo.ListTransactions(ctx, "u1")
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Quantity)
	}
	assert.True(t, sum.Equal(holdings[0].Quantity))
}

func TestApplyBatchCommitsTogether(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := repo.Apply(ctx, "u1", "BTC", buy("2", t0))
	require.NoError(t, err)

	err = repo.ApplyBatch(ctx, "u1", []repository.LedgerWrite{
		{Symbol: "BTC", Mutate: buy("-2", t0.Add(time.Hour))},
		{Symbol: "ETH", Mutate: buy("5", t0.Add(time.Hour))},
	})
	require.NoError(t, err)

	holdings, _ := repo.ListHoldings(ctx, "u1")
	require.Len(t, holdings, 1, "zero quantity removes BTC")
	assert.Equal(t, "ETH", holdings[0].Symbol)
	assert.Equal(t, "u1", holdings[0].UserID)

	txs, _ := repo.ListTransactions(ctx, "u1")
	require.Len(t, txs, 3)
	for _, tx := range txs {
		assert.NotEmpty(t, tx.ID)
	}
}

func TestApplyBatchFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := repo.Apply(ctx, "u1", "BTC", buy("2", t0))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.ApplyBatch(ctx, "u1", []repository.LedgerWrite{
		{Symbol: "BTC", Mutate: buy("-2", t0.Add(time.Hour))},
		{Symbol: "ETH", Mutate: buy("5", t0.Add(time.Hour))},
		{Symbol: "SOL", Mutate: func(*entity.Holding) (*entity.Transaction, *entity.Holding, error) {
			return nil, nil, boom
		}},
	})
	assert.ErrorIs(t, err, boom)

	holdings, _ := repo.ListHoldings(ctx, "u1")
	require.Len(t, holdings, 1)
	assert.Equal(t, "BTC", holdings[0].Symbol)
	assert.True(t, holdings[0].Quantity.Equal(decimal.NewFromInt(2)))

	txs, _ := repo.ListTransactions(ctx, "u1")
	assert.Len(t, txs, 1)
}

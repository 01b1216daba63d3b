package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-portfolio-tracker/config"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
	"github.com/oksasatya/go-portfolio-tracker/pkg/mailer"
)

func TestOversellIsRejectedAndChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(staticPrices(map[string]string{"BTC": "100"}))

	_, err := f.txs.CreateTransaction(ctx, "u1", "BTC", d("2"), d("100"))
	require.NoError(t, err)

	_, err = f.txs.CreateTransaction(ctx, "u1", "BTC", d("-3"), d("100"))
	require.ErrorIs(t, err, apperror.ErrInsufficientHoldings)
	ae, _ := apperror.As(err)
	assert.Equal(t, map[string]string{"assetSymbol": "BTC", "held": "2", "requested": "3"}, ae.Details)
	assert.Nil(t, apperror.ErrInsufficientHoldings.Details, "shared sentinel stays clean")

	holdings, _ := f.repo.ListHoldings(ctx, "u1")
	require.Len(t, holdings, 1)
	assert.True(t, holdings[0].Quantity.Equal(d("2")))

	txs, _ := f.txs.ListTransactions(ctx, "u1")
	assert.Len(t, txs, 1)

	// selling a symbol never held
	_, err = f.txs.CreateTransaction(ctx, "u1", "ETH", d("-1"), d("10"))
	assert.True(t, apperror.Is(err, apperror.KindInsufficientHoldings))
}

func TestSellEverythingRemovesHolding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(staticPrices(nil))

	_, err := f.txs.CreateTransaction(ctx, "u1", "BTC", d("2"), d("100"))
	require.NoError(t, err)
	tx, err := f.txs.CreateTransaction(ctx, "u1", "BTC", d("-2"), d("130"))
	require.NoError(t, err)
	assert.False(t, tx.IsBuy())

	holdings, _ := f.repo.ListHoldings(ctx, "u1")
	assert.Empty(t, holdings)
}

func TestCreateTransactionValidation(t *testing.T) {
	f := newFixture(staticPrices(nil))
	cases := []struct {
		name   string
		symbol string
		qty    string
		price  string
		field  string
	}{
		{"zero quantity", "BTC", "0", "10", "quantity"},
		{"zero price", "BTC", "1", "0", "price"},
		{"negative price", "BTC", "1", "-5", "price"},
		{"blank symbol", "  ", "1", "5", "assetSymbol"},
		{"quantity below storage scale", "BTC", "0.0000000000000000001", "10", "quantity"},
		{"price below storage scale", "BTC", "1", "1e-19", "price"},
		{"quantity too large", "BTC", "123456789012345678901", "10", "quantity"},
		{"price too large", "BTC", "1", "1e20", "price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.txs.CreateTransaction(context.Background(), "u1", tc.symbol, d(tc.qty), d(tc.price))
			require.True(t, apperror.Is(err, apperror.KindValidation))
			ae, _ := apperror.As(err)
			assert.Contains(t, ae.Details, tc.field)
		})
	}
}

func TestListTransactionsOrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(staticPrices(nil))
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	f.txs.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	for _, sym := range []string{"BTC", "ETH", "SOL"} {
		_, err := f.txs.CreateTransaction(ctx, "u1", sym, d("1"), d("1"))
		require.NoError(t, err)
	}
	_, err := f.txs.CreateTransaction(ctx, "u2", "BTC", d("1"), d("1"))
	require.NoError(t, err)

	txs, err := f.txs.ListTransactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, []string{"SOL", "ETH", "BTC"}, []string{txs[0].Symbol, txs[1].Symbol, txs[2].Symbol})
	for _, tx := range txs {
		assert.Equal(t, "u1", tx.UserID)
	}
}

func TestGetTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(staticPrices(nil))

	tx, err := f.txs.CreateTransaction(ctx, "u1", "BTC", d("1"), d("1"))
	require.NoError(t, err)

	got, err := f.txs.GetTransaction(ctx, "u1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)

	_, err = f.txs.GetTransaction(ctx, "u2", tx.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.txs.GetTransaction(ctx, "u1", "not-a-uuid")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestConcurrentSellsNeverOversell(t *testing.T) {
	ctx := context.Background()
	f := newFixture(staticPrices(nil))
	_, err := f.txs.CreateTransaction(ctx, "u1", "BTC", d("10"), d("1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.txs.CreateTransaction(ctx, "u1", "BTC", d("-1"), d("1"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if apperror.Is(err, apperror.KindInsufficientHoldings) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, rejected)
	holdings, _ := f.repo.ListHoldings(ctx, "u1")
	assert.Empty(t, holdings)
}

func TestCreateTransactionSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(staticPrices(nil))

	users := f.txs.Users
	u := &entity.User{Email: "gus@example.com", Password: "x"}
	require.NoError(t, users.Create(ctx, u))

	idx := &mockIndex{}
	idx.On("Index", mock.Anything, mock.MatchedBy(func(tx entity.Transaction) bool {
		return tx.Symbol == "BTC" && tx.UserID == u.ID
	})).Return(assert.AnError)
	f.txs.Search = idx

	pub := &mockPublisher{}
	pub.On("PublishJSON", mock.Anything, mock.MatchedBy(func(job mailer.EmailJob) bool {
		return job.To == "gus@example.com" && job.Template == "transaction_receipt" && job.Data["Side"] == "buy"
	})).Return(nil).Once()
	f.txs.Notifier = NewNotifier(pub, &config.Config{MailSendEnabled: true, PriceQuoteCurrency: "USD"}, helpers.NewNopLogger())

	_, err := f.txs.CreateTransaction(ctx, u.ID, "BTC", d("1"), d("100"))
	require.NoError(t, err, "index failure is not fatal")

	idx.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSearchTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(staticPrices(nil))

	txs, err := f.txs.SearchTransactions(ctx, "u1", "btc", 0)
	require.NoError(t, err)
	assert.Empty(t, txs)

	idx := &mockIndex{}
	want := []entity.Transaction{{ID: "t1", Symbol: "BTC", Quantity: decimal.NewFromInt(1)}}
	idx.On("Search", mock.Anything, "u1", "btc", 10).Return(want, nil).Once()
	idx.On("Search", mock.Anything, "u1", "eth", 50).Return(nil, assert.AnError).Once()
	f.txs.Search = idx

	got, err := f.txs.SearchTransactions(ctx, "u1", "btc", 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = f.txs.SearchTransactions(ctx, "u1", "eth", 500)
	assert.True(t, apperror.Is(err, apperror.KindUpstreamUnavailable))
	idx.AssertExpectations(t)
}

func TestBuyBeyondStorableHoldingIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(staticPrices(nil))

	_, err := f.txs.CreateTransaction(ctx, "u1", "BTC", d("99999999999999999999"), d("1"))
	require.NoError(t, err)

	_, err = f.txs.CreateTransaction(ctx, "u1", "BTC", d("1"), d("1"))
	require.True(t, apperror.Is(err, apperror.KindValidation))
	ae, _ := apperror.As(err)
	assert.Equal(t, map[string]string{"quantity": "resulting holding must be less than 1e20 in magnitude"}, ae.Details)

	txs, err := f.txs.ListTransactions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
)

// fakeES answers like an Elasticsearch node and records the last request.
func fakeES(t *testing.T, handle func(w http.ResponseWriter, r *http.Request, body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		var body map[string]any
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &body))
		}
		handle(w, r, body)
	}))
}

func TestIndexWritesDocument(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := fakeES(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		gotPath, gotBody = r.URL.Path, body
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	defer srv.Close()

	es, err := helpers.NewESClient(helpers.ESOptions{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	idx := NewTransactionIndex(es, "transactions", time.Second)

	err = idx.Index(context.Background(), entity.Transaction{
		ID: "tx-1", UserID: "u1", Symbol: "BTC",
		Quantity: decimal.NewFromInt(-2), Price: decimal.NewFromInt(100),
		Source: entity.SourceTrade, ExecutedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "/transactions/_doc/tx-1", gotPath)
	assert.Equal(t, "sell", gotBody["side"])
	assert.Equal(t, "-2", gotBody["quantity"])
	assert.Equal(t, "u1", gotBody["user_id"])
}

func TestSearchFiltersByUser(t *testing.T) {
	var gotBody map[string]any
	srv := fakeES(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		gotBody = body
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"tx-1","_source":{
			"id":"tx-1","user_id":"u1","symbol":"BTC","side":"buy","quantity":"2","price":"100",
			"source":"trade","executed_at":"2024-05-01T00:00:00Z"}}]}}`))
	})
	defer srv.Close()

	es, err := helpers.NewESClient(helpers.ESOptions{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	idx := NewTransactionIndex(es, "transactions", time.Second)

	txs, err := idx.Search(context.Background(), "u1", "btc", 5)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "BTC", txs[0].Symbol)
	assert.True(t, txs[0].Quantity.Equal(decimal.NewFromInt(2)))

	boolQ := gotBody["query"].(map[string]any)["bool"].(map[string]any)
	filter := boolQ["filter"].([]any)[0].(map[string]any)["term"].(map[string]any)
	assert.Equal(t, "u1", filter["user_id"])
	assert.Contains(t, boolQ["must"], "multi_match")
	assert.EqualValues(t, 5, gotBody["size"])
}

func TestSearchSurfacesErrors(t *testing.T) {
	srv := fakeES(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	defer srv.Close()

	es, err := helpers.NewESClient(helpers.ESOptions{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	_, err = NewTransactionIndex(es, "transactions", time.Second).Search(context.Background(), "u1", "", 10)
	assert.Error(t, err)
}

func TestRequestsBoundedByIndexTimeout(t *testing.T) {
	srv := fakeES(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	defer srv.Close()

	es, err := helpers.NewESClient(helpers.ESOptions{Addresses: []string{srv.URL}, Timeout: time.Second})
	require.NoError(t, err)
	idx := NewTransactionIndex(es, "transactions", 50*time.Millisecond)

	start := time.Now()
	_, err = idx.Search(context.Background(), "u1", "", 10)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClientTimeoutStopsSlowNode(t *testing.T) {
	srv := fakeES(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	defer srv.Close()

	es, err := helpers.NewESClient(helpers.ESOptions{Addresses: []string{srv.URL}, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	idx := NewTransactionIndex(es, "transactions", 0)

	start := time.Now()
	assert.Error(t, idx.EnsureIndex(context.Background()))
	assert.Less(t, time.Since(start), defaultRequestTimeout)
}

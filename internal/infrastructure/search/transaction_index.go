package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
)

const defaultRequestTimeout = 3 * time.Second

// TransactionIndex mirrors ledger entries into Elasticsearch for full-text search.
type TransactionIndex struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration
}

// NewTransactionIndex bounds every request by timeout (3s when zero).
func NewTransactionIndex(es *elasticsearch.Client, index string, timeout time.Duration) *TransactionIndex {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &TransactionIndex{es: es, index: index, timeout: timeout}
}

type transactionDoc struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Symbol     string `json:"symbol"`
	Side       string `json:"side"`
	Quantity   string `json:"quantity"`
	Price      string `json:"price"`
	Source     string `json:"source"`
	ExecutedAt string `json:"executed_at"`
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "user_id":     {"type": "keyword"},
      "symbol":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "side":        {"type": "text"},
      "quantity":    {"type": "keyword"},
      "price":       {"type": "keyword"},
      "source":      {"type": "text"},
      "executed_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *TransactionIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	exists, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(c, x.es)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: x.index, Body: strings.NewReader(indexMapping)}.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.index, res.Status())
	}
	return nil
}

func (x *TransactionIndex) Index(ctx context.Context, tx entity.Transaction) error {
	side := "buy"
	if !tx.IsBuy() {
		side = "sell"
	}
	doc := transactionDoc{
		ID:         tx.ID,
		UserID:     tx.UserID,
		Symbol:     tx.Symbol,
		Side:       side,
		Quantity:   tx.Quantity.String(),
		Price:      tx.Price.String(),
		Source:     string(tx.Source),
		ExecutedAt: tx.ExecutedAt.UTC().Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	c, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	req := esapi.IndexRequest{Index: x.index, DocumentID: tx.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index transaction %s: %s", tx.ID, res.Status())
	}
	return nil
}

// Search matches q against symbol, side and source. Results never leave userID's ledger.
// An empty q lists the user's most recent entries.
func (x *TransactionIndex) Search(ctx context.Context, userID, q string, size int) ([]entity.Transaction, error) {
	must := map[string]any{"match_all": map[string]any{}}
	if strings.TrimSpace(q) != "" {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"symbol^2", "side", "source"},
			},
		}
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   must,
				"filter": []any{map[string]any{"term": map[string]any{"user_id": userID}}},
			},
		},
		"sort": []any{map[string]any{"executed_at": "desc"}},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", x.index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source transactionDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Transaction, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		tx, err := h.Source.toEntity()
		if err != nil {
			return nil, fmt.Errorf("hit %s: %w", h.ID, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (d transactionDoc) toEntity() (entity.Transaction, error) {
	qty, err := decimal.NewFromString(d.Quantity)
	if err != nil {
		return entity.Transaction{}, err
	}
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return entity.Transaction{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, d.ExecutedAt)
	if err != nil {
		return entity.Transaction{}, err
	}
	return entity.Transaction{
		ID:         d.ID,
		UserID:     d.UserID,
		Symbol:     d.Symbol,
		Quantity:   qty,
		Price:      price,
		Source:     entity.TransactionSource(d.Source),
		ExecutedAt: at,
	}, nil
}

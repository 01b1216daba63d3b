package application

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

type mockUploader struct{ mock.Mock }

func (m *mockUploader) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	args := m.Called(ctx, objectPath, contentType, b)
	return args.String(0), args.Error(1)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) Index(ctx context.Context, tx entity.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockIndex) Search(ctx context.Context, userID, q string, size int) ([]entity.Transaction, error) {
	args := m.Called(ctx, userID, q, size)
	txs, _ := args.Get(0).([]entity.Transaction)
	return txs, args.Error(1)
}

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockIdempotencyStore is a mock implementation of port.IdempotencyStore.
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Acquire(ctx context.Context, key string) (uuid.UUID, func(), error) {
	args := m.Called(ctx, key)
	var release func()
	if fn := args.Get(1); fn != nil {
		release = fn.(func())
	}
	return args.Get(0).(uuid.UUID), release, args.Error(2)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key string, invoiceID uuid.UUID) error {
	args := m.Called(ctx, key, invoiceID)
	return args.Error(0)
}

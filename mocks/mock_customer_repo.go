package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// MockCustomerRepo is a mock implementation of port.CustomerRepository.
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) GetByID(ctx context.Context, tx port.Tx, id uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepo) AdjustAggregates(ctx context.Context, tx port.Tx, id uuid.UUID, purchasesDelta, creditDelta decimal.Decimal) (*domain.Customer, error) {
	args := m.Called(ctx, tx, id, purchasesDelta, creditDelta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

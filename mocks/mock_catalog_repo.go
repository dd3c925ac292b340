package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// MockCatalogRepo is a mock implementation of port.CatalogRepository.
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) GetProduct(ctx context.Context, shopType domain.ShopType, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, shopType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogRepo) AdjustStock(ctx context.Context, tx port.Tx, shopType domain.ShopType, id uuid.UUID, delta int) (*domain.Product, error) {
	args := m.Called(ctx, tx, shopType, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// MockInvoiceCounterRepo is a mock implementation of port.InvoiceCounterRepository.
type MockInvoiceCounterRepo struct {
	mock.Mock
}

func (m *MockInvoiceCounterRepo) Next(ctx context.Context, tx port.Tx, shopType domain.ShopType, day time.Time) (int, error) {
	args := m.Called(ctx, tx, shopType, day)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceCounterRepo) Resync(ctx context.Context, tx port.Tx, shopType domain.ShopType, day time.Time, numberPrefix string) (int, error) {
	args := m.Called(ctx, tx, shopType, day, numberPrefix)
	return args.Int(0), args.Error(1)
}

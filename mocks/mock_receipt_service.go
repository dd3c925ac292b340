package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shopbill/internal/domain"
	"shopbill/internal/service"
)

// MockReceiptService is a mock implementation of service.ReceiptService.
type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Export(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, []byte, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Invoice), args.Get(1).([]byte), args.Error(2)
}

func (m *MockReceiptService) Share(ctx context.Context, invoiceID uuid.UUID) (*service.ReceiptShare, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReceiptShare), args.Error(1)
}

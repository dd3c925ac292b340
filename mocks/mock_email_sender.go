package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendReceiptEmail(ctx context.Context, toEmail, toName, invoiceNumber, receiptURL string) error {
	args := m.Called(ctx, toEmail, toName, invoiceNumber, receiptURL)
	return args.Error(0)
}

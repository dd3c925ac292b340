package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// CustomerAccountLedger keeps a customer's running purchase and credit totals.
// Totals only move by deltas applied in the transaction that caused them.
type CustomerAccountLedger interface {
	ApplyInvoiceCharge(ctx context.Context, tx port.Tx, customerID uuid.UUID, grandTotal, outstanding decimal.Decimal) (*domain.Customer, error)
	ApplySettlement(ctx context.Context, tx port.Tx, customerID uuid.UUID, amount decimal.Decimal) (*domain.Customer, error)
}

type customerAccountLedger struct {
	customers port.CustomerRepository
}

// NewCustomerAccountLedger creates a CustomerAccountLedger over the customer registry.
func NewCustomerAccountLedger(customers port.CustomerRepository) CustomerAccountLedger {
	return &customerAccountLedger{customers: customers}
}

// ApplyInvoiceCharge adds grandTotal to purchases and any positive outstanding balance to credit.
func (l *customerAccountLedger) ApplyInvoiceCharge(ctx context.Context, tx port.Tx, customerID uuid.UUID, grandTotal, outstanding decimal.Decimal) (*domain.Customer, error) {
	credit := decimal.Zero
	if outstanding.IsPositive() {
		credit = outstanding
	}
	return l.customers.AdjustAggregates(ctx, tx, customerID, grandTotal, credit)
}

// ApplySettlement reduces credit by amount. Credit going negative is domain.ErrNegativeCredit.
func (l *customerAccountLedger) ApplySettlement(ctx context.Context, tx port.Tx, customerID uuid.UUID, amount decimal.Decimal) (*domain.Customer, error) {
	return l.customers.AdjustAggregates(ctx, tx, customerID, decimal.Zero, amount.Neg())
}

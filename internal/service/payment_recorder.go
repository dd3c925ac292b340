package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// PaymentInput is the DTO for one payment, either at invoice creation or as a later settlement.
type PaymentInput struct {
	Amount          decimal.Decimal      `json:"amount" binding:"required,money_positive" swaggertype:"string" example:"100.00"`
	Method          domain.PaymentMethod `json:"method" binding:"required,payment_method" example:"cash"`
	ReferenceNumber string               `json:"reference_number" binding:"max=100"`
}

func (in *PaymentInput) validate() error {
	if !in.Amount.IsPositive() || !in.Amount.Equal(domain.RoundMoney(in.Amount)) {
		return domain.ErrInvalidPaymentAmount
	}
	if !in.Method.Valid() {
		return domain.ErrInvalidPaymentMethod
	}
	return nil
}

// PaymentRecorder appends payments and advances an invoice's settlement state.
type PaymentRecorder interface {
	Record(ctx context.Context, tx port.Tx, invoiceID uuid.UUID, in PaymentInput) (*domain.Payment, error)
	Settle(ctx context.Context, tx port.Tx, invoiceID uuid.UUID, in PaymentInput) (*domain.Invoice, error)
}

type paymentRecorder struct {
	invoices port.InvoiceRepository
	payments port.PaymentRepository
	ledger   CustomerAccountLedger
}

// NewPaymentRecorder creates a new PaymentRecorder implementation.
func NewPaymentRecorder(invoices port.InvoiceRepository, payments port.PaymentRepository, ledger CustomerAccountLedger) PaymentRecorder {
	return &paymentRecorder{invoices: invoices, payments: payments, ledger: ledger}
}

func (r *paymentRecorder) Record(ctx context.Context, tx port.Tx, invoiceID uuid.UUID, in PaymentInput) (*domain.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &domain.Payment{
		InvoiceID:       invoiceID,
		Amount:          in.Amount,
		Method:          in.Method,
		ReferenceNumber: in.ReferenceNumber,
	}
	if err := r.payments.Create(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}
	return p, nil
}

// Settle locks the invoice row, appends the payment and applies it to paid amount,
// status and, for a linked customer, outstanding credit. Credit drops by at most
// the invoice's outstanding amount.
func (r *paymentRecorder) Settle(ctx context.Context, tx port.Tx, invoiceID uuid.UUID, in PaymentInput) (*domain.Invoice, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	inv, err := r.invoices.GetForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.PaymentStatus == domain.PaymentStatusPaid {
		return nil, domain.ErrInvoiceAlreadyPaid
	}

	if _, err := r.Record(ctx, tx, invoiceID, in); err != nil {
		return nil, err
	}

	cleared := decimal.Min(in.Amount, inv.Outstanding())
	paid := inv.PaidAmount.Add(in.Amount)
	status := inv.PaymentStatus.Advance(domain.ResolvePaymentStatus(paid, inv.GrandTotal))
	updated, err := r.invoices.ApplyPayment(ctx, tx, invoiceID, in.Amount, status)
	if err != nil {
		return nil, err
	}

	if inv.CustomerID != nil && cleared.IsPositive() {
		if _, err := r.ledger.ApplySettlement(ctx, tx, *inv.CustomerID, cleared); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

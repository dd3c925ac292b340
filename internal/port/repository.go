package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbill/internal/domain"
)

// Tx is one unit of work. Every ledger write takes the Tx it belongs to.
type Tx interface {
	Commit() error
	Rollback() error
}

// TxManager opens transactions against the backing store.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// InvoiceCounterRepository issues per (shop type, day) sequence numbers.
// The counter row stays locked until tx ends; a rolled-back tx gives its number back.
type InvoiceCounterRepository interface {
	Next(ctx context.Context, tx Tx, shopType domain.ShopType, day time.Time) (int, error)
	// Resync raises the (shop type, day) counter to at least the highest sequence
	// already issued under numberPrefix and returns the resulting last sequence.
	Resync(ctx context.Context, tx Tx, shopType domain.ShopType, day time.Time, numberPrefix string) (int, error)
}

// InvoiceRepository defines the contract for invoice and invoice item persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, tx Tx, invoice *domain.Invoice) error
	CreateItems(ctx context.Context, tx Tx, items []domain.InvoiceItem) error
	GetForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*domain.Invoice, error)
	ApplyPayment(ctx context.Context, tx Tx, id uuid.UUID, amount decimal.Decimal, status domain.PaymentStatus) (*domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error)
}

// PaymentRepository defines the contract for the append-only payment log.
type PaymentRepository interface {
	Create(ctx context.Context, tx Tx, payment *domain.Payment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.Payment, error)
}

// CatalogRepository is the slice of product storage the billing engine needs.
// The table is selected by shop type.
type CatalogRepository interface {
	GetProduct(ctx context.Context, shopType domain.ShopType, id uuid.UUID) (*domain.Product, error)
	// AdjustStock applies delta to on-hand stock and returns the updated product.
	// A delta that would drive stock below zero returns domain.ErrInsufficientStock.
	AdjustStock(ctx context.Context, tx Tx, shopType domain.ShopType, id uuid.UUID, delta int) (*domain.Product, error)
}

// CustomerRepository is the slice of customer storage the billing engine needs.
type CustomerRepository interface {
	// GetByID reads through tx when it is non-nil.
	GetByID(ctx context.Context, tx Tx, id uuid.UUID) (*domain.Customer, error)
	// AdjustAggregates adds the deltas to total_purchases and total_credit.
	// A resulting negative credit returns domain.ErrNegativeCredit.
	AdjustAggregates(ctx context.Context, tx Tx, id uuid.UUID, purchasesDelta, creditDelta decimal.Decimal) (*domain.Customer, error)
}

// UserRepository defines the contract for staff user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateActiveShop(ctx context.Context, id uuid.UUID, shop domain.ShopType) error
}

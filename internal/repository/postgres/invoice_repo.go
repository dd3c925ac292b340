package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

const invoiceColumns = `id, invoice_number, shop_type, customer_id, customer_name, customer_phone,
	sub_total, discount, gst_amount, grand_total, paid_amount, payment_status, notes,
	created_by, created_at, updated_at`

const invoiceItemColumns = `id, invoice_id, line_no, product_type, product_id, product_name, unit,
	quantity, unit_price, gst_rate, gst_amount, total_price`

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, tx port.Tx, inv *domain.Invoice) error {
	stx, err := unwrapTx(tx)
	if err != nil {
		return err
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	inv.UpdatedAt = inv.CreatedAt

	_, err = stx.ExecContext(ctx, `INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		inv.ID, inv.InvoiceNumber, inv.ShopType, inv.CustomerID, inv.CustomerName, inv.CustomerPhone,
		inv.SubTotal, inv.Discount, inv.GSTAmount, inv.GrandTotal, inv.PaidAmount, inv.PaymentStatus,
		inv.Notes, inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "invoices_invoice_number_key") {
			return domain.ErrInvoiceNumberConflict
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) CreateItems(ctx context.Context, tx port.Tx, items []domain.InvoiceItem) error {
	stx, err := unwrapTx(tx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	_, err = stx.NamedExecContext(ctx, `INSERT INTO invoice_items (`+invoiceItemColumns+`)
		VALUES (:id, :invoice_id, :line_no, :product_type, :product_id, :product_name, :unit,
			:quantity, :unit_price, :gst_rate, :gst_amount, :total_price)`, items)
	if err != nil {
		return fmt.Errorf("invoiceRepo.CreateItems: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetForUpdate(ctx context.Context, tx port.Tx, id uuid.UUID) (*domain.Invoice, error) {
	stx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}
	var inv domain.Invoice
	err = stx.GetContext(ctx, &inv,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetForUpdate: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) ApplyPayment(ctx context.Context, tx port.Tx, id uuid.UUID, amount decimal.Decimal, status domain.PaymentStatus) (*domain.Invoice, error) {
	stx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}
	var inv domain.Invoice
	err = stx.GetContext(ctx, &inv, `UPDATE invoices
		SET paid_amount = paid_amount + $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+invoiceColumns,
		amount, status, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.ApplyPayment: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := r.db.SelectContext(ctx, &items,
		"SELECT "+invoiceItemColumns+" FROM invoice_items WHERE invoice_id = $1 ORDER BY line_no", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListItems: %w", err)
	}
	return items, nil
}

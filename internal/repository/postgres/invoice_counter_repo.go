package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

type invoiceCounterRepo struct {
	db *sqlx.DB
}

// NewInvoiceCounterRepo creates a new PostgreSQL-backed InvoiceCounterRepository.
func NewInvoiceCounterRepo(db *sqlx.DB) port.InvoiceCounterRepository {
	return &invoiceCounterRepo{db: db}
}

// Next upserts the (shop type, day) row and returns the incremented sequence.
// The upsert takes a row lock held until tx ends, serializing allocations for the same shop and day.
func (r *invoiceCounterRepo) Next(ctx context.Context, tx port.Tx, shopType domain.ShopType, day time.Time) (int, error) {
	stx, err := unwrapTx(tx)
	if err != nil {
		return 0, err
	}

	var seq int
	err = stx.GetContext(ctx, &seq, `
		INSERT INTO invoice_counters (shop_type, business_day, last_seq, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (shop_type, business_day)
		DO UPDATE SET last_seq = invoice_counters.last_seq + 1, updated_at = NOW()
		RETURNING last_seq`,
		shopType, day.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("invoiceCounterRepo.Next: %w", err)
	}
	return seq, nil
}

// Resync moves last_seq up to the highest numeric suffix among invoices numbered under numberPrefix.
// It never lowers the counter.
func (r *invoiceCounterRepo) Resync(ctx context.Context, tx port.Tx, shopType domain.ShopType, day time.Time, numberPrefix string) (int, error) {
	stx, err := unwrapTx(tx)
	if err != nil {
		return 0, err
	}

	var seq int
	err = stx.GetContext(ctx, &seq, `
		INSERT INTO invoice_counters (shop_type, business_day, last_seq, updated_at)
		SELECT $1::text, $2::date, COALESCE(MAX(CAST(substr(invoice_number, char_length($3::text) + 1) AS INTEGER)), 0), NOW()
		FROM invoices
		WHERE shop_type = $1::text
		  AND left(invoice_number, char_length($3::text)) = $3::text
		  AND substr(invoice_number, char_length($3::text) + 1) ~ '^[0-9]{1,9}$'
		ON CONFLICT (shop_type, business_day)
		DO UPDATE SET last_seq = GREATEST(invoice_counters.last_seq, EXCLUDED.last_seq), updated_at = NOW()
		RETURNING last_seq`,
		shopType, day.Format("2006-01-02"), numberPrefix)
	if err != nil {
		return 0, fmt.Errorf("invoiceCounterRepo.Resync: %w", err)
	}
	return seq, nil
}

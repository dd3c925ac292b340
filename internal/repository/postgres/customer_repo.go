package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

const customerColumns = `id, name, phone, email, total_purchases, total_credit, created_at, updated_at`

type customerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo creates a new PostgreSQL-backed CustomerRepository.
func NewCustomerRepo(db *sqlx.DB) port.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) GetByID(ctx context.Context, tx port.Tx, id uuid.UUID) (*domain.Customer, error) {
	q, err := queryer(r.db, tx)
	if err != nil {
		return nil, err
	}
	var c domain.Customer
	err = sqlx.GetContext(ctx, q, &c, "SELECT "+customerColumns+" FROM customers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customerRepo.GetByID: %w", err)
	}
	return &c, nil
}

func (r *customerRepo) AdjustAggregates(ctx context.Context, tx port.Tx, id uuid.UUID, purchasesDelta, creditDelta decimal.Decimal) (*domain.Customer, error) {
	stx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}

	var c domain.Customer
	err = stx.GetContext(ctx, &c, `UPDATE customers
		SET total_purchases = total_purchases + $1, total_credit = total_credit + $2, updated_at = NOW()
		WHERE id = $3 AND total_credit + $2 >= 0
		RETURNING `+customerColumns,
		purchasesDelta, creditDelta, id)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customerRepo.AdjustAggregates: %w", err)
	}

	var exists bool
	if err := stx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)", id); err != nil {
		return nil, fmt.Errorf("customerRepo.AdjustAggregates exists: %w", err)
	}
	if !exists {
		return nil, domain.ErrCustomerNotFound
	}
	return nil, domain.ErrNegativeCredit
}

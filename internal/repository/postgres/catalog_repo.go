package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

const productColumns = `id, name, unit, hsn_code, mrp, selling_price, gst_rate, stock, min_stock`

var productTables = map[domain.ShopType]string{
	domain.ShopTypeGrocery:    "grocery_products",
	domain.ShopTypeFertilizer: "fertilizer_products",
}

type catalogRepo struct {
	db *sqlx.DB
}

// NewCatalogRepo creates a new PostgreSQL-backed CatalogRepository over both product tables.
func NewCatalogRepo(db *sqlx.DB) port.CatalogRepository {
	return &catalogRepo{db: db}
}

func productTable(shopType domain.ShopType) (string, error) {
	table, ok := productTables[shopType]
	if !ok {
		return "", domain.ErrInvalidShopType
	}
	return table, nil
}

func (r *catalogRepo) GetProduct(ctx context.Context, shopType domain.ShopType, id uuid.UUID) (*domain.Product, error) {
	table, err := productTable(shopType)
	if err != nil {
		return nil, err
	}
	var p domain.Product
	err = r.db.GetContext(ctx, &p, "SELECT "+productColumns+" FROM "+table+" WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("catalogRepo.GetProduct: %w", err)
	}
	p.ShopType = shopType
	return &p, nil
}

// AdjustStock is a single guarded relative update; concurrent callers serialize on the row lock
// and the guard is evaluated against the latest committed stock.
func (r *catalogRepo) AdjustStock(ctx context.Context, tx port.Tx, shopType domain.ShopType, id uuid.UUID, delta int) (*domain.Product, error) {
	table, err := productTable(shopType)
	if err != nil {
		return nil, err
	}
	stx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}

	var p domain.Product
	err = stx.GetContext(ctx, &p, `UPDATE `+table+`
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING `+productColumns, delta, id)
	if err == nil {
		p.ShopType = shopType
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalogRepo.AdjustStock: %w", err)
	}

	var exists bool
	if err := stx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = $1)", id); err != nil {
		return nil, fmt.Errorf("catalogRepo.AdjustStock exists: %w", err)
	}
	if !exists {
		return nil, domain.ErrProductNotFound
	}
	return nil, domain.ErrInsufficientStock
}

package service

import (
	"context"

	"github.com/google/uuid"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// StockLedger applies relative stock movements inside the caller's transaction.
type StockLedger interface {
	Decrement(ctx context.Context, tx port.Tx, shopType domain.ShopType, productID uuid.UUID, qty int) (*domain.Product, error)
	Increment(ctx context.Context, tx port.Tx, shopType domain.ShopType, productID uuid.UUID, qty int) (*domain.Product, error)
}

type stockLedger struct {
	catalog port.CatalogRepository
}

// NewStockLedger creates a StockLedger over the catalog.
func NewStockLedger(catalog port.CatalogRepository) StockLedger {
	return &stockLedger{catalog: catalog}
}

// Decrement removes qty units. Returns domain.ErrInsufficientStock when on-hand stock is short.
func (l *stockLedger) Decrement(ctx context.Context, tx port.Tx, shopType domain.ShopType, productID uuid.UUID, qty int) (*domain.Product, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidStockDelta
	}
	return l.catalog.AdjustStock(ctx, tx, shopType, productID, -qty)
}

func (l *stockLedger) Increment(ctx context.Context, tx port.Tx, shopType domain.ShopType, productID uuid.UUID, qty int) (*domain.Product, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidStockDelta
	}
	return l.catalog.AdjustStock(ctx, tx, shopType, productID, qty)
}

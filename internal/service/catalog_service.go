package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// RestockInput is the DTO for booking received stock.
type RestockInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0" example:"25"`
}

// CatalogService covers stock movements made outside billing.
type CatalogService interface {
	Restock(ctx context.Context, shopType domain.ShopType, productID uuid.UUID, qty int) (*domain.Product, error)
}

type catalogService struct {
	txm     port.TxManager
	catalog port.CatalogRepository
	stock   StockLedger
	log     zerolog.Logger
}

// NewCatalogService creates a new CatalogService implementation.
func NewCatalogService(txm port.TxManager, catalog port.CatalogRepository, stock StockLedger, log zerolog.Logger) CatalogService {
	return &catalogService{txm: txm, catalog: catalog, stock: stock, log: log}
}

// Restock adds qty units to a product's on-hand stock.
func (s *catalogService) Restock(ctx context.Context, shopType domain.ShopType, productID uuid.UUID, qty int) (*domain.Product, error) {
	if !shopType.Valid() {
		return nil, domain.ErrInvalidShopType
	}
	if qty <= 0 {
		return nil, domain.ErrInvalidStockDelta
	}
	if _, err := s.catalog.GetProduct(ctx, shopType, productID); err != nil {
		return nil, err
	}

	var product *domain.Product
	err := withinTx(ctx, s.txm, func(tx port.Tx) error {
		p, err := s.stock.Increment(ctx, tx, shopType, productID, qty)
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("shop_type", string(shopType)).
		Str("product_id", productID.String()).
		Int("quantity", qty).
		Int("stock", product.Stock).
		Msg("product restocked")
	return product, nil
}

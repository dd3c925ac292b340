package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopbill/internal/domain"
	"shopbill/internal/service"
	"shopbill/mocks"
)

func newCatalogService(h *harness) service.CatalogService {
	return service.NewCatalogService(h.store, h.store.Catalog(), service.NewStockLedger(h.store.Catalog()), zerolog.Nop())
}

func TestCatalogService_Restock(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	svc := newCatalogService(h)

	p, err := svc.Restock(bg, domain.ShopTypeGrocery, h.dal, 25)
	require.NoError(t, err)
	assert.Equal(t, 28, p.Stock)
	assert.False(t, p.LowStock())
	assert.Equal(t, 28, h.store.Stock(domain.ShopTypeGrocery, h.dal))

	// Restocked units are sellable in the same day's billing.
	_, err = h.svc.CreateInvoice(bg, &service.CreateInvoiceInput{
		ShopType: domain.ShopTypeGrocery,
		Items:    []service.InvoiceItemInput{{ProductID: h.dal, Quantity: 20, UnitPrice: dec("120"), GSTRate: dec("0")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, h.store.Stock(domain.ShopTypeGrocery, h.dal))
}

func TestCatalogService_Restock_Rejects(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	svc := newCatalogService(h)

	_, err := svc.Restock(bg, domain.ShopTypeGrocery, uuid.New(), 5)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	// Products are scoped to their own shop's catalog.
	_, err = svc.Restock(bg, domain.ShopTypeFertilizer, h.rice, 5)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.Restock(bg, domain.ShopTypeGrocery, h.rice, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidStockDelta)

	_, err = svc.Restock(bg, "bakery", h.rice, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidShopType)

	assert.Equal(t, 100, h.store.Stock(domain.ShopTypeGrocery, h.rice))
}

func TestCatalogService_Restock_LooksUpBeforeWriting(t *testing.T) {
	catalog := new(mocks.MockCatalogRepo)
	txm := new(mocks.MockTxManager)
	svc := service.NewCatalogService(txm, catalog, service.NewStockLedger(catalog), zerolog.Nop())
	id := uuid.New()

	catalog.On("GetProduct", mock.Anything, domain.ShopTypeFertilizer, id).Return(nil, domain.ErrProductNotFound).Once()

	_, err := svc.Restock(bg, domain.ShopTypeFertilizer, id, 5)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	catalog.AssertNotCalled(t, "AdjustStock")
	txm.AssertNotCalled(t, "Begin")
}

package service_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shopbill/internal/config"
	"shopbill/internal/domain"
	"shopbill/internal/port"
	"shopbill/internal/repository/memory"
	"shopbill/internal/service"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// 16:00 IST on 15 March 2024.
var defaultNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type harness struct {
	store    *memory.Store
	clock    *clock
	svc      service.InvoiceService
	rice     uuid.UUID
	dal      uuid.UUID
	urea     uuid.UUID
	customer uuid.UUID
}

type harnessOpts struct {
	counters port.InvoiceCounterRepository
	catalog  port.CatalogRepository
	idem     port.IdempotencyStore
	log      io.Writer
}

func newHarness(t *testing.T, opts harnessOpts) *harness {
	t.Helper()
	return newHarnessOn(t, memory.NewStore(), opts)
}

// newHarnessOn seeds store, for tests that wrap one of its repositories.
func newHarnessOn(t *testing.T, store *memory.Store, opts harnessOpts) *harness {
	t.Helper()
	h := &harness{
		store:    store,
		clock:    &clock{now: defaultNow},
		rice:     uuid.New(),
		dal:      uuid.New(),
		urea:     uuid.New(),
		customer: uuid.New(),
	}

	store.PutProduct(domain.Product{ID: h.rice, ShopType: domain.ShopTypeGrocery, Name: "Sona Masoori Rice", Unit: "kg",
		SellingPrice: dec("50"), GSTRate: dec("5"), Stock: 100, MinStock: 10})
	store.PutProduct(domain.Product{ID: h.dal, ShopType: domain.ShopTypeGrocery, Name: "Toor Dal", Unit: "kg",
		SellingPrice: dec("120"), GSTRate: dec("0"), Stock: 3, MinStock: 5})
	store.PutProduct(domain.Product{ID: h.urea, ShopType: domain.ShopTypeFertilizer, Name: "Urea 45kg", Unit: "bag",
		SellingPrice: dec("266.50"), GSTRate: dec("5"), Stock: 40})
	store.PutCustomer(domain.Customer{ID: h.customer, Name: "Ramesh Kumar", Phone: "9876543210", Email: "ramesh@example.com"})

	counters := opts.counters
	if counters == nil {
		counters = store.Counters()
	}
	catalog := opts.catalog
	if catalog == nil {
		catalog = store.Catalog()
	}
	l := zerolog.Nop()
	if opts.log != nil {
		l = zerolog.New(opts.log)
	}
	ledger := service.NewCustomerAccountLedger(store.Customers())
	h.svc = service.NewInvoiceService(
		store,
		store.Invoices(),
		store.Payments(),
		store.Customers(),
		service.NewInvoiceNumberAllocator(counters, ist),
		service.NewStockLedger(catalog),
		ledger,
		service.NewPaymentRecorder(store.Invoices(), store.Payments(), ledger),
		opts.idem,
		config.BillingConfig{NumberRetries: 3},
		h.clock.Now,
		l,
	)
	return h
}

func (h *harness) customerState(t *testing.T) domain.Customer {
	t.Helper()
	c, ok := h.store.Customer(h.customer)
	require.True(t, ok)
	return c
}

func riceInput(h *harness, qty int) *service.CreateInvoiceInput {
	return &service.CreateInvoiceInput{
		ShopType: domain.ShopTypeGrocery,
		Items: []service.InvoiceItemInput{
			{ProductID: h.rice, Quantity: qty, UnitPrice: dec("50"), GSTRate: dec("5")},
		},
	}
}

var bg = context.Background()

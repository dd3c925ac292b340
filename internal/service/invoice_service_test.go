package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopbill/internal/domain"
	"shopbill/internal/port"
	"shopbill/internal/repository/memory"
	"shopbill/internal/service"
	"shopbill/mocks"
)

func TestInvoiceService_CreateInvoice_PaidInFull(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	in := riceInput(h, 10)
	in.CustomerName = "Walk-in"
	in.Discount = dec("25")
	in.Payments = []service.PaymentInput{{Amount: dec("500"), Method: domain.PaymentMethodCash}}

	inv, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)

	assert.Equal(t, "GRO-20240315-0001", inv.InvoiceNumber)
	assert.True(t, inv.SubTotal.Equal(dec("500")))
	assert.True(t, inv.GSTAmount.Equal(dec("25")))
	assert.True(t, inv.GrandTotal.Equal(dec("500")))
	assert.True(t, inv.PaidAmount.Equal(dec("500")))
	assert.Equal(t, domain.PaymentStatusPaid, inv.PaymentStatus)
	assert.Equal(t, "Walk-in", inv.CustomerName)
	assert.Nil(t, inv.CustomerID)

	require.Len(t, inv.Items, 1)
	assert.Equal(t, 1, inv.Items[0].LineNo)
	assert.Equal(t, "Sona Masoori Rice", inv.Items[0].ProductName)
	assert.True(t, inv.Items[0].TotalPrice.Equal(dec("525")))
	require.Len(t, inv.Payments, 1)

	assert.Equal(t, 90, h.store.Stock(domain.ShopTypeGrocery, h.rice))

	stored, err := h.svc.GetByID(bg, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, stored.InvoiceNumber)
	assert.Len(t, stored.Items, 1)
	assert.Len(t, stored.Payments, 1)
}

func TestInvoiceService_PartialThenSettled_CreditNetsToZero(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	before := h.customerState(t)

	in := riceInput(h, 20)
	in.Items[0].GSTRate = dec("0")
	in.CustomerID = &h.customer
	in.Payments = []service.PaymentInput{{Amount: dec("400"), Method: domain.PaymentMethodUPI, ReferenceNumber: "UPI-1"}}

	inv, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)
	assert.True(t, inv.GrandTotal.Equal(dec("1000")))
	assert.Equal(t, domain.PaymentStatusPartial, inv.PaymentStatus)
	assert.Equal(t, "Ramesh Kumar", inv.CustomerName)
	assert.Equal(t, "9876543210", inv.CustomerPhone)

	mid := h.customerState(t)
	assert.True(t, mid.TotalCredit.Sub(before.TotalCredit).Equal(dec("600")))
	assert.True(t, mid.TotalPurchases.Sub(before.TotalPurchases).Equal(dec("1000")))

	settled, err := h.svc.SettleInvoicePayment(bg, inv.ID, service.PaymentInput{Amount: dec("600"), Method: domain.PaymentMethodCash})
	require.NoError(t, err)
	assert.True(t, settled.PaidAmount.Equal(dec("1000")))
	assert.Equal(t, domain.PaymentStatusPaid, settled.PaymentStatus)
	require.Len(t, settled.Payments, 2)

	total := settled.Payments[0].Amount.Add(settled.Payments[1].Amount)
	assert.True(t, total.Equal(settled.PaidAmount))

	after := h.customerState(t)
	assert.True(t, after.TotalCredit.Equal(before.TotalCredit))

	_, err = h.svc.SettleInvoicePayment(bg, inv.ID, service.PaymentInput{Amount: dec("1"), Method: domain.PaymentMethodCash})
	assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyPaid)
}

func TestInvoiceService_RequestCustomerFieldsAreFallback(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	h.store.PutCustomer(domain.Customer{ID: h.customer, Name: "Ramesh Kumar"})

	in := riceInput(h, 1)
	in.CustomerID = &h.customer
	in.CustomerName = "Someone Else"
	in.CustomerPhone = "9000000000"

	inv, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)
	assert.Equal(t, "Ramesh Kumar", inv.CustomerName)
	assert.Equal(t, "9000000000", inv.CustomerPhone)
}

func TestInvoiceService_InsufficientStock_RollsBackEverything(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	in := riceInput(h, 5)
	in.CustomerID = &h.customer
	in.Items = append(in.Items, service.InvoiceItemInput{ProductID: h.dal, Quantity: 4, UnitPrice: dec("120"), GSTRate: dec("0")})

	_, err := h.svc.CreateInvoice(bg, in)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.Equal(t, 100, h.store.Stock(domain.ShopTypeGrocery, h.rice))
	assert.Equal(t, 3, h.store.Stock(domain.ShopTypeGrocery, h.dal))
	assert.Equal(t, 0, h.store.InvoiceCount())
	assert.True(t, h.customerState(t).TotalPurchases.IsZero())

	// The counter increment was rolled back with the failed invoice.
	inv, err := h.svc.CreateInvoice(bg, riceInput(h, 1))
	require.NoError(t, err)
	assert.Equal(t, "GRO-20240315-0001", inv.InvoiceNumber)
}

func TestInvoiceService_DuplicateLinesAggregateStock(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	in := &service.CreateInvoiceInput{
		ShopType: domain.ShopTypeGrocery,
		Items: []service.InvoiceItemInput{
			{ProductID: h.dal, Quantity: 2, UnitPrice: dec("120"), GSTRate: dec("0")},
			{ProductID: h.dal, Quantity: 2, UnitPrice: dec("120"), GSTRate: dec("0")},
		},
	}
	_, err := h.svc.CreateInvoice(bg, in)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 3, h.store.Stock(domain.ShopTypeGrocery, h.dal))
}

func TestInvoiceService_WarnsOnLowStock(t *testing.T) {
	var logs bytes.Buffer
	h := newHarness(t, harnessOpts{log: &logs})
	in := riceInput(h, 1)
	in.Items = append(in.Items, service.InvoiceItemInput{ProductID: h.dal, Quantity: 1, UnitPrice: dec("120"), GSTRate: dec("0")})

	_, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "product at or below reorder level")
	assert.Contains(t, out, `"product":"Toor Dal"`)
	assert.Contains(t, out, `"stock":2`)
	assert.NotContains(t, out, "Sona Masoori Rice")
}

func TestInvoiceService_NoLowStockWarningOnRollback(t *testing.T) {
	var logs bytes.Buffer
	h := newHarness(t, harnessOpts{log: &logs})
	in := &service.CreateInvoiceInput{
		ShopType: domain.ShopTypeGrocery,
		Items: []service.InvoiceItemInput{
			{ProductID: h.dal, Quantity: 1, UnitPrice: dec("120"), GSTRate: dec("0")},
			{ProductID: h.rice, Quantity: 500, UnitPrice: dec("50"), GSTRate: dec("5")},
		},
	}
	_, err := h.svc.CreateInvoice(bg, in)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NotContains(t, logs.String(), "reorder level")
}

// cancellingCatalog cancels the request after the first stock write lands.
type cancellingCatalog struct {
	port.CatalogRepository
	cancel context.CancelFunc
}

func (c cancellingCatalog) AdjustStock(ctx context.Context, tx port.Tx, shopType domain.ShopType, id uuid.UUID, delta int) (*domain.Product, error) {
	p, err := c.CatalogRepository.AdjustStock(ctx, tx, shopType, id, delta)
	c.cancel()
	return p, err
}

func TestInvoiceService_CancelledMidCreate_RollsBack(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(bg)
	defer cancel()
	h := newHarnessOn(t, store, harnessOpts{catalog: cancellingCatalog{CatalogRepository: store.Catalog(), cancel: cancel}})

	in := riceInput(h, 2)
	in.CustomerID = &h.customer
	_, err := h.svc.CreateInvoice(ctx, in)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 100, h.store.Stock(domain.ShopTypeGrocery, h.rice))
	assert.Equal(t, 0, h.store.InvoiceCount())
	assert.True(t, h.customerState(t).TotalCredit.IsZero())

	// A stuck writer slot would block Begin until the deadline.
	later, done := context.WithTimeout(bg, 2*time.Second)
	defer done()
	inv, err := h.svc.CreateInvoice(later, riceInput(h, 2))
	require.NoError(t, err)
	assert.Equal(t, "GRO-20240315-0001", inv.InvoiceNumber)
	assert.Equal(t, 98, h.store.Stock(domain.ShopTypeGrocery, h.rice))
}

func TestInvoiceService_UnknownReferences(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	in := riceInput(h, 1)
	in.Items[0].ProductID = uuid.New()
	_, err := h.svc.CreateInvoice(bg, in)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	in = riceInput(h, 1)
	missing := uuid.New()
	in.CustomerID = &missing
	_, err = h.svc.CreateInvoice(bg, in)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	// Rice is a grocery product; the fertilizer catalog does not have it.
	in = riceInput(h, 1)
	in.ShopType = domain.ShopTypeFertilizer
	_, err = h.svc.CreateInvoice(bg, in)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	assert.Equal(t, 0, h.store.InvoiceCount())
}

func TestInvoiceService_CreateInvoice_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *service.CreateInvoiceInput)
		wantErr error
	}{
		{"no items", func(in *service.CreateInvoiceInput) { in.Items = nil }, domain.ErrEmptyItems},
		{"bad shop type", func(in *service.CreateInvoiceInput) { in.ShopType = "pharmacy" }, domain.ErrInvalidShopType},
		{"zero quantity", func(in *service.CreateInvoiceInput) { in.Items[0].Quantity = 0 }, domain.ErrInvalidQuantity},
		{"negative price", func(in *service.CreateInvoiceInput) { in.Items[0].UnitPrice = dec("-1") }, domain.ErrInvalidUnitPrice},
		{"sub-paisa price", func(in *service.CreateInvoiceInput) { in.Items[0].UnitPrice = dec("1.005") }, domain.ErrInvalidUnitPrice},
		{"gst off slab", func(in *service.CreateInvoiceInput) { in.Items[0].GSTRate = dec("7") }, domain.ErrInvalidGSTRate},
		{"negative discount", func(in *service.CreateInvoiceInput) { in.Discount = dec("-5") }, domain.ErrInvalidDiscount},
		{"discount above total", func(in *service.CreateInvoiceInput) { in.Discount = dec("52.51") }, domain.ErrDiscountExceedsTotal},
		{"zero payment", func(in *service.CreateInvoiceInput) {
			in.Payments = []service.PaymentInput{{Amount: dec("0"), Method: domain.PaymentMethodCash}}
		}, domain.ErrInvalidPaymentAmount},
		{"unknown method", func(in *service.CreateInvoiceInput) {
			in.Payments = []service.PaymentInput{{Amount: dec("10"), Method: "cheque"}}
		}, domain.ErrInvalidPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, harnessOpts{})
			in := riceInput(h, 1)
			tt.mutate(in)

			_, err := h.svc.CreateInvoice(bg, in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, 0, h.store.InvoiceCount())
			assert.Equal(t, 100, h.store.Stock(domain.ShopTypeGrocery, h.rice))
		})
	}
}

func TestInvoiceService_DiscountEqualToTotal(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	in := riceInput(h, 1)
	in.Discount = dec("52.50")

	inv, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)
	assert.True(t, inv.GrandTotal.IsZero())
	assert.Equal(t, domain.PaymentStatusPaid, inv.PaymentStatus)
}

func TestInvoiceService_NumbersPerShopAndBusinessDay(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	gro, err := h.svc.CreateInvoice(bg, riceInput(h, 1))
	require.NoError(t, err)
	assert.Equal(t, "GRO-20240315-0001", gro.InvoiceNumber)

	fer, err := h.svc.CreateInvoice(bg, &service.CreateInvoiceInput{
		ShopType: domain.ShopTypeFertilizer,
		Items:    []service.InvoiceItemInput{{ProductID: h.urea, Quantity: 2, UnitPrice: dec("266.50"), GSTRate: dec("5")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "FER-20240315-0001", fer.InvoiceNumber)

	// 19:00 UTC is already the next day in IST.
	h.clock.Set(time.Date(2024, 3, 15, 19, 0, 0, 0, time.UTC))
	next, err := h.svc.CreateInvoice(bg, riceInput(h, 1))
	require.NoError(t, err)
	assert.Equal(t, "GRO-20240316-0001", next.InvoiceNumber)
}

func TestInvoiceService_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	const n = 25

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := h.svc.CreateInvoice(bg, riceInput(h, 4))
			if err != nil {
				errs <- err
				return
			}
			numbers <- inv.InvoiceNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}

	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate invoice number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[fmt.Sprintf("GRO-20240315-%04d", i)])
	}
	assert.Equal(t, 0, h.store.Stock(domain.ShopTypeGrocery, h.rice))
}

func TestInvoiceService_ConcurrentCreatesNeverOversell(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.CreateInvoice(bg, &service.CreateInvoiceInput{
				ShopType: domain.ShopTypeGrocery,
				Items:    []service.InvoiceItemInput{{ProductID: h.dal, Quantity: 1, UnitPrice: dec("120"), GSTRate: dec("0")}},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, h.store.Stock(domain.ShopTypeGrocery, h.dal))
	assert.Equal(t, 3, h.store.InvoiceCount())
}

func issueNumber(t *testing.T, h *harness, number string) {
	t.Helper()
	tx, err := h.store.Begin(bg)
	require.NoError(t, err)
	require.NoError(t, h.store.Invoices().Create(bg, tx, &domain.Invoice{InvoiceNumber: number, ShopType: domain.ShopTypeGrocery}))
	require.NoError(t, tx.Commit())
}

func TestInvoiceService_RetriesOnNumberConflict(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	// Issued outside the counter, e.g. restored from a backup.
	issueNumber(t, h, "GRO-20240315-0001")

	inv, err := h.svc.CreateInvoice(bg, riceInput(h, 2))
	require.NoError(t, err)
	assert.Equal(t, "GRO-20240315-0002", inv.InvoiceNumber)
	assert.Equal(t, 98, h.store.Stock(domain.ShopTypeGrocery, h.rice))

	next, err := h.svc.CreateInvoice(bg, riceInput(h, 1))
	require.NoError(t, err)
	assert.Equal(t, "GRO-20240315-0003", next.InvoiceNumber)
	assert.Equal(t, 3, h.store.InvoiceCount())
}

func TestInvoiceService_ResyncSkipsEveryTakenNumber(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	for i := 1; i <= 5; i++ {
		issueNumber(t, h, fmt.Sprintf("GRO-20240315-%04d", i))
	}
	issueNumber(t, h, "GRO-20240314-0042")

	inv, err := h.svc.CreateInvoice(bg, riceInput(h, 1))
	require.NoError(t, err)
	assert.Equal(t, "GRO-20240315-0006", inv.InvoiceNumber)

	other, err := h.svc.CreateInvoice(bg, &service.CreateInvoiceInput{
		ShopType: domain.ShopTypeFertilizer,
		Items:    []service.InvoiceItemInput{{ProductID: h.urea, Quantity: 1, UnitPrice: dec("266.50"), GSTRate: dec("5")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "FER-20240315-0001", other.InvoiceNumber)
}

func TestInvoiceService_GivesUpAfterRetries(t *testing.T) {
	counters := new(mocks.MockInvoiceCounterRepo)
	h := newHarness(t, harnessOpts{counters: counters})
	issueNumber(t, h, "GRO-20240315-0001")

	counters.On("Next", mock.Anything, mock.Anything, domain.ShopTypeGrocery, mock.Anything).Return(1, nil).Times(3)
	counters.On("Resync", mock.Anything, mock.Anything, domain.ShopTypeGrocery, mock.Anything, "GRO-20240315-").Return(1, nil).Twice()

	_, err := h.svc.CreateInvoice(bg, riceInput(h, 2))
	assert.ErrorIs(t, err, domain.ErrInvoiceNumberConflict)
	assert.Equal(t, 100, h.store.Stock(domain.ShopTypeGrocery, h.rice))
	counters.AssertExpectations(t)
}

func TestInvoiceService_NumberSpaceExhausted(t *testing.T) {
	counters := new(mocks.MockInvoiceCounterRepo)
	h := newHarness(t, harnessOpts{counters: counters})
	counters.On("Next", mock.Anything, mock.Anything, domain.ShopTypeGrocery, mock.Anything).Return(10000, nil).Once()

	_, err := h.svc.CreateInvoice(bg, riceInput(h, 1))
	assert.ErrorIs(t, err, domain.ErrInvoiceNumberExhausted)
	assert.Equal(t, 0, h.store.InvoiceCount())
}

func TestInvoiceService_IdempotentReplay(t *testing.T) {
	idem := new(mocks.MockIdempotencyStore)
	h := newHarness(t, harnessOpts{idem: idem})

	released := false
	release := func() { released = true }
	idem.On("Acquire", mock.Anything, "key-1").Return(uuid.Nil, release, nil).Once()
	idem.On("Complete", mock.Anything, "key-1", mock.AnythingOfType("uuid.UUID")).Return(nil).Once()

	in := riceInput(h, 3)
	in.IdempotencyKey = "key-1"
	first, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)
	assert.True(t, released)

	idem.On("Acquire", mock.Anything, "key-1").Return(first.ID, nil, nil).Once()
	second, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.Equal(t, 1, h.store.InvoiceCount())
	assert.Equal(t, 97, h.store.Stock(domain.ShopTypeGrocery, h.rice))
	idem.AssertExpectations(t)
}

func TestInvoiceService_IdempotencyInFlight(t *testing.T) {
	idem := new(mocks.MockIdempotencyStore)
	h := newHarness(t, harnessOpts{idem: idem})
	idem.On("Acquire", mock.Anything, "key-2").Return(uuid.Nil, nil, domain.ErrDuplicateSubmission).Once()

	in := riceInput(h, 1)
	in.IdempotencyKey = "key-2"
	_, err := h.svc.CreateInvoice(bg, in)
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)
	assert.Equal(t, 0, h.store.InvoiceCount())
}

func TestInvoiceService_IdempotencyCompleteFailureKeepsInvoice(t *testing.T) {
	idem := new(mocks.MockIdempotencyStore)
	h := newHarness(t, harnessOpts{idem: idem})
	idem.On("Acquire", mock.Anything, "key-3").Return(uuid.Nil, func() {}, nil).Once()
	idem.On("Complete", mock.Anything, "key-3", mock.Anything).Return(errors.New("redis down")).Once()

	in := riceInput(h, 1)
	in.IdempotencyKey = "key-3"
	inv, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)
	assert.NotEmpty(t, inv.InvoiceNumber)
}

func TestInvoiceService_Settle_Overpayment(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	inv, err := h.svc.CreateInvoice(bg, riceInput(h, 10))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusUnpaid, inv.PaymentStatus)

	settled, err := h.svc.SettleInvoicePayment(bg, inv.ID, service.PaymentInput{Amount: dec("600"), Method: domain.PaymentMethodCash})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, settled.PaymentStatus)
	assert.True(t, settled.PaidAmount.Equal(dec("600")))
	assert.True(t, settled.Outstanding().IsZero())
}

func TestInvoiceService_Settle_OverpaymentClearsOnlyThatInvoice(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	in := riceInput(h, 10)
	in.CustomerID = &h.customer
	a, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)
	_, err = h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)
	assert.True(t, h.customerState(t).TotalCredit.Equal(dec("1050")))

	settled, err := h.svc.SettleInvoicePayment(bg, a.ID, service.PaymentInput{Amount: dec("600"), Method: domain.PaymentMethodCash})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, settled.PaymentStatus)
	assert.True(t, settled.PaidAmount.Equal(dec("600")))
	assert.True(t, h.customerState(t).TotalCredit.Equal(dec("525")))
}

func TestInvoiceService_Settle_NegativeCreditRollsBack(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	in := riceInput(h, 10)
	in.CustomerID = &h.customer
	inv, err := h.svc.CreateInvoice(bg, in)
	require.NoError(t, err)

	// Credit written off outside billing.
	c := h.customerState(t)
	c.TotalCredit = decimal.Zero
	h.store.PutCustomer(c)

	_, err = h.svc.SettleInvoicePayment(bg, inv.ID, service.PaymentInput{Amount: dec("100"), Method: domain.PaymentMethodCash})
	assert.ErrorIs(t, err, domain.ErrNegativeCredit)

	stored, err := h.svc.GetByID(bg, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Payments)
	assert.True(t, stored.PaidAmount.IsZero())
	assert.True(t, h.customerState(t).TotalCredit.IsZero())
}

func TestInvoiceService_Settle_StatusNeverRegresses(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	inv, err := h.svc.CreateInvoice(bg, riceInput(h, 10))
	require.NoError(t, err)

	prev := inv.PaymentStatus
	for _, amt := range []string{"100", "200.50", "224.50"} {
		got, err := h.svc.SettleInvoicePayment(bg, inv.ID, service.PaymentInput{Amount: dec(amt), Method: domain.PaymentMethodCard})
		require.NoError(t, err)
		assert.Equal(t, got.PaymentStatus, got.PaymentStatus.Advance(prev), "status went back from %s to %s", prev, got.PaymentStatus)
		prev = got.PaymentStatus
	}
	assert.Equal(t, domain.PaymentStatusPaid, prev)
}

func TestInvoiceService_Settle_Errors(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	_, err := h.svc.SettleInvoicePayment(bg, uuid.New(), service.PaymentInput{Amount: dec("10"), Method: domain.PaymentMethodCash})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	inv, err := h.svc.CreateInvoice(bg, riceInput(h, 1))
	require.NoError(t, err)

	_, err = h.svc.SettleInvoicePayment(bg, inv.ID, service.PaymentInput{Amount: dec("-10"), Method: domain.PaymentMethodCash})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentAmount)

	_, err = h.svc.SettleInvoicePayment(bg, inv.ID, service.PaymentInput{Amount: dec("10"), Method: "barter"})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"shopbill/internal/config"
	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// InvoiceItemInput is one requested line of a new invoice.
type InvoiceItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"money_nonnegative" swaggertype:"string" example:"50.00"`
	GSTRate   decimal.Decimal `json:"gst_rate" binding:"gst_rate" swaggertype:"string" example:"5"`
}

// CreateInvoiceInput is the DTO for invoice creation.
type CreateInvoiceInput struct {
	ShopType      domain.ShopType    `json:"shop_type" binding:"omitempty,shop_type" example:"grocery"`
	CustomerID    *uuid.UUID         `json:"customer_id"`
	CustomerName  string             `json:"customer_name" binding:"max=255"`
	CustomerPhone string             `json:"customer_phone" binding:"max=20"`
	Items         []InvoiceItemInput `json:"items" binding:"required,min=1,dive"`
	Discount      decimal.Decimal    `json:"discount" binding:"money_nonnegative" swaggertype:"string" example:"0"`
	Payments      []PaymentInput     `json:"payments" binding:"dive"`
	Notes         string             `json:"notes" binding:"max=1000"`

	CreatedBy      uuid.UUID `json:"-"`
	IdempotencyKey string    `json:"-"`
}

// InvoiceService coordinates invoice creation and settlement as single units of work.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error)
	SettleInvoicePayment(ctx context.Context, invoiceID uuid.UUID, input PaymentInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)
}

type invoiceService struct {
	txm       port.TxManager
	invoices  port.InvoiceRepository
	payments  port.PaymentRepository
	customers port.CustomerRepository
	numbers   InvoiceNumberAllocator
	stock     StockLedger
	ledger    CustomerAccountLedger
	recorder  PaymentRecorder
	idem      port.IdempotencyStore
	retries   int
	now       func() time.Time
	log       zerolog.Logger
}

// NewInvoiceService creates a new InvoiceService implementation.
// idem may be nil, in which case idempotency keys are ignored.
func NewInvoiceService(
	txm port.TxManager,
	invoices port.InvoiceRepository,
	payments port.PaymentRepository,
	customers port.CustomerRepository,
	numbers InvoiceNumberAllocator,
	stock StockLedger,
	ledger CustomerAccountLedger,
	recorder PaymentRecorder,
	idem port.IdempotencyStore,
	cfg config.BillingConfig,
	clock func() time.Time,
	log zerolog.Logger,
) InvoiceService {
	retries := cfg.NumberRetries
	if retries < 1 {
		retries = 1
	}
	if clock == nil {
		clock = time.Now
	}
	return &invoiceService{
		txm:       txm,
		invoices:  invoices,
		payments:  payments,
		customers: customers,
		numbers:   numbers,
		stock:     stock,
		ledger:    ledger,
		recorder:  recorder,
		idem:      idem,
		retries:   retries,
		now:       clock,
		log:       log,
	}
}

// draft is a validated invoice whose arithmetic is done and which only needs persisting.
type draft struct {
	input  *CreateInvoiceInput
	lines  []domain.LineAmounts
	totals domain.InvoiceTotals
	paid   decimal.Decimal
	status domain.PaymentStatus
}

func buildDraft(in *CreateInvoiceInput) (*draft, error) {
	if !in.ShopType.Valid() {
		return nil, domain.ErrInvalidShopType
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	lines := make([]domain.LineAmounts, len(in.Items))
	for i, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item %d: %w", i+1, domain.ErrInvalidQuantity)
		}
		if item.UnitPrice.IsNegative() || !item.UnitPrice.Equal(domain.RoundMoney(item.UnitPrice)) {
			return nil, fmt.Errorf("item %d: %w", i+1, domain.ErrInvalidUnitPrice)
		}
		if !domain.IsAllowedGSTRate(item.GSTRate) {
			return nil, fmt.Errorf("item %d: %w", i+1, domain.ErrInvalidGSTRate)
		}
		lines[i] = domain.ComputeLine(item.Quantity, item.UnitPrice, item.GSTRate)
	}

	totals, err := domain.SumTotals(lines, in.Discount)
	if err != nil {
		return nil, err
	}

	paid := decimal.Zero
	for i := range in.Payments {
		if err := in.Payments[i].validate(); err != nil {
			return nil, fmt.Errorf("payment %d: %w", i+1, err)
		}
		paid = paid.Add(in.Payments[i].Amount)
	}

	return &draft{
		input:  in,
		lines:  lines,
		totals: totals,
		paid:   paid,
		status: domain.ResolvePaymentStatus(paid, totals.GrandTotal),
	}, nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error) {
	d, err := buildDraft(input)
	if err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" && s.idem != nil {
		existing, release, err := s.idem.Acquire(ctx, input.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != uuid.Nil {
			s.log.Info().Str("idempotency_key", input.IdempotencyKey).
				Str("invoice_id", existing.String()).Msg("replaying committed invoice")
			return s.GetByID(ctx, existing)
		}
		defer release()
	}

	var inv *domain.Invoice
	for attempt := 1; ; attempt++ {
		inv, err = s.createOnce(ctx, d)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrInvoiceNumberConflict) || attempt >= s.retries {
			return nil, err
		}
		s.log.Warn().Err(err).Int("attempt", attempt).
			Str("shop_type", string(input.ShopType)).Msg("invoice number collided, retrying")

		// The failed attempt's counter bump rolled back with it.
		if err := withinTx(ctx, s.txm, func(tx port.Tx) error {
			return s.numbers.Resync(ctx, tx, input.ShopType, s.now().UTC())
		}); err != nil {
			return nil, err
		}
	}

	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Complete(ctx, input.IdempotencyKey, inv.ID); err != nil {
			s.log.Error().Err(err).Str("idempotency_key", input.IdempotencyKey).
				Msg("failed to record idempotency key")
		}
	}

	s.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("shop_type", string(inv.ShopType)).
		Str("grand_total", inv.GrandTotal.StringFixed(2)).
		Str("payment_status", string(inv.PaymentStatus)).
		Msg("invoice created")
	return inv, nil
}

// createOnce runs number allocation, stock, invoice, items, payments and customer
// ledger writes in one transaction.
func (s *invoiceService) createOnce(ctx context.Context, d *draft) (*domain.Invoice, error) {
	in := d.input
	var inv *domain.Invoice
	var lowStock []*domain.Product

	err := withinTx(ctx, s.txm, func(tx port.Tx) error {
		issuedAt := s.now().UTC()
		number, err := s.numbers.Allocate(ctx, tx, in.ShopType, issuedAt)
		if err != nil {
			return err
		}

		name, phone := in.CustomerName, in.CustomerPhone
		if in.CustomerID != nil {
			c, err := s.customers.GetByID(ctx, tx, *in.CustomerID)
			if err != nil {
				return err
			}
			name = firstNonEmpty(c.Name, name)
			phone = firstNonEmpty(c.Phone, phone)
		}

		products, err := s.decrementStock(ctx, tx, in.ShopType, in.Items)
		if err != nil {
			return err
		}
		for _, p := range products {
			if p.LowStock() {
				lowStock = append(lowStock, p)
			}
		}

		inv = &domain.Invoice{
			ID:            uuid.New(),
			InvoiceNumber: number,
			ShopType:      in.ShopType,
			CustomerID:    in.CustomerID,
			CustomerName:  name,
			CustomerPhone: phone,
			SubTotal:      d.totals.SubTotal,
			Discount:      d.totals.Discount,
			GSTAmount:     d.totals.GSTAmount,
			GrandTotal:    d.totals.GrandTotal,
			PaidAmount:    d.paid,
			PaymentStatus: d.status,
			Notes:         in.Notes,
			CreatedBy:     in.CreatedBy,
			CreatedAt:     issuedAt,
		}
		if err := s.invoices.Create(ctx, tx, inv); err != nil {
			return err
		}

		items := make([]domain.InvoiceItem, len(in.Items))
		for i, item := range in.Items {
			p := products[item.ProductID]
			items[i] = domain.InvoiceItem{
				ID:          uuid.New(),
				InvoiceID:   inv.ID,
				LineNo:      i + 1,
				ProductType: in.ShopType,
				ProductID:   item.ProductID,
				ProductName: p.Name,
				Unit:        p.Unit,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				GSTRate:     item.GSTRate,
				GSTAmount:   d.lines[i].GSTAmount,
				TotalPrice:  d.lines[i].TotalPrice,
			}
		}
		if err := s.invoices.CreateItems(ctx, tx, items); err != nil {
			return err
		}
		inv.Items = items

		inv.Payments = make([]domain.Payment, 0, len(in.Payments))
		for _, pin := range in.Payments {
			p, err := s.recorder.Record(ctx, tx, inv.ID, pin)
			if err != nil {
				return err
			}
			inv.Payments = append(inv.Payments, *p)
		}

		if in.CustomerID != nil {
			if _, err := s.ledger.ApplyInvoiceCharge(ctx, tx, *in.CustomerID, inv.GrandTotal, inv.Outstanding()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, p := range lowStock {
		s.log.Warn().Str("shop_type", string(in.ShopType)).Str("product_id", p.ID.String()).
			Str("product", p.Name).Int("stock", p.Stock).Int("min_stock", p.MinStock).
			Msg("product at or below reorder level")
	}
	return inv, nil
}

// decrementStock takes stock per distinct product in ascending id order so that
// concurrent invoices lock product rows in the same order.
func (s *invoiceService) decrementStock(ctx context.Context, tx port.Tx, shopType domain.ShopType, items []InvoiceItemInput) (map[uuid.UUID]*domain.Product, error) {
	qty := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		qty[item.ProductID] += item.Quantity
	}
	ids := make([]uuid.UUID, 0, len(qty))
	for id := range qty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	products := make(map[uuid.UUID]*domain.Product, len(ids))
	for _, id := range ids {
		p, err := s.stock.Decrement(ctx, tx, shopType, id, qty[id])
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", id, err)
		}
		products[id] = p
	}
	return products, nil
}

func (s *invoiceService) SettleInvoicePayment(ctx context.Context, invoiceID uuid.UUID, input PaymentInput) (*domain.Invoice, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var inv *domain.Invoice
	err := withinTx(ctx, s.txm, func(tx port.Tx) error {
		var err error
		inv, err = s.recorder.Settle(ctx, tx, invoiceID, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("amount", input.Amount.StringFixed(2)).
		Str("payment_status", string(inv.PaymentStatus)).
		Msg("payment settled")
	return s.GetByID(ctx, invoiceID)
}

func (s *invoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	items, err := s.invoices.ListItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	inv.Payments = payments
	return inv, nil
}

// withinTx runs fn in a transaction, committing on success and rolling back otherwise.
func withinTx(ctx context.Context, txm port.TxManager, fn func(tx port.Tx) error) error {
	tx, err := txm.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

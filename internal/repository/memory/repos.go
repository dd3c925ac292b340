package memory

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// Counters returns the store's InvoiceCounterRepository.
func (s *Store) Counters() port.InvoiceCounterRepository { return counterRepo{s} }

// Invoices returns the store's InvoiceRepository.
func (s *Store) Invoices() port.InvoiceRepository { return invoiceRepo{s} }

// Payments returns the store's PaymentRepository.
func (s *Store) Payments() port.PaymentRepository { return paymentRepo{s} }

// Catalog returns the store's CatalogRepository.
func (s *Store) Catalog() port.CatalogRepository { return catalogRepo{s} }

// Customers returns the store's CustomerRepository.
func (s *Store) Customers() port.CustomerRepository { return customerRepo{s} }

// Users returns the store's UserRepository.
func (s *Store) Users() port.UserRepository { return userRepo{s} }

type counterRepo struct{ s *Store }

func (r counterRepo) Next(ctx context.Context, tx port.Tx, shopType domain.ShopType, day time.Time) (int, error) {
	st, err := r.s.working(ctx, tx)
	if err != nil {
		return 0, err
	}
	key := counterKey{shopType: shopType, day: day.Format("2006-01-02")}
	st.counters[key]++
	return st.counters[key], nil
}

func (r counterRepo) Resync(ctx context.Context, tx port.Tx, shopType domain.ShopType, day time.Time, numberPrefix string) (int, error) {
	st, err := r.s.working(ctx, tx)
	if err != nil {
		return 0, err
	}
	key := counterKey{shopType: shopType, day: day.Format("2006-01-02")}
	for number := range st.numbers {
		suffix, ok := strings.CutPrefix(number, numberPrefix)
		if !ok {
			continue
		}
		if seq, err := strconv.Atoi(suffix); err == nil && seq > st.counters[key] {
			st.counters[key] = seq
		}
	}
	return st.counters[key], nil
}

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) Create(ctx context.Context, tx port.Tx, inv *domain.Invoice) error {
	st, err := r.s.working(ctx, tx)
	if err != nil {
		return err
	}
	if _, taken := st.numbers[inv.InvoiceNumber]; taken {
		return domain.ErrInvoiceNumberConflict
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	inv.UpdatedAt = inv.CreatedAt

	stored := *inv
	stored.Items, stored.Payments = nil, nil
	st.invoices[inv.ID] = stored
	st.numbers[inv.InvoiceNumber] = inv.ID
	return nil
}

func (r invoiceRepo) CreateItems(ctx context.Context, tx port.Tx, items []domain.InvoiceItem) error {
	st, err := r.s.working(ctx, tx)
	if err != nil {
		return err
	}
	for i := range items {
		if _, ok := st.invoices[items[i].InvoiceID]; !ok {
			return domain.ErrInvoiceNotFound
		}
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		st.items[items[i].InvoiceID] = append(st.items[items[i].InvoiceID], items[i])
	}
	return nil
}

func (r invoiceRepo) GetForUpdate(ctx context.Context, tx port.Tx, id uuid.UUID) (*domain.Invoice, error) {
	st, err := r.s.working(ctx, tx)
	if err != nil {
		return nil, err
	}
	inv, ok := st.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (r invoiceRepo) ApplyPayment(ctx context.Context, tx port.Tx, id uuid.UUID, amount decimal.Decimal, status domain.PaymentStatus) (*domain.Invoice, error) {
	st, err := r.s.working(ctx, tx)
	if err != nil {
		return nil, err
	}
	inv, ok := st.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.PaymentStatus = status
	inv.UpdatedAt = time.Now().UTC()
	st.invoices[id] = inv
	return &inv, nil
}

func (r invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var out *domain.Invoice
	err := r.s.read(ctx, nil, func(st *state) error {
		inv, ok := st.invoices[id]
		if !ok {
			return domain.ErrInvoiceNotFound
		}
		out = &inv
		return nil
	})
	return out, err
}

func (r invoiceRepo) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error) {
	var out []domain.InvoiceItem
	err := r.s.read(ctx, nil, func(st *state) error {
		out = slices.Clone(st.items[invoiceID])
		return nil
	})
	return out, err
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(ctx context.Context, tx port.Tx, p *domain.Payment) error {
	st, err := r.s.working(ctx, tx)
	if err != nil {
		return err
	}
	if _, ok := st.invoices[p.InvoiceID]; !ok {
		return domain.ErrInvoiceNotFound
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now().UTC()
	}
	st.payments[p.InvoiceID] = append(st.payments[p.InvoiceID], *p)
	return nil
}

func (r paymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.s.read(ctx, nil, func(st *state) error {
		out = slices.Clone(st.payments[invoiceID])
		return nil
	})
	return out, err
}

type catalogRepo struct{ s *Store }

func (r catalogRepo) GetProduct(ctx context.Context, shopType domain.ShopType, id uuid.UUID) (*domain.Product, error) {
	var out *domain.Product
	err := r.s.read(ctx, nil, func(st *state) error {
		products, ok := st.products[shopType]
		if !ok {
			return domain.ErrInvalidShopType
		}
		p, ok := products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r catalogRepo) AdjustStock(ctx context.Context, tx port.Tx, shopType domain.ShopType, id uuid.UUID, delta int) (*domain.Product, error) {
	st, err := r.s.working(ctx, tx)
	if err != nil {
		return nil, err
	}
	products, ok := st.products[shopType]
	if !ok {
		return nil, domain.ErrInvalidShopType
	}
	p, ok := products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return nil, domain.ErrInsufficientStock
	}
	p.Stock += delta
	products[id] = p
	return &p, nil
}

type customerRepo struct{ s *Store }

func (r customerRepo) GetByID(ctx context.Context, tx port.Tx, id uuid.UUID) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.s.read(ctx, tx, func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r customerRepo) AdjustAggregates(ctx context.Context, tx port.Tx, id uuid.UUID, purchasesDelta, creditDelta decimal.Decimal) (*domain.Customer, error) {
	st, err := r.s.working(ctx, tx)
	if err != nil {
		return nil, err
	}
	c, ok := st.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	credit := c.TotalCredit.Add(creditDelta)
	if credit.IsNegative() {
		return nil, domain.ErrNegativeCredit
	}
	c.TotalPurchases = c.TotalPurchases.Add(purchasesDelta)
	c.TotalCredit = credit
	c.UpdatedAt = time.Now().UTC()
	st.customers[id] = c
	return &c, nil
}

type userRepo struct{ s *Store }

// Create commits immediately; users are not part of billing transactions.
func (r userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.s.apply(ctx, func(st *state) error {
		email := strings.ToLower(strings.TrimSpace(user.Email))
		for _, u := range st.users {
			if u.Email == email {
				return domain.ErrDuplicateEmail
			}
		}
		user.Email = email
		user.ID = uuid.New()
		now := time.Now().UTC()
		user.CreatedAt = now
		user.UpdatedAt = now
		st.users[user.ID] = *user
		return nil
	})
}

func (r userRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := r.s.read(ctx, nil, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var out *domain.User
	err := r.s.read(ctx, nil, func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				out = &u
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	return out, err
}

func (r userRepo) UpdateActiveShop(ctx context.Context, id uuid.UUID, shop domain.ShopType) error {
	return r.s.apply(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.ActiveShop = shop
		u.UpdatedAt = time.Now().UTC()
		st.users[id] = u
		return nil
	})
}

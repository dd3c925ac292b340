// Package memory is a transactional in-process store implementing the billing ports.
// Transactions are serialized and work on a private copy of the state that is
// swapped in on Commit, so a rolled-back transaction leaves no trace.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

type counterKey struct {
	shopType domain.ShopType
	day      string
}

type state struct {
	products  map[domain.ShopType]map[uuid.UUID]domain.Product
	customers map[uuid.UUID]domain.Customer
	users     map[uuid.UUID]domain.User
	invoices  map[uuid.UUID]domain.Invoice
	numbers   map[string]uuid.UUID
	items     map[uuid.UUID][]domain.InvoiceItem
	payments  map[uuid.UUID][]domain.Payment
	counters  map[counterKey]int
}

func newState() *state {
	return &state{
		products: map[domain.ShopType]map[uuid.UUID]domain.Product{
			domain.ShopTypeGrocery:    {},
			domain.ShopTypeFertilizer: {},
		},
		customers: map[uuid.UUID]domain.Customer{},
		users:     map[uuid.UUID]domain.User{},
		invoices:  map[uuid.UUID]domain.Invoice{},
		numbers:   map[string]uuid.UUID{},
		items:     map[uuid.UUID][]domain.InvoiceItem{},
		payments:  map[uuid.UUID][]domain.Payment{},
		counters:  map[counterKey]int{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:  make(map[domain.ShopType]map[uuid.UUID]domain.Product, len(s.products)),
		customers: maps.Clone(s.customers),
		users:     maps.Clone(s.users),
		invoices:  maps.Clone(s.invoices),
		numbers:   maps.Clone(s.numbers),
		items:     make(map[uuid.UUID][]domain.InvoiceItem, len(s.items)),
		payments:  make(map[uuid.UUID][]domain.Payment, len(s.payments)),
		counters:  maps.Clone(s.counters),
	}
	for shop, m := range s.products {
		c.products[shop] = maps.Clone(m)
	}
	for id, items := range s.items {
		c.items[id] = slices.Clone(items)
	}
	for id, payments := range s.payments {
		c.payments[id] = slices.Clone(payments)
	}
	return c
}

// Store holds committed state and hands out serialized transactions.
type Store struct {
	mu        sync.RWMutex
	committed *state
	writer    chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		committed: newState(),
		writer:    make(chan struct{}, 1),
	}
}

type memTx struct {
	store   *Store
	working *state
	mu      sync.Mutex
	done    bool
}

// Begin waits for the single writer slot, then snapshots committed state.
func (s *Store) Begin(ctx context.Context) (port.Tx, error) {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("memory.Begin: %w", ctx.Err())
	}
	s.mu.RLock()
	working := s.committed.clone()
	s.mu.RUnlock()
	return &memTx{store: s, working: working}, nil
}

func (t *memTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Lock()
	t.store.committed = t.working
	t.store.mu.Unlock()
	<-t.store.writer
	return nil
}

func (t *memTx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.working = nil
	<-t.store.writer
	return nil
}

// working returns the tx's private state, checking ownership, liveness and ctx.
func (s *Store) working(ctx context.Context, tx port.Tx) (*state, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mt, ok := tx.(*memTx)
	if !ok || mt == nil || mt.store != s {
		return nil, fmt.Errorf("memory: unsupported transaction type %T", tx)
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.done {
		return nil, sql.ErrTxDone
	}
	return mt.working, nil
}

// read runs fn against tx state when tx is non-nil, else against committed state.
func (s *Store) read(ctx context.Context, tx port.Tx, fn func(*state) error) error {
	if tx != nil {
		st, err := s.working(ctx, tx)
		if err != nil {
			return err
		}
		return fn(st)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.committed)
}

// apply runs fn in its own transaction and commits when it succeeds.
func (s *Store) apply(ctx context.Context, fn func(*state) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	st, err := s.working(ctx, tx)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return tx.Commit()
}

// PutProduct inserts or replaces a catalog product.
func (s *Store) PutProduct(p domain.Product) {
	_ = s.apply(context.Background(), func(st *state) error {
		st.products[p.ShopType][p.ID] = p
		return nil
	})
}

// PutCustomer inserts or replaces a customer.
func (s *Store) PutCustomer(c domain.Customer) {
	_ = s.apply(context.Background(), func(st *state) error {
		st.customers[c.ID] = c
		return nil
	})
}

// Stock returns the committed stock for a product, or -1 when it does not exist.
func (s *Store) Stock(shopType domain.ShopType, id uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.committed.products[shopType][id]
	if !ok {
		return -1
	}
	return p.Stock
}

// Customer returns the committed customer record.
func (s *Store) Customer(id uuid.UUID) (domain.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.committed.customers[id]
	return c, ok
}

// InvoiceCount returns the number of committed invoices.
func (s *Store) InvoiceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.committed.invoices)
}

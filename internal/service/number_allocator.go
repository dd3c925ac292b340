package service

import (
	"context"
	"fmt"
	"time"

	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// maxDailySequence is the largest sequence that fits the four-digit NNNN field.
const maxDailySequence = 9999

// InvoiceNumberAllocator issues {PREFIX}-{YYYYMMDD}-{NNNN} invoice numbers.
type InvoiceNumberAllocator interface {
	Allocate(ctx context.Context, tx port.Tx, shopType domain.ShopType, now time.Time) (string, error)
	// Resync moves the day's counter past every number already issued for shopType.
	Resync(ctx context.Context, tx port.Tx, shopType domain.ShopType, now time.Time) error
}

type invoiceNumberAllocator struct {
	counters port.InvoiceCounterRepository
	loc      *time.Location
}

// NewInvoiceNumberAllocator creates an allocator whose calendar day is taken in loc.
func NewInvoiceNumberAllocator(counters port.InvoiceCounterRepository, loc *time.Location) InvoiceNumberAllocator {
	if loc == nil {
		loc = time.UTC
	}
	return &invoiceNumberAllocator{counters: counters, loc: loc}
}

func (a *invoiceNumberAllocator) Allocate(ctx context.Context, tx port.Tx, shopType domain.ShopType, now time.Time) (string, error) {
	if !shopType.Valid() {
		return "", domain.ErrInvalidShopType
	}
	day := now.In(a.loc)

	seq, err := a.counters.Next(ctx, tx, shopType, day)
	if err != nil {
		return "", fmt.Errorf("allocating invoice number: %w", err)
	}
	if seq > maxDailySequence {
		return "", domain.ErrInvoiceNumberExhausted
	}
	return fmt.Sprintf("%s%04d", numberPrefix(shopType, day), seq), nil
}

func (a *invoiceNumberAllocator) Resync(ctx context.Context, tx port.Tx, shopType domain.ShopType, now time.Time) error {
	if !shopType.Valid() {
		return domain.ErrInvalidShopType
	}
	day := now.In(a.loc)
	if _, err := a.counters.Resync(ctx, tx, shopType, day, numberPrefix(shopType, day)); err != nil {
		return fmt.Errorf("resyncing invoice counter: %w", err)
	}
	return nil
}

func numberPrefix(shopType domain.ShopType, day time.Time) string {
	return shopType.InvoicePrefix() + "-" + day.Format("20060102") + "-"
}

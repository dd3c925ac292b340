package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shopbill/internal/domain"
	"shopbill/internal/service"
	"shopbill/mocks"
)

func TestInvoiceNumberAllocator_Format(t *testing.T) {
	counters := new(mocks.MockInvoiceCounterRepo)
	alloc := service.NewInvoiceNumberAllocator(counters, ist)
	tx := new(mocks.MockTx)

	counters.On("Next", mock.Anything, tx, domain.ShopTypeFertilizer, mock.Anything).Return(42, nil).Once()

	num, err := alloc.Allocate(bg, tx, domain.ShopTypeFertilizer, defaultNow)
	assert.NoError(t, err)
	assert.Equal(t, "FER-20240315-0042", num)
	counters.AssertExpectations(t)
}

func TestInvoiceNumberAllocator_DayInBusinessZone(t *testing.T) {
	counters := new(mocks.MockInvoiceCounterRepo)
	alloc := service.NewInvoiceNumberAllocator(counters, ist)

	lateUTC := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	counters.On("Next", mock.Anything, nil, domain.ShopTypeGrocery, mock.MatchedBy(func(day time.Time) bool {
		return day.Format("2006-01-02") == "2025-01-01"
	})).Return(1, nil).Once()

	num, err := alloc.Allocate(bg, nil, domain.ShopTypeGrocery, lateUTC)
	assert.NoError(t, err)
	assert.Equal(t, "GRO-20250101-0001", num)
	counters.AssertExpectations(t)
}

func TestInvoiceNumberAllocator_Errors(t *testing.T) {
	counters := new(mocks.MockInvoiceCounterRepo)
	alloc := service.NewInvoiceNumberAllocator(counters, ist)

	_, err := alloc.Allocate(bg, nil, "bakery", defaultNow)
	assert.ErrorIs(t, err, domain.ErrInvalidShopType)

	counters.On("Next", mock.Anything, nil, domain.ShopTypeGrocery, mock.Anything).Return(10000, nil).Once()
	_, err = alloc.Allocate(bg, nil, domain.ShopTypeGrocery, defaultNow)
	assert.ErrorIs(t, err, domain.ErrInvoiceNumberExhausted)

	boom := errors.New("connection reset")
	counters.On("Next", mock.Anything, nil, domain.ShopTypeGrocery, mock.Anything).Return(0, boom).Once()
	_, err = alloc.Allocate(bg, nil, domain.ShopTypeGrocery, defaultNow)
	assert.ErrorIs(t, err, boom)
}

func TestInvoiceNumberAllocator_Resync(t *testing.T) {
	counters := new(mocks.MockInvoiceCounterRepo)
	alloc := service.NewInvoiceNumberAllocator(counters, ist)
	tx := new(mocks.MockTx)

	lateUTC := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	counters.On("Resync", mock.Anything, tx, domain.ShopTypeFertilizer, mock.Anything, "FER-20250101-").Return(12, nil).Once()
	assert.NoError(t, alloc.Resync(bg, tx, domain.ShopTypeFertilizer, lateUTC))

	assert.ErrorIs(t, alloc.Resync(bg, tx, "bakery", lateUTC), domain.ErrInvalidShopType)

	boom := errors.New("connection reset")
	counters.On("Resync", mock.Anything, tx, domain.ShopTypeGrocery, mock.Anything, "GRO-20250101-").Return(0, boom).Once()
	assert.ErrorIs(t, alloc.Resync(bg, tx, domain.ShopTypeGrocery, lateUTC), boom)
	counters.AssertExpectations(t)
}

package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ShopType selects which catalog an invoice and its items belong to.
type ShopType string

const (
	ShopTypeGrocery    ShopType = "grocery"
	ShopTypeFertilizer ShopType = "fertilizer"
)

// invoicePrefixes maps each ShopType to the three-letter code used in invoice numbers.
var invoicePrefixes = map[ShopType]string{
	ShopTypeGrocery:    "GRO",
	ShopTypeFertilizer: "FER",
}

// Valid reports whether s is a known shop type.
func (s ShopType) Valid() bool {
	_, ok := invoicePrefixes[s]
	return ok
}

// InvoicePrefix returns the invoice number prefix for the shop type.
func (s ShopType) InvoicePrefix() string {
	return invoicePrefixes[s]
}

// ParseShopType converts a raw string into a ShopType.
func ParseShopType(raw string) (ShopType, error) {
	s := ShopType(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidShopType, raw)
	}
	return s, nil
}

// PaymentStatus is the settlement state of an invoice.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

var paymentStatusRank = map[PaymentStatus]int{
	PaymentStatusUnpaid:  0,
	PaymentStatusPartial: 1,
	PaymentStatusPaid:    2,
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentStatusRank[s]
	return ok
}

// ResolvePaymentStatus maps a paid amount against a grand total:
// nothing paid is unpaid, anything short of the total is partial, the rest is paid.
func ResolvePaymentStatus(paid, grandTotal decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(grandTotal):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

// Advance returns the later of s and next. Status only ever moves forward.
func (s PaymentStatus) Advance(next PaymentStatus) PaymentStatus {
	if paymentStatusRank[next] > paymentStatusRank[s] {
		return next
	}
	return s
}

// PaymentMethod is how a payment was tendered.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodCredit PaymentMethod = "credit"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodCredit:
		return true
	}
	return false
}

// UserRole defines what a staff member may do.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleCashier UserRole = "cashier"
)

// allowedGSTRates is the GST slab set (percent).
var allowedGSTRates = []decimal.Decimal{
	decimal.Zero,
	decimal.RequireFromString("0.25"),
	decimal.NewFromInt(3),
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

// IsAllowedGSTRate reports whether rate is one of the GST slabs.
func IsAllowedGSTRate(rate decimal.Decimal) bool {
	for _, r := range allowedGSTRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// knownCrops is the membership set for fertilizer target crops.
var knownCrops = map[string]bool{
	"paddy": true, "wheat": true, "maize": true, "cotton": true, "sugarcane": true,
	"groundnut": true, "soybean": true, "pulses": true, "millets": true, "mustard": true,
	"vegetables": true, "fruits": true, "tea": true, "coffee": true, "spices": true,
}

// CropList is an ordered list of target crops for a fertilizer product.
type CropList []string

// Validate checks every crop against the known crop set and rejects duplicates.
func (l CropList) Validate() error {
	seen := make(map[string]bool, len(l))
	for _, c := range l {
		if !knownCrops[c] {
			return fmt.Errorf("%w: %q", ErrInvalidCrop, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidCrop, c)
		}
		seen[c] = true
	}
	return nil
}

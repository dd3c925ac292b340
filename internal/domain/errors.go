package domain

import "errors"

// Error categories. Every specific error below wraps exactly one of these so
// callers can branch on the category with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("resource not found")
	ErrConflict    = errors.New("conflict")
	ErrConsistency = errors.New("ledger consistency violation")
)

type categorizedError struct {
	category error
	msg      string
}

func (e *categorizedError) Error() string { return e.msg }
func (e *categorizedError) Unwrap() error { return e.category }

func newError(category error, msg string) error {
	return &categorizedError{category: category, msg: msg}
}

// Validation errors are raised before any transaction opens.
var (
	ErrInvalidShopType      = newError(ErrValidation, "invalid shop type")
	ErrEmptyItems           = newError(ErrValidation, "invoice must contain at least one item")
	ErrInvalidQuantity      = newError(ErrValidation, "item quantity must be greater than zero")
	ErrInvalidUnitPrice     = newError(ErrValidation, "item unit price must not be negative")
	ErrInvalidGSTRate       = newError(ErrValidation, "gst rate is not an allowed slab")
	ErrInvalidDiscount      = newError(ErrValidation, "discount must be a non-negative amount with at most two decimal places")
	ErrDiscountExceedsTotal = newError(ErrValidation, "discount exceeds payable amount")
	ErrInvalidPaymentAmount = newError(ErrValidation, "payment amount must be greater than zero")
	ErrInvalidPaymentMethod = newError(ErrValidation, "invalid payment method")
	ErrInvoiceAlreadyPaid   = newError(ErrValidation, "invoice is already fully paid")
	ErrInvalidStockDelta    = newError(ErrValidation, "stock adjustment must be greater than zero")
	ErrInvalidCrop          = newError(ErrValidation, "unknown target crop")
)

// Not-found errors.
var (
	ErrInvoiceNotFound  = newError(ErrNotFound, "invoice not found")
	ErrProductNotFound  = newError(ErrNotFound, "product not found")
	ErrCustomerNotFound = newError(ErrNotFound, "customer not found")
	ErrUserNotFound     = newError(ErrNotFound, "user not found")
)

// Conflict errors abort the transaction; the caller may retry the whole request.
var (
	ErrInsufficientStock      = newError(ErrConflict, "insufficient stock")
	ErrInvoiceNumberConflict  = newError(ErrConflict, "invoice number allocation collided")
	ErrInvoiceNumberExhausted = newError(ErrConflict, "invoice number sequence exhausted for the day")
	ErrDuplicateSubmission    = newError(ErrConflict, "request with this idempotency key is in progress")
	ErrDuplicateEmail         = newError(ErrConflict, "email already exists")
)

// Consistency errors indicate ledger drift and are never clamped.
var (
	ErrNegativeCredit = newError(ErrConsistency, "settlement would drive customer credit negative")
)

// Authentication errors.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
)

// Receipt distribution errors.
var (
	ErrReceiptSharingDisabled = errors.New("receipt sharing is not configured")
	ErrUploadFailed           = errors.New("file upload to storage failed")
)

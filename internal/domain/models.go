package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is a committed sale. Only PaidAmount, PaymentStatus and UpdatedAt
// change after creation, and only through settlement.
type Invoice struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	ShopType      ShopType        `db:"shop_type" json:"shop_type"`
	CustomerID    *uuid.UUID      `db:"customer_id" json:"customer_id"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerPhone string          `db:"customer_phone" json:"customer_phone"`
	SubTotal      decimal.Decimal `db:"sub_total" json:"sub_total"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	GSTAmount     decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	GrandTotal    decimal.Decimal `db:"grand_total" json:"grand_total"`
	PaidAmount    decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"payment_status"`
	Notes         string          `db:"notes" json:"notes"`
	CreatedBy     uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`

	Items    []InvoiceItem `db:"-" json:"items"`
	Payments []Payment     `db:"-" json:"payments"`
}

// Outstanding returns grand total minus paid amount, never below zero.
func (inv *Invoice) Outstanding() decimal.Decimal {
	out := inv.GrandTotal.Sub(inv.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// InvoiceItem is one immutable line of an invoice.
type InvoiceItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	InvoiceID   uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	LineNo      int             `db:"line_no" json:"line_no"`
	ProductType ShopType        `db:"product_type" json:"product_type"`
	ProductID   uuid.UUID       `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Unit        string          `db:"unit" json:"unit"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	GSTRate     decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	GSTAmount   decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"total_price"`
}

// Payment is an append-only record of money received against an invoice.
type Payment struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	InvoiceID       uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Method          PaymentMethod   `db:"method" json:"method"`
	ReferenceNumber string          `db:"reference_number" json:"reference_number"`
	PaymentDate     time.Time       `db:"payment_date" json:"payment_date"`
}

// Customer is a registered buyer with running purchase and credit totals.
type Customer struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Phone          string          `db:"phone" json:"phone"`
	Email          string          `db:"email" json:"email"`
	TotalPurchases decimal.Decimal `db:"total_purchases" json:"total_purchases"`
	TotalCredit    decimal.Decimal `db:"total_credit" json:"total_credit"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Product is the part of a catalog entry the billing engine reads and mutates.
type Product struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ShopType     ShopType        `db:"-" json:"shop_type"`
	Name         string          `db:"name" json:"name"`
	Unit         string          `db:"unit" json:"unit"`
	HSNCode      string          `db:"hsn_code" json:"hsn_code"`
	MRP          decimal.Decimal `db:"mrp" json:"mrp"`
	SellingPrice decimal.Decimal `db:"selling_price" json:"selling_price"`
	GSTRate      decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	Stock        int             `db:"stock" json:"stock"`
	MinStock     int             `db:"min_stock" json:"min_stock"`
}

// LowStock reports whether stock has fallen to or below the reorder level.
func (p *Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// User is a staff member who can sign in and raise invoices.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Phone        string    `db:"phone" json:"phone"`
	Role         UserRole  `db:"role" json:"role"`
	ActiveShop   ShopType  `db:"active_shop" json:"active_shop"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

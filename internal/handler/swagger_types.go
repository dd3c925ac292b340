package handler

import (
	"github.com/google/uuid"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"cashier@shop.in"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// SwitchShopRequest represents the switch shop request body.
type SwitchShopRequest struct {
	Shop string `json:"shop" binding:"required" enums:"grocery,fertilizer" example:"fertilizer"`
}

// RestockRequest represents the restock request body.
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required" example:"25"`
}

// InvoiceItemRequest is one line of the create invoice request body.
type InvoiceItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity  int       `json:"quantity" binding:"required" example:"10"`
	UnitPrice string    `json:"unit_price" example:"50.00"`
	GSTRate   string    `json:"gst_rate" example:"5"`
}

// PaymentRequest represents a payment body.
type PaymentRequest struct {
	Amount          string `json:"amount" binding:"required" example:"500.00"`
	Method          string `json:"method" binding:"required" enums:"cash,card,upi,credit" example:"cash"`
	ReferenceNumber string `json:"reference_number" example:"UPI-4411"`
}

// CreateInvoiceRequest represents the create invoice request body.
type CreateInvoiceRequest struct {
	ShopType      string               `json:"shop_type" enums:"grocery,fertilizer" example:"grocery"`
	CustomerID    *uuid.UUID           `json:"customer_id" example:"660e8400-e29b-41d4-a716-446655440001"`
	CustomerName  string               `json:"customer_name" example:"Ramesh Kumar"`
	CustomerPhone string               `json:"customer_phone" example:"9876543210"`
	Items         []InvoiceItemRequest `json:"items" binding:"required"`
	Discount      string               `json:"discount" example:"25.00"`
	Payments      []PaymentRequest     `json:"payments"`
	Notes         string               `json:"notes" example:"Deliver by evening"`
}

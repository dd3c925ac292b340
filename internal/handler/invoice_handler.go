package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopbill/internal/middleware"
	"shopbill/internal/service"
)

const (
	idempotencyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLen = 128
)

// InvoiceHandler handles invoice creation, settlement and receipts.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	receiptService service.ReceiptService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService, receiptService service.ReceiptService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, receiptService: receiptService}
}

// Create handles POST /api/v1/invoices
// @Summary      Create invoice
// @Description  Prices the items, takes stock, records any initial payments and updates the linked customer's balance in one transaction
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key; a repeat returns the first committed invoice"
// @Param        body body CreateInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse{data=domain.Invoice}
// @Failure      400 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Failure      409 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	var input service.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	key := strings.TrimSpace(c.GetHeader(idempotencyHeader))
	if len(key) > maxIdempotencyKeyLen {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("%s must be at most %d characters", idempotencyHeader, maxIdempotencyKeyLen))
		return
	}
	input.IdempotencyKey = key
	input.CreatedBy = userID
	if input.ShopType == "" {
		input.ShopType = middleware.GetActiveShop(c)
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse{data=domain.Invoice}
// @Failure      400 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Settle handles POST /api/v1/invoices/:id/payments
// @Summary      Record a payment
// @Description  Appends a payment to an unpaid or partially paid invoice and reduces the customer's outstanding credit
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        body body PaymentRequest true "Payment"
// @Success      200 {object} APIResponse{data=domain.Invoice}
// @Failure      400 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) Settle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.SettleInvoicePayment(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Receipt handles GET /api/v1/invoices/:id/receipt
// @Summary      Download receipt
// @Tags         invoices
// @Produce      text/csv
// @Param        id path string true "Invoice ID"
// @Success      200 {file} file
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/receipt [get]
func (h *InvoiceHandler) Receipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	inv, data, err := h.receiptService.Export(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, inv.InvoiceNumber))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ShareReceipt handles POST /api/v1/invoices/:id/receipt/share
// @Summary      Share receipt
// @Description  Uploads the receipt and returns a time-limited download link; emails it when the customer has an address
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} APIResponse{data=service.ReceiptShare}
// @Failure      404 {object} APIResponse
// @Failure      501 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/receipt/share [post]
func (h *InvoiceHandler) ShareReceipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	share, err := h.receiptService.Share(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, share)
}

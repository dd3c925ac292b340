package port

import "context"

// EmailSender delivers customer-facing mail.
type EmailSender interface {
	SendReceiptEmail(ctx context.Context, toEmail, toName, invoiceNumber, receiptURL string) error
}

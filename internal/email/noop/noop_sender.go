package noop

import (
	"context"

	"github.com/rs/zerolog"

	"shopbill/internal/port"
)

type noopSender struct {
	log zerolog.Logger
}

// NewNoopSender creates an EmailSender that only logs what it would have sent.
func NewNoopSender(log zerolog.Logger) port.EmailSender {
	return &noopSender{log: log.With().Str("component", "noop_email").Logger()}
}

func (s *noopSender) SendReceiptEmail(_ context.Context, toEmail, toName, invoiceNumber, receiptURL string) error {
	s.log.Info().
		Str("to", toEmail).
		Str("name", toName).
		Str("invoice_number", invoiceNumber).
		Str("url", receiptURL).
		Msg("receipt email suppressed")
	return nil
}

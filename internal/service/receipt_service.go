package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopbill/internal/config"
	"shopbill/internal/csvexport"
	"shopbill/internal/domain"
	"shopbill/internal/port"
)

// ReceiptShare describes an uploaded receipt.
type ReceiptShare struct {
	InvoiceNumber string    `json:"invoice_number"`
	URL           string    `json:"url"`
	ExpiresAt     time.Time `json:"expires_at"`
	EmailedTo     string    `json:"emailed_to,omitempty"`
}

// ReceiptService renders and distributes invoice receipts.
type ReceiptService interface {
	Export(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, []byte, error)
	Share(ctx context.Context, invoiceID uuid.UUID) (*ReceiptShare, error)
}

type receiptService struct {
	invoices  InvoiceService
	customers port.CustomerRepository
	storage   port.ObjectStorage
	email     port.EmailSender
	s3Cfg     config.S3Config
	loc       *time.Location
	log       zerolog.Logger
}

// NewReceiptService creates a new ReceiptService. storage may be nil when sharing is disabled.
func NewReceiptService(
	invoices InvoiceService,
	customers port.CustomerRepository,
	storage port.ObjectStorage,
	email port.EmailSender,
	s3Cfg config.S3Config,
	loc *time.Location,
	log zerolog.Logger,
) ReceiptService {
	return &receiptService{
		invoices:  invoices,
		customers: customers,
		storage:   storage,
		email:     email,
		s3Cfg:     s3Cfg,
		loc:       loc,
		log:       log,
	}
}

func (s *receiptService) Export(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, []byte, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	data, err := csvexport.Receipt(inv, s.loc)
	if err != nil {
		return nil, nil, fmt.Errorf("rendering receipt: %w", err)
	}
	return inv, data, nil
}

// Share uploads the receipt and returns a presigned link. When the invoice has a
// linked customer with an email address the link is also mailed; a mail failure
// is logged and does not fail the share.
func (s *receiptService) Share(ctx context.Context, invoiceID uuid.UUID) (*ReceiptShare, error) {
	if s.storage == nil || s.s3Cfg.Bucket == "" {
		return nil, domain.ErrReceiptSharingDisabled
	}

	inv, data, err := s.Export(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("receipts/%s/%s.csv", inv.ShopType, inv.InvoiceNumber)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: "text/csv; charset=utf-8",
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, key, s.s3Cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning receipt: %w", err)
	}

	share := &ReceiptShare{
		InvoiceNumber: inv.InvoiceNumber,
		URL:           url,
		ExpiresAt:     time.Now().Add(time.Duration(s.s3Cfg.PresignExpiry) * time.Second),
	}

	if inv.CustomerID != nil && s.email != nil {
		c, err := s.customers.GetByID(ctx, nil, *inv.CustomerID)
		if err != nil {
			s.log.Warn().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("customer lookup for receipt email failed")
			return share, nil
		}
		if c.Email != "" {
			if err := s.email.SendReceiptEmail(ctx, c.Email, c.Name, inv.InvoiceNumber, url); err != nil {
				s.log.Error().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("sending receipt email failed")
			} else {
				share.EmailedTo = c.Email
			}
		}
	}

	s.log.Info().Str("invoice_number", inv.InvoiceNumber).Str("key", key).Msg("receipt shared")
	return share, nil
}

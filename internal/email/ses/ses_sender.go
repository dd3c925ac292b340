package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"shopbill/internal/config"
	"shopbill/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	shopName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		shopName:    cfg.ShopName,
	}, nil
}

func (s *sesSender) SendReceiptEmail(ctx context.Context, toEmail, toName, invoiceNumber, receiptURL string) error {
	subject := fmt.Sprintf("Your receipt %s from %s", invoiceNumber, s.shopName)
	htmlBody := buildReceiptHTML(toName, s.shopName, invoiceNumber, receiptURL)
	textBody := fmt.Sprintf("Hi %s,\n\nThank you for shopping with %s. Your receipt for invoice %s is available here:\n%s\n\n%s",
		toName, s.shopName, invoiceNumber, receiptURL, s.shopName)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReceiptHTML(name, shop, invoiceNumber, receiptURL string) string {
	name, shop, invoiceNumber = html.EscapeString(name), html.EscapeString(shop), html.EscapeString(invoiceNumber)
	link := html.EscapeString(receiptURL)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Receipt %s</h2>
  <p>Hi %s,</p>
  <p>Thank you for shopping with %s. Your receipt is ready to download:</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #15803D; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Download Receipt</a>
  </p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`, invoiceNumber, name, shop, link, link, shop)
}

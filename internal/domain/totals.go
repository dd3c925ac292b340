package domain

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds to two decimal places, halves away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmounts holds the derived amounts of one invoice line.
type LineAmounts struct {
	ItemTotal  decimal.Decimal
	GSTAmount  decimal.Decimal
	TotalPrice decimal.Decimal
}

// ComputeLine derives item total, GST and line total for quantity units at unitPrice.
func ComputeLine(quantity int, unitPrice, gstRate decimal.Decimal) LineAmounts {
	itemTotal := RoundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
	gst := RoundMoney(itemTotal.Mul(gstRate).Div(hundred))
	return LineAmounts{
		ItemTotal:  itemTotal,
		GSTAmount:  gst,
		TotalPrice: itemTotal.Add(gst),
	}
}

// InvoiceTotals is the header arithmetic of an invoice.
type InvoiceTotals struct {
	SubTotal   decimal.Decimal
	GSTAmount  decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

// SumTotals aggregates line amounts and applies the discount.
// The discount must be non-negative with at most two decimal places,
// and may not exceed subtotal plus GST.
func SumTotals(lines []LineAmounts, discount decimal.Decimal) (InvoiceTotals, error) {
	if discount.IsNegative() || !discount.Equal(RoundMoney(discount)) {
		return InvoiceTotals{}, ErrInvalidDiscount
	}
	sub, gst := decimal.Zero, decimal.Zero
	for _, l := range lines {
		sub = sub.Add(l.ItemTotal)
		gst = gst.Add(l.GSTAmount)
	}
	gross := sub.Add(gst)
	if discount.GreaterThan(gross) {
		return InvoiceTotals{}, ErrDiscountExceedsTotal
	}
	return InvoiceTotals{
		SubTotal:   sub,
		GSTAmount:  gst,
		Discount:   discount,
		GrandTotal: gross.Sub(discount),
	}, nil
}

// Package csvexport renders invoice receipts as CSV.
package csvexport

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"shopbill/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// itemColumns is the line item header row.
var itemColumns = []string{
	"Line",
	"Product",
	"Unit",
	"Quantity",
	"Unit Price",
	"GST Rate",
	"GST Amount",
	"Total",
}

// Writer wraps csv.Writer for exporting receipts.
type Writer struct {
	csv *csv.Writer
	loc *time.Location
}

// NewWriter creates a Writer that writes CSV to w, printing timestamps in loc.
func NewWriter(w io.Writer, loc *time.Location) *Writer {
	if loc == nil {
		loc = time.UTC
	}
	return &Writer{csv: csv.NewWriter(w), loc: loc}
}

// WriteReceipt writes the header block, line items, totals and payments of inv.
func (w *Writer) WriteReceipt(inv *domain.Invoice) error {
	rows := [][]string{
		{"Invoice Number", inv.InvoiceNumber},
		{"Date", inv.CreatedAt.In(w.loc).Format("2006-01-02 15:04")},
		{"Shop", string(inv.ShopType)},
		{"Customer", inv.CustomerName},
		{"Phone", inv.CustomerPhone},
		{},
		itemColumns,
	}
	for i := range inv.Items {
		rows = append(rows, itemToRow(&inv.Items[i]))
	}
	rows = append(rows,
		[]string{},
		[]string{"Sub Total", formatMoney(inv.SubTotal)},
		[]string{"GST", formatMoney(inv.GSTAmount)},
		[]string{"Discount", formatMoney(inv.Discount)},
		[]string{"Grand Total", formatMoney(inv.GrandTotal)},
		[]string{"Paid", formatMoney(inv.PaidAmount)},
		[]string{"Balance Due", formatMoney(inv.Outstanding())},
		[]string{"Status", string(inv.PaymentStatus)},
	)
	if len(inv.Payments) > 0 {
		rows = append(rows, []string{}, []string{"Payment Date", "Method", "Reference", "Amount"})
		for _, p := range inv.Payments {
			rows = append(rows, []string{
				p.PaymentDate.In(w.loc).Format("2006-01-02 15:04"),
				string(p.Method),
				p.ReferenceNumber,
				formatMoney(p.Amount),
			})
		}
	}

	for _, row := range rows {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Receipt renders inv as a complete BOM-prefixed CSV document.
func Receipt(inv *domain.Invoice, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)
	w := NewWriter(&buf, loc)
	if err := w.WriteReceipt(inv); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func itemToRow(item *domain.InvoiceItem) []string {
	return []string{
		strconv.Itoa(item.LineNo),
		item.ProductName,
		item.Unit,
		strconv.Itoa(item.Quantity),
		formatMoney(item.UnitPrice),
		item.GSTRate.String() + "%",
		formatMoney(item.GSTAmount),
		formatMoney(item.TotalPrice),
	}
}

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}

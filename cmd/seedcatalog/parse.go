package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"shopbill/internal/domain"
)

const (
	grocerySheet    = "Grocery"
	fertilizerSheet = "Fertilizer"
)

// Grocery columns: A Name, B Brand, C Category, D Unit, E HSN, F Barcode,
// G MRP, H Selling price, I GST %, J Stock, K Min stock.
// Fertilizer columns: A Name, B Brand, C Category, D Unit, E HSN, F Composition,
// G Target crops (comma separated), H MRP, I Selling price, J GST %, K Stock, L Min stock.
// Row 1 is the header on both sheets.

type catalogRow struct {
	id           uuid.UUID
	shop         domain.ShopType
	name         string
	brand        string
	category     string
	unit         string
	hsnCode      string
	barcode      string
	composition  string
	targetCrops  domain.CropList
	mrp          decimal.Decimal
	sellingPrice decimal.Decimal
	gstRate      decimal.Decimal
	stock        int
	minStock     int
}

// rowError points at the offending spreadsheet cell row.
type rowError struct {
	sheet string
	row   int
	err   error
}

func (e *rowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.sheet, e.row, e.err)
}

func (e *rowError) Unwrap() error { return e.err }

func parseWorkbook(f *excelize.File) ([]catalogRow, error) {
	grocery, err := parseGrocerySheet(f)
	if err != nil {
		return nil, err
	}
	fertilizer, err := parseFertilizerSheet(f)
	if err != nil {
		return nil, err
	}
	return append(grocery, fertilizer...), nil
}

func parseGrocerySheet(f *excelize.File) ([]catalogRow, error) {
	rows, err := f.GetRows(grocerySheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", grocerySheet, err)
	}

	var out []catalogRow
	barcodes := make(map[string]bool)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(cellVal(row, 0))
		if name == "" {
			continue
		}
		r := catalogRow{
			id:       uuid.New(),
			shop:     domain.ShopTypeGrocery,
			name:     name,
			brand:    strings.TrimSpace(cellVal(row, 1)),
			category: strings.TrimSpace(cellVal(row, 2)),
			unit:     unitOr(cellVal(row, 3), "pcs"),
			hsnCode:  strings.TrimSpace(cellVal(row, 4)),
			barcode:  strings.TrimSpace(cellVal(row, 5)),
		}
		if r.barcode != "" {
			if barcodes[r.barcode] {
				return nil, &rowError{grocerySheet, i + 1, fmt.Errorf("duplicate barcode %q", r.barcode)}
			}
			barcodes[r.barcode] = true
		}
		if err := r.parseNumbers(row, 6); err != nil {
			return nil, &rowError{grocerySheet, i + 1, err}
		}
		out = append(out, r)
	}
	return out, nil
}

func parseFertilizerSheet(f *excelize.File) ([]catalogRow, error) {
	rows, err := f.GetRows(fertilizerSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", fertilizerSheet, err)
	}

	var out []catalogRow
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(cellVal(row, 0))
		if name == "" {
			continue
		}
		r := catalogRow{
			id:          uuid.New(),
			shop:        domain.ShopTypeFertilizer,
			name:        name,
			brand:       strings.TrimSpace(cellVal(row, 1)),
			category:    strings.TrimSpace(cellVal(row, 2)),
			unit:        unitOr(cellVal(row, 3), "kg"),
			hsnCode:     strings.TrimSpace(cellVal(row, 4)),
			composition: strings.TrimSpace(cellVal(row, 5)),
			targetCrops: splitCrops(cellVal(row, 6)),
		}
		if err := r.targetCrops.Validate(); err != nil {
			return nil, &rowError{fertilizerSheet, i + 1, err}
		}
		if err := r.parseNumbers(row, 7); err != nil {
			return nil, &rowError{fertilizerSheet, i + 1, err}
		}
		out = append(out, r)
	}
	return out, nil
}

// parseNumbers reads MRP, selling price, GST %, stock and min stock from
// five consecutive columns starting at col.
func (r *catalogRow) parseNumbers(row []string, col int) error {
	var err error
	if r.mrp, err = parseMoney(cellVal(row, col), "mrp"); err != nil {
		return err
	}
	if r.sellingPrice, err = parseMoney(cellVal(row, col+1), "selling price"); err != nil {
		return err
	}
	if r.sellingPrice.GreaterThan(r.mrp) && r.mrp.IsPositive() {
		return fmt.Errorf("selling price %s exceeds mrp %s", r.sellingPrice, r.mrp)
	}

	rate, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(cellVal(row, col+2)), "%"))
	if err != nil {
		return fmt.Errorf("gst rate: %w", err)
	}
	if !domain.IsAllowedGSTRate(rate) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidGSTRate, rate)
	}
	r.gstRate = rate

	if r.stock, err = parseCount(cellVal(row, col+3), "stock"); err != nil {
		return err
	}
	if r.minStock, err = parseCount(cellVal(row, col+4), "min stock"); err != nil {
		return err
	}
	return nil
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return d.Round(2), nil
}

func parseCount(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return n, nil
}

func splitCrops(raw string) domain.CropList {
	var crops domain.CropList
	for _, c := range strings.Split(raw, ",") {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			crops = append(crops, c)
		}
	}
	return crops
}

func unitOr(raw, fallback string) string {
	if u := strings.TrimSpace(raw); u != "" {
		return u
	}
	return fallback
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// Command seedcatalog converts a product catalog workbook into a SQL seed file.
// The workbook carries one sheet per shop, "Grocery" and "Fertilizer".
// Usage: go run ./cmd/seedcatalog --in catalog.xlsx --out db/seeds/catalog.sql
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"shopbill/internal/domain"
)

const batchSize = 500

var rootCmd = &cobra.Command{
	Use:   "seedcatalog",
	Short: "Generate catalog seed SQL from an Excel workbook",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringP("in", "i", "catalog.xlsx", "input workbook")
	rootCmd.Flags().StringP("out", "o", "db/seeds/catalog.sql", "output SQL file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	inPath, _ := cmd.Flags().GetString("in")
	outPath, _ := cmd.Flags().GetString("out")

	f, err := excelize.OpenFile(inPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := parseWorkbook(f)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := writeSeed(out, rows); err != nil {
		return err
	}

	log.Info().Int("products", len(rows)).Str("out", outPath).Msg("catalog seed generated")
	return nil
}

func writeSeed(out io.Writer, rows []catalogRow) error {
	var grocery, fertilizer []catalogRow
	for _, r := range rows {
		if r.shop == domain.ShopTypeGrocery {
			grocery = append(grocery, r)
		} else {
			fertilizer = append(fertilizer, r)
		}
	}

	if _, err := fmt.Fprintf(out, "-- Catalog seed generated from Excel.\n-- %d grocery and %d fertilizer products.\nBEGIN;\n\n",
		len(grocery), len(fertilizer)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, set := range []struct {
		rows  []catalogRow
		write func(io.Writer, []catalogRow) error
	}{
		{grocery, writeGroceryBatch},
		{fertilizer, writeFertilizerBatch},
	} {
		for i := 0; i < len(set.rows); i += batchSize {
			end := min(i+batchSize, len(set.rows))
			if err := set.write(out, set.rows[i:end]); err != nil {
				return fmt.Errorf("write batch at offset %d: %w", i, err)
			}
		}
	}

	if _, err := io.WriteString(out, "\nCOMMIT;\n"); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	return nil
}

func writeGroceryBatch(out io.Writer, batch []catalogRow) error {
	var b strings.Builder
	b.WriteString("INSERT INTO grocery_products (id, name, brand, category, unit, hsn_code, barcode, mrp, selling_price, gst_rate, stock, min_stock) VALUES\n")
	for i := range batch {
		r := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		barcode := "NULL"
		if r.barcode != "" {
			barcode = quote(r.barcode)
		}
		fmt.Fprintf(&b, "  ('%s', %s, %s, %s, %s, %s, %s, %s, %s, %s, %d, %d)",
			r.id, quote(r.name), quote(r.brand), quote(r.category), quote(r.unit), quote(r.hsnCode),
			barcode, r.mrp.StringFixed(2), r.sellingPrice.StringFixed(2), r.gstRate.String(), r.stock, r.minStock)
	}
	b.WriteString("\nON CONFLICT (barcode) DO NOTHING;\n")
	_, err := io.WriteString(out, b.String())
	return err
}

func writeFertilizerBatch(out io.Writer, batch []catalogRow) error {
	var b strings.Builder
	b.WriteString("INSERT INTO fertilizer_products (id, name, brand, category, unit, hsn_code, composition, target_crops, mrp, selling_price, gst_rate, stock, min_stock) VALUES\n")
	for i := range batch {
		r := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %d, %d)",
			r.id, quote(r.name), quote(r.brand), quote(r.category), quote(r.unit), quote(r.hsnCode),
			quote(r.composition), cropArray(r.targetCrops),
			r.mrp.StringFixed(2), r.sellingPrice.StringFixed(2), r.gstRate.String(), r.stock, r.minStock)
	}
	b.WriteString(";\n")
	_, err := io.WriteString(out, b.String())
	return err
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// cropArray renders a TEXT[] literal.
func cropArray(crops domain.CropList) string {
	if len(crops) == 0 {
		return "'{}'"
	}
	quoted := make([]string, len(crops))
	for i, c := range crops {
		quoted[i] = quote(c)
	}
	return "ARRAY[" + strings.Join(quoted, ", ") + "]"
}

// =============================================================================
// Back-office Extract - Output Writer
// =============================================================================
//
// This module writes the result tables:
//
//   INVOICES   <output>/<SUPPLIER>/<pdf-name>.xlsx
//     | PO Number | Product Code | Order Qty | Total Cost | [Admin fee] |
//
//   STOCKTAKE  final_count.csv
//     | ProductID | ProductName | count |
//              unmatched_barcodes.xlsx (only when something is unmatched)
//     | scanned_barcode | count | candidates |
//
//   PROMOS     bottlemart_products_all.xlsx, sheet ALL_PRODUCTS
//     | Category | Page | Code | Product | Retail Price Inc GST ($) |
//
// Codes and barcodes are always written as text cells so spreadsheet
// applications do not render long barcodes as 9.3E+12. Money columns are
// numbers formatted with two decimals.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// Output file and sheet names.
const (
	MatchedFileName   = "final_count.csv"
	UnmatchedFileName = "unmatched_barcodes.xlsx"
	PromoFileName     = "bottlemart_products_all.xlsx"
	PromoSheetName    = "ALL_PRODUCTS"
	InvoiceSheetName  = "Items"
	UnmatchedSheet    = "Unmatched"
)

// Column headers.
var (
	InvoiceHeader   = []string{"PO Number", "Product Code", "Order Qty", "Total Cost"}
	AdminFeeHeader  = "Admin fee"
	UnmatchedHeader = []string{"scanned_barcode", "count", "candidates"}
	PromoHeader     = []string{"Category", "Page", "Code", "Product", "Retail Price Inc GST ($)"}
)

const (
	// moneyNumberFormat is the built-in "0.00" number format.
	moneyNumberFormat = 2

	defaultSheet = "Sheet1"
)

// =============================================================================
// INVOICES
// =============================================================================

// WriteInvoice writes the line items of one invoice.
//
// PARAMETERS:
//   - path: The output .xlsx path.
//   - items: The line items in document order.
//   - withAdminFee: Adds the Admin fee column. Only items that carry a fee
//     have a value in it.
//
// RETURNS:
//   - An error if the workbook cannot be written.
func WriteInvoice(path string, items []types.InvoiceLineItem, withAdminFee bool) error {
	header := append([]string{}, InvoiceHeader...)
	money := []int{3}
	if withAdminFee {
		header = append(header, AdminFeeHeader)
		money = append(money, 4)
	}

	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		row := []interface{}{
			item.PONumber,
			item.ProductCode,
			item.OrderQty,
			item.TotalCost.InexactFloat64(),
		}
		if withAdminFee {
			if item.AdminFee.Valid {
				row = append(row, item.AdminFee.Decimal.InexactFloat64())
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}

	return writeSheet(path, InvoiceSheetName, header, rows, money)
}

// =============================================================================
// STOCKTAKE
// =============================================================================

// WriteMatchedCSV writes the matched counts as CSV with a header row.
func WriteMatchedCSV(path string, matched []types.MatchedCount) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if matched == nil {
		matched = []types.MatchedCount{}
	}
	if err := gocsv.MarshalFile(&matched, file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// WriteUnmatched writes the unmatched scans. Nothing is written for an empty
// set.
//
// RETURNS:
//   - true when a file was written.
//   - An error if the workbook cannot be written.
func WriteUnmatched(path string, unmatched []types.UnmatchedScan) (bool, error) {
	if len(unmatched) == 0 {
		return false, nil
	}

	rows := make([][]interface{}, 0, len(unmatched))
	for _, u := range unmatched {
		rows = append(rows, []interface{}{
			u.ScannedBarcode,
			u.Count,
			strings.Join(u.Candidates, ", "),
		})
	}

	if err := writeSheet(path, UnmatchedSheet, UnmatchedHeader, rows, nil); err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// PROMOS
// =============================================================================

// WritePromos writes the consolidated promo table.
func WritePromos(path string, records []types.PromoProductRecord) error {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			string(r.Category),
			r.Page,
			r.Code,
			r.ProductName,
			r.RetailPrice.InexactFloat64(),
		})
	}
	return writeSheet(path, PromoSheetName, PromoHeader, rows, []int{4})
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeSheet writes a single-sheet workbook. Strings are stored as text
// cells; columns listed in money get a two-decimal number format.
func writeSheet(path, sheet string, header []string, rows [][]interface{}, money []int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(money) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumberFormat})
		if err != nil {
			return fmt.Errorf("failed to create style: %w", err)
		}
		for _, col := range money {
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return err
			}
			if err := f.SetColStyle(sheet, name, style); err != nil {
				return fmt.Errorf("failed to style column %s: %w", name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// Back-office Extract - XLSX Sheet Reader
// =============================================================================
//
// This module reads workbooks into plain text rows. It serves:
//   - The supplier reference workbook (one sheet per supplier)
//   - Scanner exports and product tables saved as .xlsx / .xlsm
//
// Every cell is read as its raw stored value, never the formatted display
// value. Long numeric barcodes such as 9300000123456 would otherwise come
// back as "9.3E+12" depending on the cell's number format.
//
// SHEET STRUCTURE:
//   | Product Code      | Product Name        |
//   |-------------------|---------------------|
//   | 100200            | COKE 24X375ML       |
//   | 1001/1002         | VB STUBBY 24PK      |
//
// The header row is configurable; empty rows are skipped.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// SHEET AND TABLE STRUCTURES
// =============================================================================

// Sheet holds every row of one worksheet as text.
type Sheet struct {
	// Name is the worksheet name as stored in the workbook.
	Name string

	// Rows contains the raw rows. Rows may have different lengths.
	Rows [][]string
}

// Table is a sheet split into a header row and data rows.
type Table struct {
	// Sheet is the worksheet name.
	Sheet string

	// Header contains the header cells, trimmed.
	Header []string

	// Rows contains the non-empty rows after the header.
	Rows [][]string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadSheets reads every worksheet of a workbook.
//
// PARAMETERS:
//   - path: The path to the .xlsx / .xlsm file.
//
// RETURNS:
//   - The sheets in workbook order. Sheets whose name starts with "_" are
//     skipped.
//   - An error if the file cannot be opened or a sheet cannot be read.
func ReadSheets(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		if strings.HasPrefix(name, "_") {
			continue
		}

		rows, err := readRows(f, name)
		if err != nil {
			return nil, fmt.Errorf("error reading sheet '%s': %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}

	return sheets, nil
}

// ReadFirstSheet reads only the first worksheet of a workbook.
func ReadFirstSheet(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := readRows(f, name)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet '%s': %w", name, err)
	}
	return &Sheet{Name: name, Rows: rows}, nil
}

func readRows(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

// =============================================================================
// TABLE METHODS
// =============================================================================

// Table splits the sheet at headerRow (0-based). Rows before the header are
// ignored. A sheet shorter than the header row yields an empty table.
func (s *Sheet) Table(headerRow int) *Table {
	t := &Table{Sheet: s.Name}
	if headerRow < 0 || headerRow >= len(s.Rows) {
		return t
	}

	for _, cell := range s.Rows[headerRow] {
		t.Header = append(t.Header, strings.TrimSpace(cell))
	}
	for _, row := range s.Rows[headerRow+1:] {
		if isRowEmpty(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Column returns the index of the header matching name, ignoring case and
// surrounding whitespace, or -1.
func (t *Table) Column(name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range t.Header {
		if strings.ToLower(h) == want {
			return i
		}
	}
	return -1
}

// Value returns the trimmed cell at col, or "" when the row is too short.
func Value(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if all cells in a row are empty.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

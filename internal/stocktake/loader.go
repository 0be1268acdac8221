// =============================================================================
// Back-office Extract - Stocktake Loader
// =============================================================================
//
// This module loads the two inputs of a stocktake:
//   - Scanner exports: one row per scan or per barcode with a count
//   - The products table: barcode plus optional product id and name
//
// Both may be delimited text (.csv) or spreadsheets (.xlsx / .xlsm). Every
// value is kept as text; barcodes are normalized before aggregation.
//
// HEADERLESS SCANNER EXPORTS:
// When no barcode column is recognised, the whole file is re-read without a
// header: column 0 is the barcode, column 1 (when present) the count, and
// otherwise every row counts as one unit.
//
// =============================================================================

package stocktake

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/config"
	"github.com/ginjaninja78/backoffice-extract/internal/csvparser"
	"github.com/ginjaninja78/backoffice-extract/internal/normalize"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
	"github.com/ginjaninja78/backoffice-extract/internal/xlsxparser"
)

var (
	// ErrNoBarcodeColumn is returned when a table has no usable barcode column.
	ErrNoBarcodeColumn = errors.New("no barcode column")

	// ErrUnsupportedFormat is returned for files that are neither delimited
	// text nor workbooks.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyProducts is returned when the products table has no rows.
	ErrEmptyProducts = errors.New("products table is empty")
)

// Product is one row of the products table.
type Product struct {
	ID      string
	Name    string
	Barcode string
}

// ProductTable is the loaded products table.
type ProductTable struct {
	// Products holds one product per normalized barcode, in file order.
	Products []Product

	// Duplicates holds later rows whose barcode was already taken.
	Duplicates []Product
}

// Loader reads scanner exports and product tables.
type Loader struct {
	settings config.CSVSettings
	logger   *zap.Logger

	barcodes *columnFinder
	counts   *columnFinder
	names    *columnFinder
	ids      *columnFinder
}

// NewLoader creates a loader using the configured header candidates.
func NewLoader(settings config.StocktakeSettings, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		settings: settings.CSVSettings,
		logger:   logger,
		barcodes: newColumnFinder(settings.BarcodeCandidates),
		counts:   newColumnFinder(settings.CountCandidates),
		names:    newColumnFinder(settings.NameCandidates),
		ids:      newColumnFinder(settings.IDCandidates),
	}
}

// =============================================================================
// SCANNER EXPORTS
// =============================================================================

// LoadScans reads one scanner export and sums the counts per barcode.
//
// PARAMETERS:
//   - path: A .csv, .xlsx or .xlsm file.
//
// RETURNS:
//   - The per-barcode totals sorted by barcode. An empty file yields an
//     empty slice.
//   - An error if the file cannot be read.
func (l *Loader) LoadScans(path string) ([]types.ScanAggregate, error) {
	rows, err := l.readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	barcodeCol := l.barcodes.find(rows[0])
	countCol := -1
	data := rows[1:]

	if barcodeCol >= 0 {
		countCol = l.counts.find(rows[0], barcodeCol)
	} else {
		data = rows
		barcodeCol = 0
		if maxWidth(rows) >= 2 {
			countCol = 1
		}
		l.logger.Info("no barcode header, reading scanner export without header",
			zap.String("file", path),
			zap.Bool("count_column", countCol >= 0),
		)
	}

	sums := make(map[string]int)
	dropped := 0
	for i, row := range data {
		barcode := normalize.Barcode(xlsxparser.Value(row, barcodeCol))
		if barcode == "" {
			dropped++
			continue
		}

		count := 1
		if countCol >= 0 {
			count = parseCount(xlsxparser.Value(row, countCol))
			if count < 0 {
				l.logger.Warn("negative count clamped to zero",
					zap.String("file", path),
					zap.Int("row", i+1),
					zap.String("barcode", barcode),
					zap.Int("count", count),
				)
				count = 0
			}
		}
		sums[barcode] += count
	}

	if dropped > 0 {
		l.logger.Debug("rows without barcode ignored", zap.String("file", path), zap.Int("rows", dropped))
	}

	return toAggregates(sums), nil
}

// Aggregate unions several per-source aggregates and re-sums the counts.
func Aggregate(sources ...[]types.ScanAggregate) []types.ScanAggregate {
	sums := make(map[string]int)
	for _, source := range sources {
		for _, s := range source {
			sums[s.Barcode] += s.Count
		}
	}
	return toAggregates(sums)
}

func toAggregates(sums map[string]int) []types.ScanAggregate {
	out := make([]types.ScanAggregate, 0, len(sums))
	for barcode, count := range sums {
		out = append(out, types.ScanAggregate{Barcode: barcode, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out
}

// parseCount reads a count cell. Anything that is not a finite number
// counts as zero; fractions are truncated.
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func maxWidth(rows [][]string) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// =============================================================================
// PRODUCTS TABLE
// =============================================================================

// LoadProducts reads the products table.
//
// The barcode column is required. The product id defaults to the 1-based
// data row number and the name defaults to the barcode. Rows without a
// barcode are dropped; for repeated barcodes the first row wins.
//
// RETURNS:
//   - The product table.
//   - ErrEmptyProducts, ErrNoBarcodeColumn or a read error.
func (l *Loader) LoadProducts(path string) (*ProductTable, error) {
	rows, err := l.readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyProducts, path)
	}

	header := rows[0]
	barcodeCol := l.barcodes.find(header)
	if barcodeCol < 0 {
		return nil, fmt.Errorf("%w in products table %s (header: %s)", ErrNoBarcodeColumn, path, strings.Join(header, ", "))
	}
	idCol := l.ids.find(header, barcodeCol)
	nameCol := l.names.find(header, barcodeCol, idCol)

	table := &ProductTable{}
	seen := make(map[string]struct{})
	for i, row := range rows[1:] {
		barcode := normalize.Barcode(xlsxparser.Value(row, barcodeCol))
		if barcode == "" {
			continue
		}

		p := Product{
			ID:      strconv.Itoa(i + 1),
			Name:    barcode,
			Barcode: barcode,
		}
		if idCol >= 0 {
			p.ID = xlsxparser.Value(row, idCol)
		}
		if nameCol >= 0 {
			p.Name = xlsxparser.Value(row, nameCol)
		}

		if _, dup := seen[barcode]; dup {
			table.Duplicates = append(table.Duplicates, p)
			continue
		}
		seen[barcode] = struct{}{}
		table.Products = append(table.Products, p)
	}

	for _, d := range table.Duplicates {
		l.logger.Warn("duplicate product barcode, keeping first row",
			zap.String("file", path),
			zap.String("barcode", d.Barcode),
			zap.String("dropped_id", d.ID),
			zap.String("dropped_name", d.Name),
		)
	}

	if len(table.Products) == 0 {
		return nil, fmt.Errorf("%w: %s has no barcodes", ErrEmptyProducts, path)
	}
	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readTable reads a delimited file or the first sheet of a workbook.
func (l *Loader) readTable(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return csvparser.ReadRecords(path, l.settings)
	case ".xlsx", ".xlsm":
		sheet, err := xlsxparser.ReadFirstSheet(path)
		if err != nil {
			return nil, err
		}
		rows := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			if isBlank(row) {
				continue
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

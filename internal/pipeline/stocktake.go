package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/report"
	"github.com/ginjaninja78/backoffice-extract/internal/stocktake"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
	"github.com/ginjaninja78/backoffice-extract/internal/xlsxwriter"
)

// =============================================================================
// STOCKTAKE RUNNER
// =============================================================================

// StocktakeInputs names the files of one stocktake.
type StocktakeInputs struct {
	// Scanners are the scanner exports. Each is loaded independently.
	Scanners []string

	// Products is the products table.
	Products string

	// OutDir receives final_count.csv and unmatched_barcodes.xlsx.
	OutDir string
}

// StocktakeResult is the outcome of one stocktake.
type StocktakeResult struct {
	Success bool
	Error   error

	// MatchedFile is always written on success. UnmatchedFile is empty when
	// every barcode matched.
	MatchedFile   string
	UnmatchedFile string

	Reconciliation types.ReconciliationResult
	Stats          StocktakeStats
}

// StocktakeStats contains statistics about a stocktake.
type StocktakeStats struct {
	// Scanned is the total count over every loaded scanner export.
	Scanned int

	// Barcodes is the number of distinct scanned barcodes.
	Barcodes int

	// Products is the number of distinct product barcodes.
	Products int

	// DuplicateProducts is the number of product rows dropped as repeats.
	DuplicateProducts int

	// FailedSources is the number of scanner exports that could not be read.
	FailedSources int

	ProcessingTime time.Duration
}

// StocktakeRunner reconciles scanner exports against the products table.
type StocktakeRunner struct {
	loader *stocktake.Loader
	issues *report.Collector
	logger *zap.Logger
}

// NewStocktakeRunner creates a stocktake runner. The logger may be nil.
func NewStocktakeRunner(loader *stocktake.Loader, issues *report.Collector, logger *zap.Logger) *StocktakeRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if issues == nil {
		issues = report.NewCollector(logger)
	}
	return &StocktakeRunner{loader: loader, issues: issues, logger: logger}
}

// Run performs one stocktake.
//
// PROCESSING STEPS:
//   1. Load and aggregate the scanner exports. Every source that cannot be
//      read is reported and the run fails without writing anything.
//   2. Load the products table. Failure here fails the run.
//   3. Match every barcode.
//   4. Write the outputs.
func (r *StocktakeRunner) Run(in StocktakeInputs) StocktakeResult {
	startTime := time.Now()
	var result StocktakeResult

	// =========================================================================
	// STEP 1: LOAD SCANS
	// =========================================================================

	if len(in.Scanners) == 0 {
		result.Error = fmt.Errorf("no scanner export given")
		return result
	}

	var sources [][]types.ScanAggregate
	var failed []string
	for _, path := range in.Scanners {
		scans, err := r.loader.LoadScans(path)
		if err != nil {
			result.Stats.FailedSources++
			failed = append(failed, filepath.Base(path))
			r.issues.Fatal(report.KindInput, filepath.Base(path), err)
			continue
		}
		r.logger.Info("scanner export loaded",
			zap.String("file", path),
			zap.Int("barcodes", len(scans)),
		)
		sources = append(sources, scans)
	}

	// The count is the union of every export; a partial union is wrong.
	if len(failed) > 0 {
		result.Error = fmt.Errorf("failed to load scanner export(s): %s", strings.Join(failed, ", "))
		return result
	}

	scans := stocktake.Aggregate(sources...)
	result.Stats.Barcodes = len(scans)
	for _, s := range scans {
		result.Stats.Scanned += s.Count
	}

	// =========================================================================
	// STEP 2: LOAD PRODUCTS
	// =========================================================================

	table, err := r.loader.LoadProducts(in.Products)
	if err != nil {
		result.Error = fmt.Errorf("failed to load products: %w", err)
		r.issues.Fatal(report.KindInput, filepath.Base(in.Products), err)
		return result
	}
	result.Stats.Products = len(table.Products)
	result.Stats.DuplicateProducts = len(table.Duplicates)

	for _, d := range table.Duplicates {
		r.issues.Add(report.Issue{
			Severity: report.SeveritySkip,
			Kind:     report.KindCatalog,
			Document: filepath.Base(in.Products),
			Code:     d.Barcode,
			Message:  fmt.Sprintf("duplicate barcode, row '%s' (%s) dropped", d.ID, d.Name),
		})
	}

	// =========================================================================
	// STEP 3: MATCH
	// =========================================================================

	reconciliation := stocktake.NewMatcher(table.Products).Match(scans)
	result.Reconciliation = reconciliation

	for _, u := range reconciliation.Unmatched {
		msg := fmt.Sprintf("%d scan(s) without a product", u.Count)
		if u.Ambiguous() {
			msg = fmt.Sprintf("%d scan(s), ambiguous suffix match: %s", u.Count, strings.Join(u.Candidates, ", "))
		}
		r.issues.Add(report.Issue{
			Severity: report.SeveritySkip,
			Kind:     report.KindUnmatched,
			Code:     u.ScannedBarcode,
			Message:  msg,
		})
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUTS
	// =========================================================================

	if err := os.MkdirAll(in.OutDir, 0755); err != nil {
		result.Error = fmt.Errorf("failed to create output directory: %w", err)
		return result
	}

	matchedPath := filepath.Join(in.OutDir, xlsxwriter.MatchedFileName)
	if err := xlsxwriter.WriteMatchedCSV(matchedPath, reconciliation.Matched); err != nil {
		result.Error = err
		return result
	}
	result.MatchedFile = matchedPath

	unmatchedPath := filepath.Join(in.OutDir, xlsxwriter.UnmatchedFileName)
	written, err := xlsxwriter.WriteUnmatched(unmatchedPath, reconciliation.Unmatched)
	if err != nil {
		result.Error = err
		return result
	}
	if written {
		result.UnmatchedFile = unmatchedPath
	}

	r.logger.Info("stocktake reconciled",
		zap.Int("scanned", result.Stats.Scanned),
		zap.Int("matched", reconciliation.MatchedTotal()),
		zap.Int("unmatched", reconciliation.UnmatchedTotal()),
		zap.Int("products", len(reconciliation.Matched)),
	)

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

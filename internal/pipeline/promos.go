package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/pdftext"
	"github.com/ginjaninja78/backoffice-extract/internal/promo"
	"github.com/ginjaninja78/backoffice-extract/internal/report"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
	"github.com/ginjaninja78/backoffice-extract/internal/xlsxwriter"
)

// =============================================================================
// PROMO RUNNER
// =============================================================================

// PromoResult is the outcome of reading one promo catalog.
type PromoResult struct {
	FilePath   string
	OutputFile string
	Success    bool
	Error      error

	// Band is the code column band used and Calibrated tells whether it
	// came from calibration.
	Band       promo.Band
	Calibrated bool

	// Counts is the number of rows kept per category.
	Counts map[types.PromoCategory]int

	// Skipped lists the categories that produced nothing.
	Skipped []promo.CategorySkip

	// PageStats is filled when requested.
	PageStats []promo.PageStat

	Stats PromoStats
}

// PromoStats contains statistics about a promo run.
type PromoStats struct {
	Pages          int
	Records        int
	Duplicates     int
	ProcessingTime time.Duration
}

// PromoRunner turns a promo catalog into one consolidated product table.
type PromoRunner struct {
	source    pdftext.WordSource
	extractor *promo.Extractor
	issues    *report.Collector
	logger    *zap.Logger
}

// NewPromoRunner creates a promo runner. The logger may be nil.
func NewPromoRunner(source pdftext.WordSource, extractor *promo.Extractor, issues *report.Collector, logger *zap.Logger) *PromoRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if issues == nil {
		issues = report.NewCollector(logger)
	}
	return &PromoRunner{source: source, extractor: extractor, issues: issues, logger: logger}
}

// Run reads one promo catalog.
//
// PARAMETERS:
//   - pdfPath: The promo PDF.
//   - ranges: The 0-based inclusive page range per category.
//   - outPath: The output workbook path.
//   - samples: Rows kept per page in PageStats. Zero skips page statistics.
//
// RETURNS:
//   - The outcome. Categories that produce nothing are recorded in Skipped
//     and in the issue collector; they do not fail the run.
//   - When no product is extracted nothing is written. This is an error when
//     ranges were given; without ranges the run only reports statistics.
func (r *PromoRunner) Run(pdfPath string, ranges map[types.PromoCategory]promo.PageRange, outPath string, samples int) PromoResult {
	startTime := time.Now()
	name := filepath.Base(pdfPath)
	result := PromoResult{FilePath: pdfPath}

	// =========================================================================
	// STEP 1: EXTRACT WORDS
	// =========================================================================

	pages, err := r.source.Pages(pdfPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to read PDF: %w", err)
		r.issues.Fatal(report.KindInput, name, result.Error)
		return result
	}
	result.Stats.Pages = len(pages)

	// =========================================================================
	// STEP 2: EXTRACT ROWS
	// =========================================================================

	extracted := r.extractor.Extract(pages, ranges)
	result.Band = extracted.Band
	result.Calibrated = extracted.Calibrated
	result.Counts = extracted.Counts
	result.Skipped = extracted.Skipped
	result.Stats.Records = len(extracted.Records)
	result.Stats.Duplicates = extracted.Duplicates

	for _, s := range extracted.Skipped {
		r.issues.Add(report.Issue{
			Severity: report.SeveritySkip,
			Kind:     report.KindClassification,
			Document: name,
			Category: string(s.Category),
			Message:  fmt.Sprintf("category skipped: %s (pages %s)", s.Reason, s.Range),
		})
	}

	if samples > 0 {
		result.PageStats = r.extractor.PageStats(pages, extracted.Band, samples)
	}

	// =========================================================================
	// STEP 3: WRITE OUTPUT
	// =========================================================================

	// An existing workbook is kept rather than replaced by a header-only sheet.
	if len(extracted.Records) == 0 {
		r.issues.Warn(report.KindClassification, name, "no products extracted")
		result.Stats.ProcessingTime = time.Since(startTime)
		if len(ranges) > 0 {
			result.Error = fmt.Errorf("no products extracted from %s", name)
			return result
		}
		result.Success = true
		return result
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		result.Error = fmt.Errorf("failed to create output directory: %w", err)
		return result
	}
	if err := xlsxwriter.WritePromos(outPath, extracted.Records); err != nil {
		result.Error = err
		return result
	}
	result.OutputFile = outPath

	r.logger.Info("promo catalog extracted",
		zap.String("document", name),
		zap.Int("records", len(extracted.Records)),
		zap.Int("duplicates", extracted.Duplicates),
		zap.Int("skipped_categories", len(extracted.Skipped)),
		zap.String("output", outPath),
	)

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

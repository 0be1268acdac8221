package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/detector"
	"github.com/ginjaninja78/backoffice-extract/internal/invoice"
	"github.com/ginjaninja78/backoffice-extract/internal/pdftext"
	"github.com/ginjaninja78/backoffice-extract/internal/report"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
	"github.com/ginjaninja78/backoffice-extract/internal/xlsxwriter"
	"github.com/ginjaninja78/backoffice-extract/pkg/utils"
)

// =============================================================================
// INVOICE RUNNER
// =============================================================================

// InvoiceRunner converts supplier invoice PDFs into line item workbooks.
type InvoiceRunner struct {
	source     pdftext.LineSource
	classifier *detector.Classifier
	files      *utils.FileManager
	issues     *report.Collector
	logger     *zap.Logger

	// defaultPO replaces the built-in placeholder on documents without a
	// PO number.
	defaultPO string
}

// NewInvoiceRunner creates an invoice runner.
//
// PARAMETERS:
//   - source: Reads the text lines of a PDF.
//   - classifier: Picks the supplier and parser output for a document.
//   - files: Resolves output paths and archives processed PDFs.
//   - issues: Receives every skip and failure.
//   - defaultPO: The PO number for documents without one. Empty keeps
//     types.DefaultPONumber.
//   - logger: May be nil.
func NewInvoiceRunner(
	source pdftext.LineSource,
	classifier *detector.Classifier,
	files *utils.FileManager,
	issues *report.Collector,
	defaultPO string,
	logger *zap.Logger,
) *InvoiceRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if issues == nil {
		issues = report.NewCollector(logger)
	}
	return &InvoiceRunner{
		source:     source,
		classifier: classifier,
		files:      files,
		issues:     issues,
		logger:     logger,
		defaultPO:  defaultPO,
	}
}

// Run processes one invoice PDF.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
//
// PROCESSING STEPS:
//   1. Extract the text lines
//   2. Classify the document
//   3. Report skipped blocks
//   4. Write the workbook
//   5. Archive the PDF
func (r *InvoiceRunner) Run(pdfPath string) Result {
	startTime := time.Now()
	name := filepath.Base(pdfPath)
	result := Result{FilePath: pdfPath}

	// =========================================================================
	// STEP 1: EXTRACT TEXT LINES
	// =========================================================================

	r.logger.Info("processing invoice", zap.String("document", name))

	lines, err := r.source.Lines(pdfPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to read PDF: %w", err)
		r.issues.Fatal(report.KindInput, name, result.Error)
		return result
	}
	result.Stats.Lines = len(lines)

	// =========================================================================
	// STEP 2: CLASSIFY
	// =========================================================================
	// Every parser runs; the output sharing the most codes with a supplier
	// catalog wins.

	classification, err := r.classifier.Classify(name, lines)
	if err != nil {
		result.Error = err
		if errors.Is(err, detector.ErrUnclassifiable) {
			r.issues.Warn(report.KindClassification, name, "no supplier catalog matches any extracted product code")
		} else {
			r.issues.Fatal(report.KindClassification, name, err)
		}
		return result
	}

	doc := classification.Document
	result.Supplier = classification.Supplier
	result.Format = string(doc.Format)
	result.Ambiguous = classification.Match.Ambiguous

	// =========================================================================
	// STEP 3: REPORT SKIPPED BLOCKS
	// =========================================================================

	for _, s := range doc.Skipped {
		r.issues.Skip(report.KindStructural, name, s.Code, fmt.Sprintf("%s (line %d)", s.Reason, s.Index))
	}
	result.Stats.Skipped = len(doc.Skipped)

	// =========================================================================
	// STEP 4: WRITE OUTPUT
	// =========================================================================

	items := r.applyDefaultPO(doc.Items)

	if err := r.files.EnsureDirectories(result.Supplier); err != nil {
		result.Error = err
		r.issues.Fatal(report.KindInput, name, err)
		return result
	}

	outputPath := r.files.OutputPathFor(result.Supplier, pdfPath)
	if err := xlsxwriter.WriteInvoice(outputPath, items, doc.Format == invoice.FormatC); err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		r.issues.Fatal(report.KindInput, name, result.Error)
		return result
	}

	result.OutputFile = outputPath
	result.Stats.Items = len(items)
	r.logger.Info("wrote invoice workbook",
		zap.String("document", name),
		zap.String("supplier", string(result.Supplier)),
		zap.String("format", result.Format),
		zap.Int("items", len(items)),
		zap.String("output", outputPath),
	)

	// =========================================================================
	// STEP 5: ARCHIVE
	// =========================================================================

	archived, err := r.files.ArchiveInputFile(pdfPath)
	if err != nil {
		// Log the error but don't fail the processing.
		r.issues.Warn(report.KindInput, name, fmt.Sprintf("failed to archive: %v", err))
	} else if archived != pdfPath {
		result.ArchivePath = archived
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// RunBatch processes every PDF in order. A failed document never stops the
// batch.
//
// RETURNS:
//   - One result per PDF.
//   - The batch summary.
func (r *InvoiceRunner) RunBatch(pdfPaths []string) ([]Result, utils.ProcessingSummary) {
	summary := utils.ProcessingSummary{
		StartTime:  time.Now(),
		TotalFiles: len(pdfPaths),
	}
	before := r.issues.Summary()

	results := make([]Result, 0, len(pdfPaths))
	for _, path := range pdfPaths {
		res := r.Run(path)
		results = append(results, res)

		if !res.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    res.FilePath,
				ErrorMessage: res.Error.Error(),
			})
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalItems += res.Stats.Items
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   res.FilePath,
			OutputFile:  res.OutputFile,
			ArchivePath: res.ArchivePath,
			Supplier:    res.Supplier,
			Format:      res.Format,
			Items:       res.Stats.Items,
			Skipped:     res.Stats.Skipped,
			ProcessTime: res.Stats.ProcessingTime,
		})
	}

	after := r.issues.Summary()
	summary.SkippedRecords = after.Skips - before.Skips
	summary.Warnings = after.Warnings - before.Warnings
	summary.EndTime = time.Now()

	return results, summary
}

// applyDefaultPO substitutes the configured PO number for the placeholder.
func (r *InvoiceRunner) applyDefaultPO(items []types.InvoiceLineItem) []types.InvoiceLineItem {
	if r.defaultPO == "" || r.defaultPO == types.DefaultPONumber {
		return items
	}
	out := make([]types.InvoiceLineItem, len(items))
	for i, item := range items {
		if item.PONumber == types.DefaultPONumber {
			item.PONumber = r.defaultPO
		}
		out[i] = item
	}
	return out
}

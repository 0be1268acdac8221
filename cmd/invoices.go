// =============================================================================
// Back-office Extract - Invoices Command
// =============================================================================
//
// This file defines the 'invoices' command, which turns every supplier
// invoice PDF in the input directory into a line item workbook.
//
// COMMAND USAGE:
//   backoffice invoices [flags]
//
// FLAGS:
//   --input    : Invoice PDF directory (overrides invoice_input_dir)
//   --output   : Workbook directory (overrides invoice_output_dir)
//   --products : Supplier reference workbook (overrides products_workbook)
//   --file     : Process a single PDF instead of the input directory
//   --archive  : Move processed PDFs to the archive directory
//
// PROCESSING PIPELINE:
//   1. Load the supplier reference workbook
//   2. Discover PDF files in the input directory
//   3. For each file, one after the other:
//      a. Extract the text lines
//      b. Run every invoice parser and pick the supplier by catalog overlap
//      c. Write <output>/<supplier>/<pdf-name>.xlsx
//      d. Archive the PDF when enabled
//   4. Write the summary and the issue log
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/catalog"
	"github.com/ginjaninja78/backoffice-extract/internal/detector"
	"github.com/ginjaninja78/backoffice-extract/internal/pdftext"
	"github.com/ginjaninja78/backoffice-extract/internal/pipeline"
	"github.com/ginjaninja78/backoffice-extract/internal/report"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
	"github.com/ginjaninja78/backoffice-extract/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	invoiceInputDir  string
	invoiceOutputDir string
	productsWorkbook string
	invoiceFile      string
	archiveInvoices  bool
)

// invoicesCmd represents the 'invoices' command.
var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Extract line items from supplier invoice PDFs",
	Long: `The invoices command scans the input directory for PDF files. Each PDF is
parsed with every known invoice layout and assigned to the supplier whose
catalog shares the most product codes with the extracted lines.

Each file is processed independently; a PDF that cannot be read or
classified is reported and the batch continues.

On success:
  - <output>/<supplier>/<pdf-name>.xlsx holds the line items
  - The PDF is moved to the archive when archival is enabled

On error:
  - The PDF remains in the input directory
  - An issue log is written to the output directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runInvoices(cmd)
	},
}

func init() {
	rootCmd.AddCommand(invoicesCmd)

	invoicesCmd.Flags().StringVar(&invoiceInputDir, "input", "", "Invoice PDF directory (overrides config)")
	invoicesCmd.Flags().StringVar(&invoiceOutputDir, "output", "", "Output directory (overrides config)")
	invoicesCmd.Flags().StringVar(&productsWorkbook, "products", "", "Supplier reference workbook (overrides config)")
	invoicesCmd.Flags().StringVar(&invoiceFile, "file", "", "Process a single PDF")
	invoicesCmd.Flags().BoolVar(&archiveInvoices, "archive", false, "Move processed PDFs to the archive directory")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runInvoices orchestrates the invoice batch.
func runInvoices(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	applyInvoiceFlags(cmd)

	if invoiceFile != "" && !utils.FileExists(invoiceFile) {
		return fmt.Errorf("input file not found: %s", invoiceFile)
	}

	// =========================================================================
	// STEP 1: LOAD SUPPLIER CATALOG
	// =========================================================================

	fmt.Fprintln(out, "=== Back-office Extract: invoices ===")

	cat, err := catalog.Load(mainConfig.ProductsWorkbook)
	if err != nil {
		return fmt.Errorf("failed to load supplier workbook: %w", err)
	}

	issues := report.NewCollector(logger)
	for _, c := range cat.Conflicts() {
		issues.Add(report.Issue{
			Severity: report.SeverityWarning,
			Kind:     report.KindCatalog,
			Document: filepath.Base(mainConfig.ProductsWorkbook),
			Code:     c.Code,
			Message:  c.String(),
		})
	}
	for _, s := range cat.Suppliers() {
		logger.Info("supplier catalog loaded", zap.String("supplier", string(s)), zap.Int("codes", cat.Len(s)))
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	files := utils.NewFileManager(mainConfig.InvoiceInputDir, mainConfig.InvoiceOutputDir, mainConfig.ArchiveDir)
	files.ArchiveOnSuccess = mainConfig.Invoice.ArchiveProcessed
	files.UseTimestampSubdirs = mainConfig.Invoice.UseTimestampSubdirs

	if err := files.EnsureDirectories(types.Suppliers...); err != nil {
		return err
	}

	var pdfs []string
	if invoiceFile != "" {
		pdfs = []string{invoiceFile}
	} else {
		pdfs, err = files.DiscoverPDFs()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(pdfs) == 0 {
		fmt.Fprintf(out, "No PDF files found in %s.\n", files.InputDir)
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(pdfs))

	// =========================================================================
	// STEP 3: PROCESS FILES
	// =========================================================================

	runner := pipeline.NewInvoiceRunner(
		pdftext.New(pdftext.DefaultOptions()),
		detector.NewClassifier(cat, logger),
		files,
		issues,
		mainConfig.Invoice.DefaultPO,
		logger,
	)
	results, summary := runner.RunBatch(pdfs)

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			fmt.Fprintf(out, "  ✓ %s -> %s [%s, format %s, %d item(s)]\n",
				name, result.OutputFile, result.Supplier, result.Format, result.Stats.Items)
			continue
		}
		fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
	}

	// =========================================================================
	// STEP 4: SUMMARY
	// =========================================================================

	fmt.Fprint(out, utils.FormatSummary(summary))

	if path, err := utils.WriteSummaryLog(summary, files.OutputDir); err != nil {
		logger.Warn("failed to write summary log", zap.Error(err))
	} else {
		logger.Debug("summary written", zap.String("path", path))
	}

	return writeIssueLog(out, issues, files.OutputDir, "invoices")
}

// applyInvoiceFlags copies explicit flags over the configuration.
func applyInvoiceFlags(cmd *cobra.Command) {
	if invoiceInputDir != "" {
		mainConfig.InvoiceInputDir = invoiceInputDir
	}
	if invoiceOutputDir != "" {
		mainConfig.InvoiceOutputDir = invoiceOutputDir
	}
	if productsWorkbook != "" {
		mainConfig.ProductsWorkbook = productsWorkbook
	}
	if cmd.Flags().Changed("archive") {
		mainConfig.Invoice.ArchiveProcessed = archiveInvoices
	}
}

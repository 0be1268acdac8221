// =============================================================================
// Back-office Extract - Pipeline Module
// =============================================================================
//
// This module contains the runners that orchestrate one unit of work each:
//
//   INVOICES   one supplier PDF -> one line item workbook
//     1. Extract the text lines of the PDF
//     2. Run every invoice parser and classify the output by catalog overlap
//     3. Report skipped blocks
//     4. Write <output>/<supplier>/<pdf-name>.xlsx
//     5. Archive the PDF
//
//   STOCKTAKE  two scanner exports + products table -> final_count.csv
//     1. Load and aggregate both scanner exports
//     2. Load the products table
//     3. Match every aggregated barcode (exact, then longest suffix)
//     4. Write the matched CSV and the unmatched workbook
//
//   PROMOS     promo PDF + category page ranges -> one consolidated workbook
//     1. Extract the positioned words of every page
//     2. Calibrate the code column and read every category's rows
//     3. Write the consolidated workbook
//
// ISOLATION:
//   A runner never panics or exits. Failures are returned in the result and
//   recorded in the issue collector so the caller can move on to the next
//   document.
//
// =============================================================================

package pipeline

import (
	"time"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single invoice PDF.
type Result struct {
	// FilePath is the path to the input PDF that was processed.
	FilePath string

	// OutputFile is the path to the generated workbook.
	// This is empty if processing failed.
	OutputFile string

	// ArchivePath is where the PDF was moved, when archival is enabled.
	ArchivePath string

	// Supplier and Format identify the winning parser.
	Supplier types.Supplier
	Format   string

	// Ambiguous is set when several suppliers tied on overlap.
	Ambiguous bool

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	// This is nil if processing was successful.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Lines is the number of text lines read from the PDF.
	Lines int

	// Items is the number of line items written.
	Items int

	// Skipped is the number of blocks that did not fit the grammar.
	Skipped int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

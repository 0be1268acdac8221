// =============================================================================
// Back-office Extract - Main Entry Point
// =============================================================================
//
// USAGE:
//   backoffice invoices     - Extract line items from supplier invoice PDFs
//   backoffice stocktake    - Reconcile scanner exports with the products table
//   backoffice promos       - Extract the product table of a promo catalog
//   backoffice catalog      - Check the supplier reference workbook
//   backoffice version      - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : Cobra command definitions
//   - internal/      : Parsing, matching and reporting logic
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/backoffice-extract/cmd"
)

func main() {
	cmd.Execute()
}

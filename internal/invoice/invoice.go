// =============================================================================
// Back-office Extract - Invoice Line Parsers
// =============================================================================
//
// This package recovers line items from the text lines of supplier invoice
// PDFs. Each supplier prints its invoices in a different layout, so there is
// one parser per layout:
//   - Format A (LION): multi-line blocks closed by CARRIER / LOAD / TOTAL
//   - Format B (CUB):  fixed offsets from a 5-6 digit code, "Y" marker
//   - Format C (ALM):  blocks opened by a unit line, closed by a code line
//   - Format D (COKE): fixed 7-line window (qty, code, total)
//
// Every parser runs against every document. Parsers never fail: a block or
// window that does not fit the grammar is recorded as a Skip with a reason
// and parsing moves on. Choosing which parser's output to trust is the job
// of the supplier detector.
//
// =============================================================================

package invoice

import (
	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// =============================================================================
// PARSER INTERFACE
// =============================================================================

// Format identifies an invoice layout.
type Format string

const (
	FormatA Format = "A"
	FormatB Format = "B"
	FormatC Format = "C"
	FormatD Format = "D"
)

// Parser extracts line items from the lines of one document.
type Parser interface {
	// Format returns the layout this parser understands.
	Format() Format

	// Supplier returns the supplier that prints this layout.
	Supplier() types.Supplier

	// Parse extracts every line item it can find. It never fails.
	Parse(lines []string) Document
}

// Parsers returns one parser per layout in the fixed classification order:
// ALM, COKE, CUB, LION.
func Parsers() []Parser {
	return []Parser{
		UnitBlockParser{},
		WindowParser{},
		OffsetParser{},
		CarrierBlockParser{},
	}
}

// =============================================================================
// RESULTS
// =============================================================================

// Skip describes a block or window that matched the start of a grammar but
// could not be turned into a line item.
type Skip struct {
	// Index is the line index where the block or window starts.
	Index int

	// Code is the product code, when one was found before the failure.
	Code string

	// Reason is a short machine-friendly label such as "no-total".
	Reason string
}

// Document is the output of one parser over one document.
type Document struct {
	Format   Format
	PONumber string
	Items    []types.InvoiceLineItem
	Skipped  []Skip
}

// Codes returns the set of product codes found in the document.
func (d Document) Codes() map[string]struct{} {
	return types.ProductCodes(d.Items)
}

// HasAdminFee reports whether the first item carries an admin fee.
func (d Document) HasAdminFee() bool {
	return len(d.Items) > 0 && d.Items[0].AdminFee.Valid
}

// outcome is the result of parsing a single block or window.
type outcome struct {
	item   types.InvoiceLineItem
	code   string
	reason string
}

func accepted(item types.InvoiceLineItem) outcome {
	return outcome{item: item, code: item.ProductCode}
}

func skipped(code, reason string) outcome {
	return outcome{code: code, reason: reason}
}

func (o outcome) ok() bool {
	return o.reason == ""
}

// add records an outcome in the document.
func (d *Document) add(index int, o outcome) {
	if o.ok() {
		d.Items = append(d.Items, o.item)
		return
	}
	d.Skipped = append(d.Skipped, Skip{Index: index, Code: o.code, Reason: o.reason})
}

// build validates the fields and turns them into an outcome.
func build(po, code string, qty int, total string) outcome {
	amount, err := parseMoney(total)
	if err != nil {
		return skipped(code, "bad-total")
	}
	item, err := types.NewInvoiceLineItem(po, code, qty, amount)
	if err != nil {
		return skipped(code, "invalid-record")
	}
	return accepted(item)
}

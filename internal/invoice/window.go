package invoice

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// =============================================================================
// FORMAT D - FIXED WINDOW
// =============================================================================
//
// LAYOUT (one value per line):
//   i     5            <- quantity
//   i+1   ...
//   i+2   100200       <- 6-digit product code
//   i+3   ...
//   i+4   ...
//   i+5   ...
//   i+6   12.50        <- total
//
// After a match, scanning resumes after the window's last line.
//
// =============================================================================

const windowSize = 7

var (
	windowCodePattern  = regexp.MustCompile(`^\d{6}`)
	windowTotalPattern = regexp.MustCompile(`^\d+\.\d{2}`)
)

// WindowParser parses Format D (COKE) invoices.
type WindowParser struct{}

// Format implements Parser.
func (WindowParser) Format() Format { return FormatD }

// Supplier implements Parser.
func (WindowParser) Supplier() types.Supplier { return types.SupplierCOKE }

// Parse implements Parser.
func (WindowParser) Parse(lines []string) Document {
	doc := Document{Format: FormatD, PONumber: FindPONumber(lines)}

	for i := 0; i+windowSize <= len(lines); i++ {
		qtyLine := strings.TrimSpace(lines[i])
		code := strings.TrimSpace(lines[i+2])
		total := strings.TrimSpace(lines[i+6])
		if !isBareInt(qtyLine) || !windowCodePattern.MatchString(code) || !windowTotalPattern.MatchString(total) {
			continue
		}

		qty, err := parseQty(qtyLine)
		var o outcome
		if err != nil {
			o = skipped(code, "bad-quantity")
		} else {
			o = build(doc.PONumber, code, qty, total)
		}
		doc.add(i, o)
		if o.ok() {
			i += windowSize - 1
		}
	}
	return doc
}

package invoice

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// =============================================================================
// FORMAT B - FIXED OFFSETS
// =============================================================================
//
// LAYOUT (one value per line):
//   i     123456        <- 5-6 digit product code
//   i+1   2             <- quantity
//   ...                 <- description, pack size, ...
//   j     Y             <- marker, somewhere in i+2 .. i+14
//   j+1   96.500        <- total, 2 or 3 decimals
//
// =============================================================================

const (
	// markerSearchFrom and markerSearchTo bound the "Y" marker search,
	// relative to the code line, end exclusive.
	markerSearchFrom = 2
	markerSearchTo   = 15

	// offsetTrailer is the number of trailing lines never used as a code
	// line.
	offsetTrailer = 10
)

var offsetTotalPattern = regexp.MustCompile(`^\d+\.\d{2,3}$`)

// OffsetParser parses Format B (CUB) invoices.
type OffsetParser struct{}

// Format implements Parser.
func (OffsetParser) Format() Format { return FormatB }

// Supplier implements Parser.
func (OffsetParser) Supplier() types.Supplier { return types.SupplierCUB }

// Parse implements Parser.
func (p OffsetParser) Parse(lines []string) Document {
	doc := Document{Format: FormatB, PONumber: FindPONumber(lines)}
	for i := 0; i < len(lines)-offsetTrailer; i++ {
		if !codePattern.MatchString(strings.TrimSpace(lines[i])) {
			continue
		}
		doc.add(i, p.parseWindow(doc.PONumber, lines, i))
	}
	return doc
}

func (OffsetParser) parseWindow(po string, lines []string, i int) outcome {
	code := strings.TrimSpace(lines[i])

	qty, err := strconv.ParseFloat(strings.TrimSpace(lines[i+1]), 64)
	if err != nil || math.IsInf(qty, 0) || math.IsNaN(qty) {
		return skipped(code, "bad-quantity")
	}
	if qty != math.Trunc(qty) {
		return skipped(code, "fractional-quantity")
	}

	for j := i + markerSearchFrom; j < i+markerSearchTo; j++ {
		if j >= len(lines) {
			return skipped(code, "window-out-of-range")
		}
		if strings.TrimSpace(lines[j]) != "Y" {
			continue
		}
		if j+1 >= len(lines) {
			return skipped(code, "window-out-of-range")
		}
		total := strings.TrimSpace(lines[j+1])
		if !offsetTotalPattern.MatchString(total) {
			return skipped(code, "no-total")
		}
		return build(po, code, int(qty), total)
	}

	return skipped(code, "no-marker")
}

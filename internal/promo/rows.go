// =============================================================================
// Back-office Extract - Promo Catalog Rows
// =============================================================================
//
// The promo catalog prints one product per visual row:
//
//   CODE    PRODUCT NAME .............  PROMO $   RETAIL $
//   12345   VB STUBBY 24X375ML          $49.99    $55.99
//
// Words are grouped into lines by vertical proximity. A line is a product
// row when its first word is a bare integer of at least 4 digits whose
// right edge lies in the code column band. The band is calibrated per
// document from the median right edge of all leading integers.
//
// =============================================================================

package promo

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/backoffice-extract/internal/pdftext"
)

var (
	codePattern  = regexp.MustCompile(`^\d{4,}$`)
	pricePattern = regexp.MustCompile(`^\$?(\d{1,3}(,\d{3})+|\d+)\.\d{2}`)
	spaceRun     = regexp.MustCompile(`\s{2,}`)
)

// Band is an inclusive range of x positions.
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether x lies inside the band.
func (b Band) Contains(x float64) bool {
	return b.Min <= x && x <= b.Max
}

// Row is one product row read from a line.
type Row struct {
	Code  string
	Name  string
	Price decimal.Decimal
}

// =============================================================================
// LINE GROUPING
// =============================================================================

// GroupLines groups the words of one page into lines. Words are sorted top
// to bottom, and a word joins the current line when its top is within yTol
// of the previous word's top. Each line is sorted left to right.
func GroupLines(words []pdftext.Word, yTol float64) [][]pdftext.Word {
	sorted := make([]pdftext.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines [][]pdftext.Word
	var current []pdftext.Word
	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool { return current[i].X0 < current[j].X0 })
		lines = append(lines, current)
		current = nil
	}

	for _, w := range sorted {
		if len(current) > 0 && abs(current[len(current)-1].Top-w.Top) > yTol {
			flush()
		}
		current = append(current, w)
	}
	flush()

	return lines
}

// =============================================================================
// CALIBRATION
// =============================================================================

// LeadingCodeX1 returns the right edge of the line's first word when that
// word is a product code.
func LeadingCodeX1(line []pdftext.Word) (float64, bool) {
	if len(line) == 0 || !codePattern.MatchString(strings.TrimSpace(line[0].Text)) {
		return 0, false
	}
	return line[0].X1, true
}

// CalibrateBand centers a band of +/- margin on the median of xs. The median
// is the middle element of the sorted values (the upper one for an even
// count). It returns false when xs is empty.
func CalibrateBand(xs []float64, margin float64) (Band, bool) {
	if len(xs) == 0 {
		return Band{}, false
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	median := sorted[len(sorted)/2]
	return Band{Min: median - margin, Max: median + margin}, true
}

// =============================================================================
// ROW EXTRACTION
// =============================================================================

// ExtractRow reads a product row from one line.
//
// PARAMETERS:
//   - line: The words of the line, left to right.
//   - band: The accepted range for the code's right edge.
//
// RETURNS:
//   - The row and true when the line is a product row. The price is the
//     last price-like word; the name is every word after the code that
//     starts left of the first price-like word.
func ExtractRow(line []pdftext.Word, band Band) (Row, bool) {
	x1, ok := LeadingCodeX1(line)
	if !ok || !band.Contains(x1) {
		return Row{}, false
	}

	var prices []pdftext.Word
	var values []decimal.Decimal
	for _, w := range line {
		m := pricePattern.FindString(strings.TrimSpace(w.Text))
		if m == "" {
			continue
		}
		value, err := decimal.NewFromString(strings.NewReplacer("$", "", ",", "").Replace(m))
		if err != nil {
			continue
		}
		prices = append(prices, w)
		values = append(values, value)
	}
	if len(prices) == 0 {
		return Row{}, false
	}

	firstPriceX0 := prices[0].X0
	var parts []string
	for _, w := range line[1:] {
		if w.X0 < firstPriceX0 {
			parts = append(parts, w.Text)
		}
	}
	name := spaceRun.ReplaceAllString(strings.TrimSpace(strings.Join(parts, " ")), " ")
	if name == "" {
		return Row{}, false
	}

	return Row{
		Code:  strings.TrimSpace(line[0].Text),
		Name:  name,
		Price: values[len(values)-1],
	}, true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// =============================================================================
// Back-office Extract - Code Normalization
// =============================================================================
//
// Barcodes and product codes arrive from scanners, spreadsheets and PDFs in
// many shapes:
//   - "9300000123456"       plain digits
//   - "9.300000123456E+12"  spreadsheet scientific notation
//   - "9300000123456.0"     float-coerced cells
//   - "9,300,000,123,456"   thousands separators
//   - " 0ALM-001 "          alphanumeric supplier codes with padding
//
// Every rule in this file is idempotent: applying it to its own output
// returns the output unchanged. Barcode and ProductCode are compositions of
// those rules and are idempotent as well.
//
// RULES:
//   - Numeric values: collapse scientific notation, strip a zero fraction,
//     keep digits only.
//   - Values containing letters: trim, upper-case, drop whitespace, strip
//     leading zeros. Separators such as "-" and "." are kept.
//   - ProductCode additionally strips leading zeros from numeric values.
//
// =============================================================================

package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// scientificPattern matches mantissa/exponent forms such as 9.3E+12.
	scientificPattern = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)[eE][+-]?\d+$`)

	// zeroFractionPattern matches trailing fractions made only of zeros.
	zeroFractionPattern = regexp.MustCompile(`(\.0+)+$`)
)

// =============================================================================
// COMPOSED RULES
// =============================================================================

// Barcode normalizes a scanned or catalog barcode.
//
// PARAMETERS:
//   - raw: The value as read from the source, untrimmed.
//
// RETURNS:
//   - The normalized barcode. Numeric barcodes come back as digits only,
//     alphanumeric codes come back upper-cased. Empty input stays empty.
func Barcode(raw string) string {
	value := compact(raw)
	if value == "" {
		return ""
	}
	if IsAlphanumeric(value) {
		return Alphanumeric(value)
	}
	return DigitsOnly(StripZeroFraction(CollapseScientific(value)))
}

// ProductCode normalizes a supplier product code for catalog lookups.
// It behaves like Barcode and also strips leading zeros from numeric codes,
// so "012345" on an invoice matches "12345" in the workbook.
func ProductCode(raw string) string {
	code := Barcode(raw)
	if code == "" {
		return ""
	}
	return StripLeadingZeros(code)
}

// IsAlphanumeric reports whether a value must follow the alphanumeric rule.
// A value written in scientific notation is numeric even though it contains
// an "E".
func IsAlphanumeric(s string) bool {
	s = compact(s)
	if scientificPattern.MatchString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// =============================================================================
// INDIVIDUAL RULES
// =============================================================================

// CollapseScientific rewrites scientific notation as a plain integer,
// rounding half to even the way spreadsheet exports do. Any other value is
// returned unchanged.
func CollapseScientific(s string) string {
	if !scientificPattern.MatchString(s) {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.RoundBank(0).String()
}

// StripZeroFraction removes a trailing ".0" (or ".00", ...) left behind by
// float-typed cells.
func StripZeroFraction(s string) string {
	return zeroFractionPattern.ReplaceAllString(s, "")
}

// DigitsOnly drops every character that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// StripLeadingZeros removes leading zeros. A value made only of zeros
// collapses to a single "0".
func StripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		return "0"
	}
	return trimmed
}

// Alphanumeric applies the rule for codes that contain letters.
func Alphanumeric(s string) string {
	return StripLeadingZeros(strings.ToUpper(compact(s)))
}

// compact trims the value and removes inner whitespace and thousands
// separators.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' {
			return -1
		}
		return r
	}, s)
}

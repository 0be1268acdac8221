package invoice

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// Token grammar shared by the layouts.
var (
	moneyPattern     = regexp.MustCompile(`^\d+\.\d{2}$`)
	codePattern      = regexp.MustCompile(`^\d{5,6}$`)
	poPattern        = regexp.MustCompile(`PO\d{8}`)
	errEmptyQuantity = errors.New("empty quantity")
)

// FindPONumber returns the first purchase order number printed anywhere in
// the document, or types.DefaultPONumber.
func FindPONumber(lines []string) string {
	for _, line := range lines {
		if po := poPattern.FindString(line); po != "" {
			return po
		}
	}
	return types.DefaultPONumber
}

// isBareInt reports whether s is made only of ASCII digits.
func isBareInt(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isMoney reports whether s looks like a two-decimal amount.
func isMoney(s string) bool {
	return moneyPattern.MatchString(s)
}

// parseMoney parses an amount, tolerating a leading "$" and thousands
// separators.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	return decimal.NewFromString(s)
}

// parseQty parses a bare integer quantity.
func parseQty(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyQuantity
	}
	return strconv.Atoi(s)
}

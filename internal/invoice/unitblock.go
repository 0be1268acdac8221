package invoice

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// =============================================================================
// FORMAT C - UNIT BLOCKS
// =============================================================================
//
// LAYOUT:
//   GREAT NORTHERN ORIGINAL 375ML     <- unit suffix opens a new block
//   2   48.20   5.00   96.40   104.04  <- quantity then the amounts
//   123456                            <- 5-6 digit code closes the block
//
// The total is the third-from-last amount of the block. Blocks with fewer
// than three amounts are skipped.
//
// Admin fees ("SHRINK WRAP", "ADMINISTRATION FEE") are summed over the
// document and attached to the first line item.
//
// =============================================================================

const (
	// totalFromEnd is the position of the total among the block's amounts,
	// counted from the end.
	totalFromEnd = 3

	// feeLookahead is the number of lines after a fee marker searched for
	// the fee amount.
	feeLookahead = 3

	maxUnitBlockQty = 99
)

var (
	unitLinePattern  = regexp.MustCompile(`^.+\d{2,4}(ML|L|GM)$`)
	codeClosePattern = regexp.MustCompile(`\d{5,6}$`)
	amountPattern    = regexp.MustCompile(`\d+\.\d{2}`)
	feeAmountPattern = regexp.MustCompile(`\d*\.\d{2}`)

	feeMarkers = ahocorasick.NewStringMatcher([]string{"SHRINK WRAP", "ADMINISTRATION FEE"})
)

// UnitBlockParser parses Format C (ALM) invoices.
type UnitBlockParser struct{}

// Format implements Parser.
func (UnitBlockParser) Format() Format { return FormatC }

// Supplier implements Parser.
func (UnitBlockParser) Supplier() types.Supplier { return types.SupplierALM }

// Parse implements Parser.
func (p UnitBlockParser) Parse(lines []string) Document {
	doc := Document{Format: FormatC, PONumber: FindPONumber(lines)}
	for _, b := range splitUnitBlocks(lines) {
		doc.add(b.start, p.parseBlock(doc.PONumber, strings.Fields(strings.Join(b.lines, " "))))
	}

	if fee := AdminFee(lines); fee.IsPositive() && len(doc.Items) > 0 {
		doc.Items[0] = doc.Items[0].WithAdminFee(fee)
	}
	return doc
}

// splitUnitBlocks assembles blocks. Lines that are neither a unit line, a
// code line, an amount line nor a bare integer are dropped. A block is only
// emitted when it is followed by a unit line or closed by a code line.
func splitUnitBlocks(lines []string) []lineBlock {
	var (
		blocks  []lineBlock
		current lineBlock
	)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case unitLinePattern.MatchString(strings.TrimRight(line, " \t\r")):
			if len(current.lines) > 0 {
				blocks = append(blocks, current)
			}
			current = lineBlock{start: i, lines: []string{line}}
		case codeClosePattern.MatchString(trimmed):
			if len(current.lines) == 0 {
				current.start = i
			}
			current.lines = append(current.lines, line)
			blocks = append(blocks, current)
			current = lineBlock{}
		case amountPattern.MatchString(line) || isBareInt(trimmed):
			if len(current.lines) == 0 {
				current.start = i
			}
			current.lines = append(current.lines, line)
		}
	}
	return blocks
}

func (UnitBlockParser) parseBlock(po string, tokens []string) outcome {
	code := ""
	for i := len(tokens) - 1; i >= 0; i-- {
		if codePattern.MatchString(tokens[i]) {
			code = tokens[i]
			break
		}
	}
	if code == "" {
		return skipped("", "no-code")
	}

	var amounts []string
	for _, tok := range tokens {
		if isMoney(tok) {
			amounts = append(amounts, tok)
		}
	}

	qty := 0
	for i := 0; i+1 < len(tokens); i++ {
		if !isMoney(tokens[i+1]) || !isBareInt(tokens[i]) {
			continue
		}
		if v, err := parseQty(tokens[i]); err == nil && v >= 1 && v <= maxUnitBlockQty {
			qty = v
			break
		}
	}
	if qty == 0 {
		return skipped(code, "no-quantity")
	}
	if len(amounts) < totalFromEnd {
		return skipped(code, "too-few-decimals")
	}

	return build(po, code, qty, amounts[len(amounts)-totalFromEnd])
}

// AdminFee sums the fees printed after every admin or shrink-wrap marker.
// For each marker the first amount within the next three lines counts.
func AdminFee(lines []string) decimal.Decimal {
	total := decimal.Zero
	for i, line := range lines {
		if len(feeMarkers.Match([]byte(strings.ToUpper(line)))) == 0 {
			continue
		}
		for j := i + 1; j < len(lines) && j <= i+feeLookahead; j++ {
			m := feeAmountPattern.FindString(lines[j])
			if m == "" {
				continue
			}
			if fee, err := parseMoney(m); err == nil {
				total = total.Add(fee)
			}
			break
		}
	}
	return total.Round(2)
}

package invoice

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// =============================================================================
// FORMAT A - CARRIER BLOCKS
// =============================================================================
//
// LAYOUT:
//   1234567 PALE ALE 24X375ML        <- block start: 7-digit code + space
//   ...  CAR 5  ...                   <- quantity after the CAR marker
//   ...  48.20  ...  241.00           <- last amount in the block is the total
//   CARRIER                           <- terminator, three consecutive lines
//   LOAD
//   TOTAL
//
// The terminator sequence must appear on consecutive lines. Any line that
// does not continue the sequence resets it. Once the sequence completes the
// document is finished: nothing after it is parsed.
//
// =============================================================================

var (
	blockStartPattern = regexp.MustCompile(`^\d{7} `)
	carMarkerPattern  = regexp.MustCompile(`\bCAR\b(?:\s+|$)`)
)

// terminatorSequence closes the last block of a Format A invoice.
var terminatorSequence = []string{"CARRIER", "LOAD", "TOTAL"}

// CarrierBlockParser parses Format A (LION) invoices.
type CarrierBlockParser struct{}

// Format implements Parser.
func (CarrierBlockParser) Format() Format { return FormatA }

// Supplier implements Parser.
func (CarrierBlockParser) Supplier() types.Supplier { return types.SupplierLION }

// Parse implements Parser.
func (p CarrierBlockParser) Parse(lines []string) Document {
	doc := Document{Format: FormatA, PONumber: FindPONumber(lines)}
	for _, b := range splitCarrierBlocks(lines) {
		doc.add(b.start, p.parseBlock(doc.PONumber, b.lines))
	}
	return doc
}

type lineBlock struct {
	start int
	lines []string
}

// splitCarrierBlocks groups lines into blocks. The block that completes the
// terminator sequence is the last one. A trailing block without terminator
// is kept.
func splitCarrierBlocks(lines []string) []lineBlock {
	var (
		blocks   []lineBlock
		current  *lineBlock
		progress int
	)

	for i, line := range lines {
		upper := strings.ToUpper(strings.TrimSpace(line))

		if blockStartPattern.MatchString(upper) {
			if current != nil {
				blocks = append(blocks, *current)
			}
			current = &lineBlock{start: i, lines: []string{line}}
			progress = 0
			continue
		}
		if current == nil {
			continue
		}

		current.lines = append(current.lines, line)
		if strings.Contains(upper, terminatorSequence[progress]) {
			progress++
			if progress == len(terminatorSequence) {
				return append(blocks, *current)
			}
		} else {
			progress = 0
		}
	}

	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks
}

func (CarrierBlockParser) parseBlock(po string, block []string) outcome {
	code := strings.Fields(block[0])[0]

	qty, found := quantityAfterCarMarker(block)
	if !found {
		qty, found = firstIntBeforeAmount(block)
	}
	if !found {
		return skipped(code, "no-quantity")
	}

	total := ""
	for _, line := range block {
		for _, tok := range strings.Fields(line) {
			if isMoney(tok) {
				total = tok
			}
		}
	}
	if total == "" {
		return skipped(code, "no-total")
	}

	return build(po, code, qty, total)
}

// quantityAfterCarMarker reads the first bare integer after the first CAR
// marker of the block, looking at the marker's line tail and then at the next
// line. Only positive quantities count.
func quantityAfterCarMarker(block []string) (int, bool) {
	for idx, line := range block {
		loc := carMarkerPattern.FindStringIndex(line)
		if loc == nil {
			continue
		}

		qty, found := firstIntUntilAmount(strings.Fields(line[loc[1]:]))
		if !found && idx+1 < len(block) {
			qty, found = firstIntUntilAmount(strings.Fields(block[idx+1]))
		}
		return qty, found && qty > 0
	}
	return 0, false
}

// firstIntBeforeAmount scans the block for the first bare integer seen
// before any amount on its line. The leading product code is not a
// candidate.
func firstIntBeforeAmount(block []string) (int, bool) {
	for idx, line := range block {
		tokens := strings.Fields(line)
		if idx == 0 && len(tokens) > 0 {
			// The 7-digit code opens the block and would read as a quantity.
			tokens = tokens[1:]
		}
		if qty, found := firstIntUntilAmount(tokens); found && qty > 0 {
			return qty, true
		}
	}
	return 0, false
}

// firstIntUntilAmount returns the first bare integer token, stopping at the
// first amount.
func firstIntUntilAmount(tokens []string) (int, bool) {
	for _, tok := range tokens {
		if isBareInt(tok) {
			qty, err := parseQty(tok)
			return qty, err == nil
		}
		if isMoney(tok) {
			return 0, false
		}
	}
	return 0, false
}

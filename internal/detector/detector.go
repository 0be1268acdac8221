// =============================================================================
// Back-office Extract - Supplier Detector
// =============================================================================
//
// The detector answers "which supplier printed this invoice?" by counting
// how many of the extracted product codes each supplier's catalog knows:
//
//   overlap(supplier) = |codes ∩ catalog[supplier]|
//
// The supplier with the largest overlap wins. An overlap of zero everywhere
// means no match. Suppliers are scored in the fixed order ALM, COKE, CUB,
// LION; on a tie the first one is returned and the result is flagged
// Ambiguous with every tied supplier listed.
//
// The Classifier builds on this: it runs every invoice parser against the
// document and keeps the parser whose output scores best.
//
// =============================================================================

package detector

import (
	"github.com/ginjaninja78/backoffice-extract/internal/normalize"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// CodeIndex is the read-only view of the catalog the detector needs.
type CodeIndex interface {
	// Suppliers returns the suppliers to score, in detection order.
	Suppliers() []types.Supplier

	// Codes returns the normalized product codes known for a supplier.
	Codes(s types.Supplier) map[string]struct{}
}

// MatchResult is the outcome of scoring one set of product codes.
type MatchResult struct {
	// Supplier is the best supplier, or "" when nothing overlapped.
	Supplier types.Supplier

	// Overlap is the number of codes shared with Supplier's catalog.
	Overlap int

	// Ambiguous is set when several suppliers share the best overlap.
	Ambiguous bool

	// Tied lists every supplier with the best overlap when Ambiguous.
	Tied []types.Supplier
}

// Matched reports whether a supplier was found.
func (r MatchResult) Matched() bool {
	return r.Supplier != "" && r.Overlap > 0
}

// Detect scores the codes against every supplier of the index.
//
// PARAMETERS:
//   - codes: The product codes of one record set, as extracted.
//   - index: The supplier catalog.
//
// RETURNS:
//   - The best supplier with its overlap. A zero MatchResult when no
//     supplier shares any code.
func Detect(codes map[string]struct{}, index CodeIndex) MatchResult {
	normalized := make(map[string]struct{}, len(codes))
	for code := range codes {
		if n := normalize.ProductCode(code); n != "" {
			normalized[n] = struct{}{}
		}
	}

	var best MatchResult
	for _, supplier := range index.Suppliers() {
		overlap := Overlap(normalized, index.Codes(supplier))
		switch {
		case overlap == 0:
			continue
		case overlap > best.Overlap:
			best = MatchResult{Supplier: supplier, Overlap: overlap, Tied: []types.Supplier{supplier}}
		case overlap == best.Overlap:
			best.Tied = append(best.Tied, supplier)
		}
	}

	if len(best.Tied) > 1 {
		best.Ambiguous = true
	} else {
		best.Tied = nil
	}
	return best
}

// Overlap counts the codes present in both sets.
func Overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for code := range a {
		if _, ok := b[code]; ok {
			n++
		}
	}
	return n
}

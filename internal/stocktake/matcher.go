// =============================================================================
// Back-office Extract - Barcode Reconciliation
// =============================================================================
//
// MATCHING RULES:
//   1. Exact match on the normalized barcode.
//   2. Suffix match: products whose barcode ends with the scanned barcode
//      (scanners sometimes drop leading digits). The longest product barcode
//      wins. Two or more longest candidates of equal length leave the scan
//      unmatched with the candidates listed.
//   3. Anything else is unmatched.
//
// Matched scans are grouped by product after resolution, so a product hit
// through both rules is counted once with the summed count.
//
// =============================================================================

package stocktake

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// Matcher resolves scanned barcodes against the products table. It is not
// modified after construction.
type Matcher struct {
	byBarcode map[string]Product
	barcodes  []string
}

// NewMatcher indexes products by barcode. For repeated barcodes the first
// product wins.
func NewMatcher(products []Product) *Matcher {
	m := &Matcher{byBarcode: make(map[string]Product, len(products))}
	for _, p := range products {
		if p.Barcode == "" {
			continue
		}
		if _, ok := m.byBarcode[p.Barcode]; ok {
			continue
		}
		m.byBarcode[p.Barcode] = p
		m.barcodes = append(m.barcodes, p.Barcode)
	}
	sort.Strings(m.barcodes)
	return m
}

// Resolve finds the product for one scanned barcode.
//
// RETURNS:
//   - The product and true when the scan resolves.
//   - The tied candidate barcodes when the longest suffix match is not
//     unique. Nil otherwise.
func (m *Matcher) Resolve(barcode string) (Product, []string, bool) {
	if barcode == "" {
		return Product{}, nil, false
	}
	if p, ok := m.byBarcode[barcode]; ok {
		return p, nil, true
	}

	var best []string
	for _, candidate := range m.barcodes {
		if len(candidate) <= len(barcode) || !strings.HasSuffix(candidate, barcode) {
			continue
		}
		switch {
		case len(best) == 0 || len(candidate) > len(best[0]):
			best = []string{candidate}
		case len(candidate) == len(best[0]):
			best = append(best, candidate)
		}
	}

	switch len(best) {
	case 0:
		return Product{}, nil, false
	case 1:
		return m.byBarcode[best[0]], nil, true
	default:
		return Product{}, best, false
	}
}

type productKey struct {
	id   string
	name string
}

// Match reconciles aggregated scans against the products table.
//
// PARAMETERS:
//   - scans: The aggregated scan counts.
//
// RETURNS:
//   - Matched counts per product, sorted by product name then id.
//   - Unmatched scans in input order. Every scan lands in exactly one of
//     the two lists.
func (m *Matcher) Match(scans []types.ScanAggregate) types.ReconciliationResult {
	var result types.ReconciliationResult

	sums := make(map[productKey]int)
	var order []productKey
	for _, scan := range scans {
		p, candidates, ok := m.Resolve(scan.Barcode)
		if !ok {
			result.Unmatched = append(result.Unmatched, types.UnmatchedScan{
				ScannedBarcode: scan.Barcode,
				Count:          scan.Count,
				Candidates:     candidates,
			})
			continue
		}

		key := productKey{id: p.ID, name: p.Name}
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += scan.Count
	}

	for _, key := range order {
		result.Matched = append(result.Matched, types.MatchedCount{
			ProductID:   key.id,
			ProductName: key.name,
			Count:       sums[key],
		})
	}
	sort.SliceStable(result.Matched, func(i, j int) bool {
		a, b := result.Matched[i], result.Matched[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return a.ProductID < b.ProductID
	})

	return result
}

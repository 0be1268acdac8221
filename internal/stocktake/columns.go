// =============================================================================
// Back-office Extract - Stocktake Column Detection
// =============================================================================
//
// Scanner exports and product tables come from different tools, each with
// its own header names ("EAN", "Código", "Bar Code\nScanned", ...). A column
// is found in two passes over the normalized header names:
//   1. Exact match, trying the candidates in order
//   2. First column whose name contains any candidate
//
// =============================================================================

package stocktake

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// columnFinder locates one logical column in a header row.
type columnFinder struct {
	candidates []string
	contains   *ahocorasick.Matcher
}

func newColumnFinder(candidates []string) *columnFinder {
	normalized := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if n := normalizeHeader(c); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &columnFinder{
		candidates: normalized,
		contains:   ahocorasick.NewStringMatcher(normalized),
	}
}

// find returns the index of the matching column, or -1. Columns listed in
// taken are never returned.
func (f *columnFinder) find(header []string, taken ...int) int {
	if len(f.candidates) == 0 {
		return -1
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = normalizeHeader(h)
	}

	for _, cand := range f.candidates {
		for i, name := range names {
			if name == cand && !isTaken(i, taken) {
				return i
			}
		}
	}

	for i, name := range names {
		if name == "" || isTaken(i, taken) {
			continue
		}
		if len(f.contains.Match([]byte(name))) > 0 {
			return i
		}
	}
	return -1
}

// normalizeHeader lower-cases a header, folds line breaks to spaces and trims.
func normalizeHeader(h string) string {
	h = strings.NewReplacer("\r", " ", "\n", " ").Replace(h)
	return strings.ToLower(strings.TrimSpace(h))
}

func isTaken(i int, taken []int) bool {
	for _, t := range taken {
		if t == i {
			return true
		}
	}
	return false
}

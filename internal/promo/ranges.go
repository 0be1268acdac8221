package promo

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// ErrInvalidRange is returned for malformed category page ranges.
var ErrInvalidRange = errors.New("invalid category range")

// PageRange is an inclusive 0-based page interval.
type PageRange struct {
	Start int
	End   int
}

func (r PageRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ParseRanges parses a range list such as
// "ALM BEER:6-8|CUB BEER:9-10|SPARKLING WINE:19-20".
// Empty chunks are ignored. Category names are resolved with
// ResolveCategory.
func ParseRanges(arg string) (map[types.PromoCategory]PageRange, error) {
	out := make(map[types.PromoCategory]PageRange)
	for _, chunk := range strings.Split(arg, "|") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		name, rng, ok := strings.Cut(chunk, ":")
		if !ok {
			return nil, fmt.Errorf("%w: chunk %q has no ':'", ErrInvalidRange, chunk)
		}
		if err := addRange(out, name, rng); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RangesFromMap converts configured ranges, keyed by category name.
func RangesFromMap(m map[string]string) (map[types.PromoCategory]PageRange, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[types.PromoCategory]PageRange, len(m))
	for _, name := range names {
		if err := addRange(out, name, m[name]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func addRange(out map[types.PromoCategory]PageRange, name, rng string) error {
	category, err := ResolveCategory(name)
	if err != nil {
		return err
	}

	a, b, ok := strings.Cut(rng, "-")
	if !ok {
		return fmt.Errorf("%w: %q for %s has no '-'", ErrInvalidRange, rng, category)
	}
	start, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return fmt.Errorf("%w: %q for %s: %v", ErrInvalidRange, rng, category, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return fmt.Errorf("%w: %q for %s: %v", ErrInvalidRange, rng, category, err)
	}
	if end < start {
		return fmt.Errorf("%w: %s ends before it starts (%d-%d)", ErrInvalidRange, category, start, end)
	}

	out[category] = PageRange{Start: start, End: end}
	return nil
}

// ResolveCategory maps a user supplied name to a catalog category. An exact
// case-insensitive match wins; otherwise the name must fuzzy-match exactly
// one category.
func ResolveCategory(name string) (types.PromoCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty category name", ErrInvalidRange)
	}

	targets := make([]string, len(types.PromoCategories))
	for i, c := range types.PromoCategories {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
		targets[i] = string(c)
	}

	matches := fuzzy.FindNormalizedFold(name, targets)
	switch len(matches) {
	case 1:
		return types.PromoCategory(matches[0]), nil
	case 0:
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidRange, name)
	default:
		return "", fmt.Errorf("%w: category %q is ambiguous (%s)", ErrInvalidRange, name, strings.Join(matches, ", "))
	}
}

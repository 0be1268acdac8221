// =============================================================================
// Back-office Extract - Supplier Product Catalog
// =============================================================================
//
// The supplier reference workbook has one sheet per supplier:
//
//   | Product Code      | Product Name        |
//   |-------------------|---------------------|
//   | 100200            | COKE 24X375ML       |
//   | ALM-001/ALM-01b   | Beer X              |
//
// A Product Code cell may hold several codes separated by "/", ",", ";" or
// "|". Every code is normalized and mapped to the product name. When the same
// normalized code maps to two different names, the first one wins and the
// conflict is kept for reporting.
//
// A Catalog is built once and never modified afterwards. It is passed
// explicitly to the detector and the commands that need it.
//
// =============================================================================

package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/backoffice-extract/internal/normalize"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
	"github.com/ginjaninja78/backoffice-extract/internal/xlsxparser"
)

// Column headers of a supplier sheet.
const (
	CodeColumn = "Product Code"
	NameColumn = "Product Name"
)

var (
	// ErrNoSheets is returned when the workbook holds no supplier sheet.
	ErrNoSheets = errors.New("no supplier sheets found")

	// ErrMissingColumn is returned when a supplier sheet has no code column.
	ErrMissingColumn = errors.New("missing column")
)

// =============================================================================
// TYPES
// =============================================================================

// Entry is one row of a supplier sheet before code expansion.
type Entry struct {
	Supplier types.Supplier
	Code     string
	Name     string
}

// Conflict records a code that was already mapped to another name.
type Conflict struct {
	Supplier    types.Supplier
	Code        string
	KeptName    string
	DroppedName string
}

// String renders the conflict for logs and reports.
func (c Conflict) String() string {
	return fmt.Sprintf("%s code %s: kept %q, dropped %q", c.Supplier, c.Code, c.KeptName, c.DroppedName)
}

type product struct {
	name     string
	supplier types.Supplier
}

// Catalog maps normalized product codes to product names, per supplier.
type Catalog struct {
	names     map[string]product
	codes     map[types.Supplier]map[string]struct{}
	suppliers []types.Supplier
	conflicts []Conflict
	ignored   []string
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// New builds a catalog from raw entries. Multi-code cells are expanded and
// every code is normalized with normalize.ProductCode.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		names: make(map[string]product),
		codes: make(map[types.Supplier]map[string]struct{}),
	}

	for _, e := range entries {
		set := c.supplierSet(e.Supplier)
		name := strings.TrimSpace(e.Name)

		for _, code := range SplitCodes(e.Code) {
			set[code] = struct{}{}

			existing, ok := c.names[code]
			if !ok {
				c.names[code] = product{name: name, supplier: e.Supplier}
				continue
			}
			if existing.name != name {
				c.conflicts = append(c.conflicts, Conflict{
					Supplier:    e.Supplier,
					Code:        code,
					KeptName:    existing.name,
					DroppedName: name,
				})
			}
		}
	}

	return c
}

func (c *Catalog) supplierSet(s types.Supplier) map[string]struct{} {
	set, ok := c.codes[s]
	if !ok {
		set = make(map[string]struct{})
		c.codes[s] = set
		c.suppliers = append(c.suppliers, s)
	}
	return set
}

// SplitCodes splits a Product Code cell into normalized codes. Empty parts
// and duplicates are dropped; order is preserved.
func SplitCodes(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == ',' || r == ';' || r == '|'
	})

	seen := make(map[string]struct{}, len(parts))
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		code := normalize.ProductCode(part)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// Load reads the supplier workbook.
//
// PARAMETERS:
//   - path: The path to the reference workbook.
//
// RETURNS:
//   - The catalog. Sheets that are not named after a known supplier are
//     listed by Ignored().
//   - ErrNoSheets if no sheet names a supplier, ErrMissingColumn if a
//     supplier sheet has no Product Code column, or a read error.
func Load(path string) (*Catalog, error) {
	sheets, err := xlsxparser.ReadSheets(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var (
		entries []Entry
		ignored []string
		found   []types.Supplier
	)
	for i := range sheets {
		sheet := &sheets[i]

		supplier, ok := types.ParseSupplier(sheet.Name)
		if !ok {
			ignored = append(ignored, sheet.Name)
			continue
		}
		found = append(found, supplier)

		table := sheet.Table(0)
		codeCol := table.Column(CodeColumn)
		if codeCol < 0 {
			return nil, fmt.Errorf("%w: sheet '%s' has no '%s' column", ErrMissingColumn, sheet.Name, CodeColumn)
		}
		nameCol := table.Column(NameColumn)

		for _, row := range table.Rows {
			entries = append(entries, Entry{
				Supplier: supplier,
				Code:     xlsxparser.Value(row, codeCol),
				Name:     xlsxparser.Value(row, nameCol),
			})
		}
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSheets, path)
	}

	c := New(entries)
	// Suppliers with an empty sheet still count as known.
	for _, s := range found {
		c.supplierSet(s)
	}
	c.ignored = ignored
	return c, nil
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Lookup returns the product name for a code. The code is normalized first.
func (c *Catalog) Lookup(code string) (string, types.Supplier, bool) {
	p, ok := c.names[normalize.ProductCode(code)]
	return p.name, p.supplier, ok
}

// Codes returns the normalized codes known for a supplier. The returned map
// must not be modified.
func (c *Catalog) Codes(s types.Supplier) map[string]struct{} {
	return c.codes[s]
}

// Suppliers returns the suppliers present in the catalog, in the fixed
// detection order.
func (c *Catalog) Suppliers() []types.Supplier {
	out := make([]types.Supplier, 0, len(c.suppliers))
	for _, s := range types.Suppliers {
		if _, ok := c.codes[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of distinct codes for a supplier.
func (c *Catalog) Len(s types.Supplier) int {
	return len(c.codes[s])
}

// Conflicts returns the codes that were mapped to more than one name.
func (c *Catalog) Conflicts() []Conflict {
	return c.conflicts
}

// Ignored returns the sheet names that did not match a known supplier.
func (c *Catalog) Ignored() []string {
	return c.ignored
}

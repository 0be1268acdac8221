// =============================================================================
// Back-office Extract - Shared Types
// =============================================================================
//
// This package contains the record types shared by the parsers, the detector,
// the reconciliation engine and the writers. Keeping them here avoids import
// cycles between:
//   - invoice / detector
//   - stocktake
//   - promo
//   - xlsxwriter
//
// Records are validated at construction and are never mutated afterwards.
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidRecord is returned when a record violates one of its invariants.
var ErrInvalidRecord = errors.New("invalid record")

// =============================================================================
// SUPPLIERS
// =============================================================================

// Supplier identifies the origin of an invoice document.
type Supplier string

const (
	SupplierALM  Supplier = "ALM"
	SupplierCOKE Supplier = "COKE"
	SupplierCUB  Supplier = "CUB"
	SupplierLION Supplier = "LION"
)

// Suppliers lists every known supplier in the fixed detection order.
// Ties in the supplier detector resolve to the earliest entry of this list.
var Suppliers = []Supplier{SupplierALM, SupplierCOKE, SupplierCUB, SupplierLION}

// ParseSupplier maps a sheet name or flag value to a Supplier.
func ParseSupplier(s string) (Supplier, bool) {
	candidate := Supplier(strings.ToUpper(strings.TrimSpace(s)))
	for _, sup := range Suppliers {
		if sup == candidate {
			return sup, true
		}
	}
	return "", false
}

// Dir returns the lower-case directory name used for per-supplier output.
func (s Supplier) Dir() string {
	return strings.ToLower(string(s))
}

// =============================================================================
// INVOICE LINE ITEMS
// =============================================================================

// DefaultPONumber is used when a document carries no purchase-order number.
const DefaultPONumber = "PO00000000"

// InvoiceLineItem is one product line recovered from an invoice PDF.
type InvoiceLineItem struct {
	// PONumber is the purchase order the line belongs to.
	PONumber string

	// ProductCode is the supplier product code as printed on the invoice.
	ProductCode string

	// OrderQty is the ordered quantity. Always positive.
	OrderQty int

	// TotalCost is the line value, rounded to 2 decimal places.
	TotalCost decimal.Decimal

	// AdminFee is only set on the first line of a document that carries an
	// administration or shrink-wrap fee.
	AdminFee decimal.NullDecimal
}

// NewInvoiceLineItem builds a line item and checks its invariants.
//
// PARAMETERS:
//   - po: The purchase order number (DefaultPONumber when unknown).
//   - code: The product code; must not be empty.
//   - qty: The ordered quantity; must be > 0.
//   - total: The line total; must be >= 0. Rounded to 2dp.
//
// RETURNS:
//   - The validated line item.
//   - An error wrapping ErrInvalidRecord when an invariant is violated.
func NewInvoiceLineItem(po, code string, qty int, total decimal.Decimal) (InvoiceLineItem, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return InvoiceLineItem{}, fmt.Errorf("%w: empty product code", ErrInvalidRecord)
	}
	if qty <= 0 {
		return InvoiceLineItem{}, fmt.Errorf("%w: order qty %d for %s", ErrInvalidRecord, qty, code)
	}
	if total.IsNegative() {
		return InvoiceLineItem{}, fmt.Errorf("%w: negative total %s for %s", ErrInvalidRecord, total, code)
	}
	if strings.TrimSpace(po) == "" {
		po = DefaultPONumber
	}
	return InvoiceLineItem{
		PONumber:    po,
		ProductCode: code,
		OrderQty:    qty,
		TotalCost:   total.Round(2),
	}, nil
}

// WithAdminFee returns a copy of the item carrying the given fee.
func (i InvoiceLineItem) WithAdminFee(fee decimal.Decimal) InvoiceLineItem {
	i.AdminFee = decimal.NewNullDecimal(fee.Round(2))
	return i
}

// ProductCodes returns the set of product codes present in items.
func ProductCodes(items []InvoiceLineItem) map[string]struct{} {
	codes := make(map[string]struct{}, len(items))
	for _, item := range items {
		codes[item.ProductCode] = struct{}{}
	}
	return codes
}

// =============================================================================
// STOCKTAKE RECORDS
// =============================================================================

// ScanAggregate is the summed count for one normalized barcode.
type ScanAggregate struct {
	Barcode string
	Count   int
}

// MatchedCount is one product row of the reconciliation output.
type MatchedCount struct {
	ProductID   string `csv:"ProductID"`
	ProductName string `csv:"ProductName"`
	Count       int    `csv:"count"`
}

// UnmatchedScan is a scanned barcode that could not be resolved to a product.
type UnmatchedScan struct {
	ScannedBarcode string

	Count int

	// Candidates lists the catalog barcodes that tied for the longest suffix
	// match. Empty when nothing matched at all.
	Candidates []string
}

// Ambiguous reports whether the scan was left unmatched because of a tie.
func (u UnmatchedScan) Ambiguous() bool {
	return len(u.Candidates) > 1
}

// ReconciliationResult holds the two disjoint outputs of the matcher.
type ReconciliationResult struct {
	Matched   []MatchedCount
	Unmatched []UnmatchedScan
}

// MatchedTotal sums the counts of all matched products.
func (r ReconciliationResult) MatchedTotal() int {
	total := 0
	for _, m := range r.Matched {
		total += m.Count
	}
	return total
}

// UnmatchedTotal sums the counts of all unmatched scans.
func (r ReconciliationResult) UnmatchedTotal() int {
	total := 0
	for _, u := range r.Unmatched {
		total += u.Count
	}
	return total
}

// =============================================================================
// PROMO RECORDS
// =============================================================================

// PromoCategory is one of the fixed promo catalog sections.
type PromoCategory string

const (
	CategoryALMBeer       PromoCategory = "ALM BEER"
	CategoryCUBBeer       PromoCategory = "CUB BEER"
	CategoryLIONBeer      PromoCategory = "LION BEER"
	CategoryALMCider      PromoCategory = "ALM CIDER"
	CategorySpiritsSingle PromoCategory = "SPIRITS - SINGLE SELL"
	CategoryRTDsSingle    PromoCategory = "RTDS - SINGLE SELL"
	CategoryWineSingle    PromoCategory = "WINE - SINGLE SELL"
	CategorySparkling     PromoCategory = "SPARKLING WINE"
)

// PromoCategories lists the categories in catalog order.
var PromoCategories = []PromoCategory{
	CategoryALMBeer,
	CategoryCUBBeer,
	CategoryLIONBeer,
	CategoryALMCider,
	CategorySpiritsSingle,
	CategoryRTDsSingle,
	CategoryWineSingle,
	CategorySparkling,
}

// PromoProductRecord is one product row found in the promo catalog.
type PromoProductRecord struct {
	Category    PromoCategory
	Page        int
	Code        string
	ProductName string
	RetailPrice decimal.Decimal
}

// NewPromoProductRecord validates and builds a promo row.
func NewPromoProductRecord(category PromoCategory, page int, code, name string, price decimal.Decimal) (PromoProductRecord, error) {
	if page < 0 {
		return PromoProductRecord{}, fmt.Errorf("%w: negative page %d", ErrInvalidRecord, page)
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(name) == "" {
		return PromoProductRecord{}, fmt.Errorf("%w: empty code or name", ErrInvalidRecord)
	}
	if price.IsNegative() {
		return PromoProductRecord{}, fmt.Errorf("%w: negative price for %s", ErrInvalidRecord, code)
	}
	return PromoProductRecord{
		Category:    category,
		Page:        page,
		Code:        code,
		ProductName: name,
		RetailPrice: price.Round(2),
	}, nil
}

// Key returns the deduplication key over the full tuple.
func (r PromoProductRecord) Key() string {
	return fmt.Sprintf("%s|%d|%s|%s|%s", r.Category, r.Page, r.Code, r.ProductName, r.RetailPrice.StringFixed(2))
}

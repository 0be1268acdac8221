package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestFindPONumber(t *testing.T) {
	assert.Equal(t, "PO12345678", FindPONumber([]string{"TAX INVOICE", "Order: PO12345678 ref"}))
	assert.Equal(t, types.DefaultPONumber, FindPONumber([]string{"PO1234", "no order"}))
	assert.Equal(t, types.DefaultPONumber, FindPONumber(nil))
}

func TestParsersOrder(t *testing.T) {
	var suppliers []types.Supplier
	for _, p := range Parsers() {
		suppliers = append(suppliers, p.Supplier())
	}
	assert.Equal(t, types.Suppliers, suppliers)
}

// =============================================================================
// FORMAT A
// =============================================================================

func TestCarrierBlockParser(t *testing.T) {
	lines := []string{
		"LION TAX INVOICE PO87654321",
		"1234567 XXXX GOLD 24X375ML",
		"CTN 24 CAR 3 48.20",
		"144.60",
		"7654321 PURE BLONDE 24X355ML",
		"CAR",
		"2 55.00 110.00",
		"CARRIER",
		"LOAD",
		"TOTAL",
		"9999999 IGNORED AFTER TOTAL",
		"CAR 9 1.00",
	}

	doc := CarrierBlockParser{}.Parse(lines)
	require.Len(t, doc.Items, 2)
	assert.Empty(t, doc.Skipped)

	first := doc.Items[0]
	assert.Equal(t, "PO87654321", first.PONumber)
	assert.Equal(t, "1234567", first.ProductCode)
	assert.Equal(t, 3, first.OrderQty)
	assert.True(t, money(t, "144.60").Equal(first.TotalCost))

	second := doc.Items[1]
	assert.Equal(t, "7654321", second.ProductCode)
	assert.Equal(t, 2, second.OrderQty)
	assert.True(t, money(t, "110.00").Equal(second.TotalCost))
}

func TestCarrierBlockTerminatorOutOfOrder(t *testing.T) {
	block := []string{
		"1234567 PALE ALE",
		"CARRIER",
		"UNRELATED 2 10.00",
		"LOAD",
		"TOTAL",
	}
	lines := append(append([]string{}, block...), "7654321 LAGER", "CAR 4 20.00")

	blocks := splitCarrierBlocks(lines)
	require.Len(t, blocks, 2, "interrupted terminator must not close the block")
	assert.Equal(t, block, blocks[0].lines)

	doc := CarrierBlockParser{}.Parse(lines)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "7654321", doc.Items[1].ProductCode)
}

func TestCarrierBlockTerminatorCloses(t *testing.T) {
	lines := []string{
		"1234567 PALE ALE",
		"CAR 2 10.00",
		"CARRIER",
		"LOAD",
		"TOTAL",
		"7654321 LAGER",
		"CAR 4 20.00",
	}

	blocks := splitCarrierBlocks(lines)
	require.Len(t, blocks, 1)
	assert.Len(t, blocks[0].lines, 5)
}

func TestCarrierBlockQuantityFallback(t *testing.T) {
	doc := CarrierBlockParser{}.Parse([]string{
		"1234567 DRAUGHT KEG",
		"6 31.00 186.00",
	})
	require.Len(t, doc.Items, 1)
	assert.Equal(t, 6, doc.Items[0].OrderQty)
	assert.True(t, money(t, "186.00").Equal(doc.Items[0].TotalCost))
}

func TestCarrierBlockSkips(t *testing.T) {
	doc := CarrierBlockParser{}.Parse([]string{
		"1234567 NO NUMBERS HERE",
		"7654321 NO TOTAL",
		"CAR 5",
	})
	assert.Empty(t, doc.Items)
	require.Len(t, doc.Skipped, 2)
	assert.Equal(t, "no-quantity", doc.Skipped[0].Reason)
	assert.Equal(t, "no-total", doc.Skipped[1].Reason)
	assert.Equal(t, 1, doc.Skipped[1].Index)
}

// =============================================================================
// FORMAT B
// =============================================================================

func offsetLines(code, qty, total string) []string {
	return []string{code, qty, "CARLTON DRY", "24X375ML", "1", "N", "Y", total, "", "", "", ""}
}

func TestOffsetParser(t *testing.T) {
	lines := append([]string{"CUB INVOICE PO11112222"}, offsetLines("12345", "2", "96.500")...)

	doc := OffsetParser{}.Parse(lines)
	require.Len(t, doc.Items, 1)
	item := doc.Items[0]
	assert.Equal(t, "PO11112222", item.PONumber)
	assert.Equal(t, "12345", item.ProductCode)
	assert.Equal(t, 2, item.OrderQty)
	assert.True(t, money(t, "96.50").Equal(item.TotalCost))
}

func TestOffsetParserSkips(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		reason string
	}{
		{"bad quantity", offsetLines("12345", "two", "96.50"), "bad-quantity"},
		{"fractional quantity", offsetLines("12345", "1.5", "96.50"), "fractional-quantity"},
		{"no total", offsetLines("12345", "2", "N/A"), "no-total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := OffsetParser{}.Parse(tt.lines)
			assert.Empty(t, doc.Items)
			require.NotEmpty(t, doc.Skipped)
			assert.Equal(t, tt.reason, doc.Skipped[0].Reason)
		})
	}
}

func TestOffsetParserShortDocument(t *testing.T) {
	doc := OffsetParser{}.Parse([]string{"12345", "2", "Y", "9.99"})
	assert.Empty(t, doc.Items)
	assert.Empty(t, doc.Skipped)
}

// =============================================================================
// FORMAT C
// =============================================================================

func TestUnitBlockParser(t *testing.T) {
	lines := []string{
		"PO22223333",
		"GREAT NORTHERN ORIGINAL 375ML",
		"2 48.20 5.00 96.40 9.64 106.04",
		"123456",
		"FURPHY ALE 4X500ML",
		"noise that is dropped",
		"1 30.00 30.00 3.00 33.00",
		"654321",
		"SHRINK WRAP",
		"PER PALLET",
		"4.50",
		"ADMINISTRATION FEE .75",
		"1.25",
	}

	doc := UnitBlockParser{}.Parse(lines)
	require.Len(t, doc.Items, 2)
	assert.True(t, doc.HasAdminFee())

	first := doc.Items[0]
	assert.Equal(t, "123456", first.ProductCode)
	assert.Equal(t, 2, first.OrderQty)
	assert.True(t, money(t, "96.40").Equal(first.TotalCost))
	assert.True(t, money(t, "5.75").Equal(first.AdminFee.Decimal))

	second := doc.Items[1]
	assert.Equal(t, "654321", second.ProductCode)
	assert.Equal(t, 1, second.OrderQty)
	assert.True(t, money(t, "30.00").Equal(second.TotalCost))
	assert.False(t, second.AdminFee.Valid)
}

func TestUnitBlockTooFewDecimals(t *testing.T) {
	doc := UnitBlockParser{}.Parse([]string{
		"TOOHEYS NEW 375ML",
		"3 12.00 36.00",
		"111222",
	})
	assert.Empty(t, doc.Items)
	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, "too-few-decimals", doc.Skipped[0].Reason)
	assert.Equal(t, "111222", doc.Skipped[0].Code)
}

func TestUnitBlockQuantityBounds(t *testing.T) {
	doc := UnitBlockParser{}.Parse([]string{
		"VB 375ML",
		"240 1.00 5 48.20 5.00 96.40",
		"111222",
	})
	require.Len(t, doc.Items, 1)
	assert.Equal(t, 5, doc.Items[0].OrderQty)
	assert.True(t, money(t, "48.20").Equal(doc.Items[0].TotalCost))
}

func TestAdminFeeWithoutMarkers(t *testing.T) {
	assert.True(t, AdminFee([]string{"1.00", "2.00"}).IsZero())
}

// =============================================================================
// FORMAT D
// =============================================================================

func TestWindowParserScenario(t *testing.T) {
	doc := WindowParser{}.Parse([]string{"5", "x", "100200", "x", "x", "x", "12.50"})

	require.Len(t, doc.Items, 1)
	item := doc.Items[0]
	assert.Equal(t, types.DefaultPONumber, item.PONumber)
	assert.Equal(t, "100200", item.ProductCode)
	assert.Equal(t, 5, item.OrderQty)
	assert.True(t, money(t, "12.50").Equal(item.TotalCost))
}

func TestWindowParserResumesAfterWindow(t *testing.T) {
	lines := []string{
		"5", "x", "100200", "x", "x", "x", "12.50",
		"2", "x", "300400", "x", "x", "x", "7.00",
	}

	doc := WindowParser{}.Parse(lines)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "300400", doc.Items[1].ProductCode)
	assert.Equal(t, 2, doc.Items[1].OrderQty)
}

func TestWindowParserZeroQuantity(t *testing.T) {
	doc := WindowParser{}.Parse([]string{"0", "x", "100200", "x", "x", "x", "12.50"})
	assert.Empty(t, doc.Items)
	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, "invalid-record", doc.Skipped[0].Reason)
}

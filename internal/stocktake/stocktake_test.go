package stocktake

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/config"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

func testSettings() config.StocktakeSettings {
	return config.StocktakeSettings{
		BarcodeCandidates: []string{"barcode", "bar code", "code", "ean", "upc", "codigo", "código"},
		CountCandidates:   []string{"count", "qty", "quantity", "cantidad", "scans"},
		NameCandidates:    []string{"productname", "name", "product", "description", "descripcion"},
		IDCandidates:      []string{"productid", "id", "product id", "lightspeed id", "ls_id"},
		CSVSettings:       config.CSVSettings{Delimiter: ",", Encoding: "UTF-8"},
	}
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeXLSX(t *testing.T, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestColumnFinder(t *testing.T) {
	f := newColumnFinder([]string{"barcode", "ean"})

	tests := []struct {
		name   string
		header []string
		taken  []int
		want   int
	}{
		{"exact", []string{"Qty", " Barcode "}, nil, 1},
		{"exact beats contains", []string{"EAN Scanned", "ean"}, nil, 1},
		{"candidate order", []string{"EAN", "Barcode"}, nil, 1},
		{"contains", []string{"Qty", "Bar\nBarcode Scanned"}, nil, 1},
		{"taken", []string{"Barcode", "EAN"}, []int{0}, 1},
		{"missing", []string{"Qty", "Name"}, nil, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.find(tt.header, tt.taken...))
		})
	}
}

func TestLoadScansWithHeader(t *testing.T) {
	path := writeCSV(t, "scanner1.csv", "Código,Cantidad\n9300000123456,2\n9.300000123456E+12,3\n0042,x\n,5\n")
	l := NewLoader(testSettings(), zap.NewNop())

	got, err := l.LoadScans(path)
	require.NoError(t, err)
	assert.Equal(t, []types.ScanAggregate{
		{Barcode: "0042", Count: 0},
		{Barcode: "9300000123456", Count: 5},
	}, got)
}

func TestLoadScansHeaderWithoutCount(t *testing.T) {
	path := writeCSV(t, "scanner1.csv", "EAN\n111\n111\n222\n")
	l := NewLoader(testSettings(), nil)

	got, err := l.LoadScans(path)
	require.NoError(t, err)
	assert.Equal(t, []types.ScanAggregate{{Barcode: "111", Count: 2}, {Barcode: "222", Count: 1}}, got)
}

func TestLoadScansHeaderless(t *testing.T) {
	l := NewLoader(testSettings(), zap.NewNop())

	t.Run("one unit per row", func(t *testing.T) {
		path := writeCSV(t, "scanner2.csv", "9300000123456\n9300000123456\n555\n")
		got, err := l.LoadScans(path)
		require.NoError(t, err)
		assert.Equal(t, []types.ScanAggregate{{Barcode: "555", Count: 1}, {Barcode: "9300000123456", Count: 2}}, got)
	})

	t.Run("second column is the count", func(t *testing.T) {
		path := writeCSV(t, "scanner2.csv", "9300000123456,4\n555,-3\n555,2.9\n777\n")
		got, err := l.LoadScans(path)
		require.NoError(t, err)
		assert.Equal(t, []types.ScanAggregate{
			{Barcode: "555", Count: 2},
			{Barcode: "777", Count: 0},
			{Barcode: "9300000123456", Count: 4},
		}, got)
	})

	t.Run("workbook", func(t *testing.T) {
		path := writeXLSX(t, "scanner2.xlsx", [][]interface{}{
			{"9300000123456", 1},
			{},
			{"9300000123456", 2},
		})
		got, err := l.LoadScans(path)
		require.NoError(t, err)
		assert.Equal(t, []types.ScanAggregate{{Barcode: "9300000123456", Count: 3}}, got)
	})
}

func TestLoadScansErrors(t *testing.T) {
	l := NewLoader(testSettings(), zap.NewNop())

	_, err := l.LoadScans(writeCSV(t, "scanner.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	got, err := l.LoadScans(writeCSV(t, "empty.csv", ""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAggregate(t *testing.T) {
	got := Aggregate(
		[]types.ScanAggregate{{Barcode: "2", Count: 1}, {Barcode: "1", Count: 2}},
		[]types.ScanAggregate{{Barcode: "2", Count: 4}},
	)
	assert.Equal(t, []types.ScanAggregate{{Barcode: "1", Count: 2}, {Barcode: "2", Count: 5}}, got)
}

func TestLoadProducts(t *testing.T) {
	path := writeXLSX(t, "products.xlsx", [][]interface{}{
		{"Product ID", "Product Name", "Barcode"},
		{"A1", "VB Stubby", "9300000123456"},
		{"A2", "Coke 375ML", "0000555"},
		{"A3", "VB Stubby dup", "9300000123456"},
		{"A4", "No barcode", ""},
	})
	l := NewLoader(testSettings(), zap.NewNop())

	table, err := l.LoadProducts(path)
	require.NoError(t, err)
	assert.Equal(t, []Product{
		{ID: "A1", Name: "VB Stubby", Barcode: "9300000123456"},
		{ID: "A2", Name: "Coke 375ML", Barcode: "0000555"},
	}, table.Products)
	require.Len(t, table.Duplicates, 1)
	assert.Equal(t, "A3", table.Duplicates[0].ID)
}

func TestLoadProductsDefaults(t *testing.T) {
	path := writeCSV(t, "products.csv", "ean\n111\n\n222\n")
	l := NewLoader(testSettings(), zap.NewNop())

	table, err := l.LoadProducts(path)
	require.NoError(t, err)
	assert.Equal(t, []Product{
		{ID: "1", Name: "111", Barcode: "111"},
		{ID: "2", Name: "222", Barcode: "222"},
	}, table.Products)
}

func TestLoadProductsErrors(t *testing.T) {
	l := NewLoader(testSettings(), zap.NewNop())

	_, err := l.LoadProducts(writeCSV(t, "products.csv", "Barcode\n"))
	assert.ErrorIs(t, err, ErrEmptyProducts)

	_, err = l.LoadProducts(writeCSV(t, "products.csv", "Sku,Title\n1,A\n"))
	assert.ErrorIs(t, err, ErrNoBarcodeColumn)

	_, err = l.LoadProducts(writeCSV(t, "products.csv", "Barcode,Name\n,A\n"))
	assert.ErrorIs(t, err, ErrEmptyProducts)
}

func TestResolveSuffixTieBreak(t *testing.T) {
	t.Run("equal length is ambiguous", func(t *testing.T) {
		m := NewMatcher([]Product{
			{ID: "1", Name: "A", Barcode: "991234"},
			{ID: "2", Name: "B", Barcode: "881234"},
		})
		_, candidates, ok := m.Resolve("1234")
		assert.False(t, ok)
		assert.Equal(t, []string{"881234", "991234"}, candidates)
	})

	t.Run("longest wins", func(t *testing.T) {
		m := NewMatcher([]Product{
			{ID: "1", Name: "A", Barcode: "9991234"},
			{ID: "2", Name: "B", Barcode: "881234"},
		})
		p, candidates, ok := m.Resolve("1234")
		assert.True(t, ok)
		assert.Nil(t, candidates)
		assert.Equal(t, "9991234", p.Barcode)
	})

	t.Run("exact before suffix", func(t *testing.T) {
		m := NewMatcher([]Product{
			{ID: "1", Name: "A", Barcode: "991234"},
			{ID: "2", Name: "B", Barcode: "1234"},
		})
		p, _, ok := m.Resolve("1234")
		assert.True(t, ok)
		assert.Equal(t, "2", p.ID)
	})

	t.Run("empty", func(t *testing.T) {
		_, _, ok := NewMatcher(nil).Resolve("")
		assert.False(t, ok)
	})
}

func TestMatchGroupsByProduct(t *testing.T) {
	m := NewMatcher([]Product{
		{ID: "10", Name: "VB Stubby", Barcode: "9300000123456"},
		{ID: "20", Name: "Coke", Barcode: "555"},
		{ID: "30", Name: "Alpha", Barcode: "ALM-001"},
	})

	result := m.Match([]types.ScanAggregate{
		{Barcode: "123456", Count: 2},
		{Barcode: "9300000123456", Count: 3},
		{Barcode: "ALM-001", Count: 1},
		{Barcode: "777", Count: 4},
	})

	assert.Equal(t, []types.MatchedCount{
		{ProductID: "30", ProductName: "Alpha", Count: 1},
		{ProductID: "10", ProductName: "VB Stubby", Count: 5},
	}, result.Matched)
	assert.Equal(t, []types.UnmatchedScan{{ScannedBarcode: "777", Count: 4}}, result.Unmatched)
}

func TestMatchConservation(t *testing.T) {
	faker := gofakeit.New(7)

	for round := 0; round < 20; round++ {
		var products []Product
		for i := 0; i < 30; i++ {
			products = append(products, Product{
				ID:      fmt.Sprint(i),
				Name:    faker.BeerName(),
				Barcode: faker.Numerify("93#########"),
			})
		}

		var first, second []types.ScanAggregate
		for i := 0; i < 40; i++ {
			scan := types.ScanAggregate{Count: faker.Number(0, 50)}
			switch faker.Number(0, 2) {
			case 0:
				scan.Barcode = products[faker.Number(0, len(products)-1)].Barcode
			case 1:
				b := products[faker.Number(0, len(products)-1)].Barcode
				scan.Barcode = b[faker.Number(1, 6):]
			default:
				scan.Barcode = faker.Numerify("#####")
			}
			if i%2 == 0 {
				first = append(first, scan)
			} else {
				second = append(second, scan)
			}
		}

		scans := Aggregate(Aggregate(first), Aggregate(second))
		total := 0
		for _, s := range scans {
			total += s.Count
		}

		result := NewMatcher(products).Match(scans)
		assert.Equal(t, total, result.MatchedTotal()+result.UnmatchedTotal(), "round %d", round)
		assert.Equal(t, len(scans), len(result.Unmatched)+matchedScans(NewMatcher(products), scans))
	}
}

func matchedScans(m *Matcher, scans []types.ScanAggregate) int {
	n := 0
	for _, s := range scans {
		if _, _, ok := m.Resolve(s.Barcode); ok {
			n++
		}
	}
	return n
}

func TestReconcileAlphanumericBarcode(t *testing.T) {
	l := NewLoader(testSettings(), zap.NewNop())
	scans, err := l.LoadScans(writeCSV(t, "scanner1.csv", "Barcode,Count\n 0ALM-001 ,2\n"))
	require.NoError(t, err)
	products, err := l.LoadProducts(writeCSV(t, "products.csv", "Barcode,Name\nALM-001,Beer X\n"))
	require.NoError(t, err)

	result := NewMatcher(products.Products).Match(scans)
	assert.Empty(t, result.Unmatched)
	assert.Equal(t, []types.MatchedCount{{ProductID: "1", ProductName: "Beer X", Count: 2}}, result.Matched)
}

package promo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/config"
	"github.com/ginjaninja78/backoffice-extract/internal/pdftext"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

func word(text string, x0, x1, top float64) pdftext.Word {
	return pdftext.Word{Text: text, X0: x0, X1: x1, Top: top}
}

// productLine builds a row with the code ending at codeX1.
func productLine(code string, codeX1, top float64, name string, prices ...string) []pdftext.Word {
	line := []pdftext.Word{word(code, codeX1-30, codeX1, top)}
	if name != "" {
		line = append(line, word(name, codeX1+20, codeX1+180, top))
	}
	x := codeX1 + 250
	for _, p := range prices {
		line = append(line, word(p, x, x+40, top))
		x += 60
	}
	return line
}

func TestGroupLines(t *testing.T) {
	words := []pdftext.Word{
		word("$55.99", 400, 440, 101.5),
		word("12345", 70, 100, 100),
		word("VB", 120, 140, 100.8),
		word("Footer", 70, 120, 300),
	}

	lines := GroupLines(words, 2.2)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"12345", "VB", "$55.99"}, texts(lines[0]))
	assert.Equal(t, []string{"Footer"}, texts(lines[1]))
}

func texts(line []pdftext.Word) []string {
	var out []string
	for _, w := range line {
		out = append(out, w.Text)
	}
	return out
}

func TestCalibrateBandRejectsOutlier(t *testing.T) {
	band, ok := CalibrateBand([]float64{100, 102, 98, 101, 500}, 40)
	require.True(t, ok)
	assert.Equal(t, Band{Min: 61, Max: 141}, band)

	for _, x := range []float64{100, 102, 98, 101} {
		assert.True(t, band.Contains(x), "x1=%v", x)
	}
	assert.False(t, band.Contains(500))

	_, ok = CalibrateBand(nil, 40)
	assert.False(t, ok)
}

func TestExtractRow(t *testing.T) {
	band := Band{Min: 60, Max: 190}

	tests := []struct {
		name  string
		line  []pdftext.Word
		ok    bool
		code  string
		title string
		price string
	}{
		{"promo and retail", productLine("12345", 100, 10, "VB STUBBY 24X375ML", "$49.99", "$55.99"), true, "12345", "VB STUBBY 24X375ML", "55.99"},
		{"thousands separator", productLine("9876", 100, 10, "GREY GOOSE 4.5L", "$1,249.00"), true, "9876", "GREY GOOSE 4.5L", "1249"},
		{"no separator", productLine("9876", 100, 10, "MAGNUM", "1249.00"), true, "9876", "MAGNUM", "1249"},
		{"short code", productLine("123", 100, 10, "X", "$5.00"), false, "", "", ""},
		{"outside band", productLine("12345", 500, 10, "X", "$5.00"), false, "", "", ""},
		{"no price", productLine("12345", 100, 10, "X"), false, "", "", ""},
		{"no name", productLine("12345", 100, 10, "", "$5.00"), false, "", "", ""},
		{"empty", nil, false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := ExtractRow(tt.line, band)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.code, row.Code)
			assert.Equal(t, tt.title, row.Name)
			assert.True(t, decimal.RequireFromString(tt.price).Equal(row.Price), "price %s", row.Price)
		})
	}
}

func TestExtractRowNameStopsAtFirstPrice(t *testing.T) {
	line := []pdftext.Word{
		word("12345", 70, 100, 10),
		word("CORONA", 120, 160, 10),
		word("  EXTRA ", 165, 200, 10),
		word("$49.99", 300, 340, 10),
		word("SAVE", 350, 380, 10),
		word("$55.99", 400, 440, 10),
	}

	row, ok := ExtractRow(line, Band{Min: 60, Max: 190})
	require.True(t, ok)
	assert.Equal(t, "CORONA EXTRA", row.Name)
	assert.Equal(t, "55.99", row.Price.StringFixed(2))
}

func TestParseRanges(t *testing.T) {
	got, err := ParseRanges("ALM BEER:6-8| cub beer : 9 - 10 ||SPIRITS:14-15")
	require.NoError(t, err)
	assert.Equal(t, map[types.PromoCategory]PageRange{
		types.CategoryALMBeer:       {Start: 6, End: 8},
		types.CategoryCUBBeer:       {Start: 9, End: 10},
		types.CategorySpiritsSingle: {Start: 14, End: 15},
	}, got)

	for _, bad := range []string{"ALM BEER", "ALM BEER:6", "ALM BEER:8-6", "ALM BEER:a-b", "WHISKY:1-2", "ALM:1-2"} {
		_, err := ParseRanges(bad)
		assert.ErrorIs(t, err, ErrInvalidRange, bad)
	}
}

func TestRangesFromMap(t *testing.T) {
	got, err := RangesFromMap(map[string]string{"sparkling wine": "19-20"})
	require.NoError(t, err)
	assert.Equal(t, PageRange{Start: 19, End: 20}, got[types.CategorySparkling])
}

func TestExtract(t *testing.T) {
	pages := [][]pdftext.Word{
		// 0: cover
		{word("SPRING", 100, 200, 50)},
		// 1: ALM BEER
		append(append(
			productLine("12345", 100, 100, "CORONA 24X355ML", "$59.99", "$65.99"),
			productLine("12346", 102, 120, "COOPERS PALE 24X375ML", "$52.99")...),
			productLine("12345", 100, 140, "CORONA 24X355ML", "$59.99", "$65.99")...),
		// 2: CUB BEER
		productLine("55555", 98, 100, "VB STUBBY 24X375ML", "$55.99"),
		// 3: calibration outlier
		productLine("77777", 500, 100, "MISPLACED", "$1.00"),
	}

	e := NewExtractor(OptionsFromConfig(config.PromoSettings{
		YTolerance: 2.2,
		AutoMargin: 40,
		MinCodeX1:  60,
		MaxCodeX1:  190,
	}), zap.NewNop())

	result := e.Extract(pages, map[types.PromoCategory]PageRange{
		types.CategoryALMBeer:   {Start: 1, End: 1},
		types.CategoryCUBBeer:   {Start: 2, End: 3},
		types.CategoryLIONBeer:  {Start: 0, End: 0},
		types.CategorySparkling: {Start: 4, End: 5},
	})

	assert.True(t, result.Calibrated)
	assert.Equal(t, Band{Min: 60, Max: 140}, result.Band)
	require.Len(t, result.Records, 3)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 2, result.Counts[types.CategoryALMBeer])
	assert.Equal(t, 1, result.Counts[types.CategoryCUBBeer])

	first := result.Records[0]
	assert.Equal(t, types.CategoryALMBeer, first.Category)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, "CORONA 24X355ML", first.ProductName)
	assert.Equal(t, "65.99", first.RetailPrice.StringFixed(2))

	reasons := make(map[types.PromoCategory]string)
	for _, s := range result.Skipped {
		reasons[s.Category] = s.Reason
	}
	assert.Equal(t, ReasonNoRows, reasons[types.CategoryLIONBeer])
	assert.Equal(t, ReasonOutOfBounds, reasons[types.CategorySparkling])
	assert.Equal(t, ReasonNoRange, reasons[types.CategoryALMCider])
	assert.Len(t, result.Skipped, 6)
}

func TestBandWithoutCalibration(t *testing.T) {
	no := false
	e := NewExtractor(OptionsFromConfig(config.PromoSettings{MinCodeX1: 50, MaxCodeX1: 150, Autocalibrate: &no}), nil)
	band, calibrated := e.Band([][]pdftext.Word{productLine("12345", 300, 10, "X", "$1.00")})
	assert.False(t, calibrated)
	assert.Equal(t, Band{Min: 50, Max: 150}, band)

	e = NewExtractor(Options{Autocalibrate: true, Margin: 40, Manual: Band{Min: 60, Max: 190}}, nil)
	band, calibrated = e.Band([][]pdftext.Word{{word("Cover", 10, 50, 10)}})
	assert.False(t, calibrated)
	assert.Equal(t, Band{Min: 60, Max: 190}, band)
}

func TestPageStats(t *testing.T) {
	var page []pdftext.Word
	for i := 0; i < 5; i++ {
		page = append(page, productLine("1234"+string(rune('0'+i)), 100, float64(100+i*20), "ITEM", "$1.00")...)
	}

	e := NewExtractor(Options{YTolerance: 2.2}, nil)
	stats := e.PageStats([][]pdftext.Word{page, nil}, Band{Min: 60, Max: 190}, 3)
	require.Len(t, stats, 2)
	assert.Equal(t, 5, stats[0].Rows)
	assert.Len(t, stats[0].Samples, 3)
	assert.Equal(t, "12340", stats[0].Samples[0].Code)
	assert.Zero(t, stats[1].Rows)
}

package normalize

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestBarcode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "9300000123456", "9300000123456"},
		{"padded", "  9300000123456\t", "9300000123456"},
		{"float cell", "9300000123456.0", "9300000123456"},
		{"scientific", "9.300000123456E+12", "9300000123456"},
		{"scientific lower", "9.31e+5", "931000"},
		{"thousands separators", "9,300,000,123,456", "9300000123456"},
		{"punctuation", "93-0000-0123", "9300000123"},
		{"keeps leading zeros", "0012345", "0012345"},
		{"alphanumeric", " 0alm-001 ", "ALM-001"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Barcode(tt.in))
		})
	}
}

func TestProductCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"012345", "12345"},
		{"100200", "100200"},
		{"0000", "0"},
		{" 0ALM-001 ", "ALM-001"},
		{"ALM-01b", "ALM-01B"},
		{"1.002E+5", "100200"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ProductCode(tt.in))
		})
	}
}

func TestIsAlphanumeric(t *testing.T) {
	assert.False(t, IsAlphanumeric("9.3E+12"))
	assert.False(t, IsAlphanumeric("12345"))
	assert.True(t, IsAlphanumeric("ALM-001"))
	assert.True(t, IsAlphanumeric("12E"))
}

func TestRulesAreIdempotent(t *testing.T) {
	faker := gofakeit.New(42)

	rules := map[string]func(string) string{
		"DigitsOnly":         DigitsOnly,
		"CollapseScientific": CollapseScientific,
		"StripZeroFraction":  StripZeroFraction,
		"StripLeadingZeros":  StripLeadingZeros,
		"Alphanumeric":       Alphanumeric,
		"Barcode":            Barcode,
		"ProductCode":        ProductCode,
	}

	inputs := []string{"", "0", "000", "0.0", "1.5E+3", ".5e2", "ALM-001/ALM-01b"}
	for i := 0; i < 200; i++ {
		inputs = append(inputs,
			faker.Numerify("##############"),
			faker.Numerify("#############.0"),
			fmt.Sprintf("%.6E", faker.Float64Range(1e11, 1e13)),
			faker.Regex(`[ 0]{0,3}[A-Za-z]{2,4}-?[0-9]{2,5}[a-z]?`),
			faker.Regex(`[0-9 ,.\-]{1,16}`),
			faker.LetterN(6),
		)
	}

	for name, rule := range rules {
		for _, in := range inputs {
			once := rule(in)
			assert.Equal(t, once, rule(once), "%s(%q)", name, in)
		}
	}
}

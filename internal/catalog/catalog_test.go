package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

func TestSplitCodes(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"100200", []string{"100200"}},
		{"ALM-001/ALM-01b", []string{"ALM-001", "ALM-01B"}},
		{"1001, 1002;1003|1004", []string{"1001", "1002", "1003", "1004"}},
		{"012345/12345", []string{"12345"}},
		{" / ;", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitCodes(tt.raw))
		})
	}
}

func TestAlphanumericCodeLookup(t *testing.T) {
	c := New([]Entry{{Supplier: types.SupplierALM, Code: "ALM-001/ALM-01b", Name: "Beer X"}})

	name, supplier, ok := c.Lookup(" 0ALM-001 ")
	require.True(t, ok)
	assert.Equal(t, "Beer X", name)
	assert.Equal(t, types.SupplierALM, supplier)

	name, _, ok = c.Lookup("alm-01b")
	require.True(t, ok)
	assert.Equal(t, "Beer X", name)
}

func TestConflictsKeepFirstName(t *testing.T) {
	c := New([]Entry{
		{Supplier: types.SupplierCUB, Code: "1001", Name: "VB STUBBY"},
		{Supplier: types.SupplierCUB, Code: "1001/1002", Name: "VB CAN"},
		{Supplier: types.SupplierLION, Code: "01002", Name: "VB CAN"},
	})

	name, _, ok := c.Lookup("1001")
	require.True(t, ok)
	assert.Equal(t, "VB STUBBY", name)

	require.Len(t, c.Conflicts(), 1)
	conflict := c.Conflicts()[0]
	assert.Equal(t, "1001", conflict.Code)
	assert.Equal(t, "VB STUBBY", conflict.KeptName)
	assert.Equal(t, "VB CAN", conflict.DroppedName)
	assert.Contains(t, conflict.String(), "1001")

	assert.Equal(t, 2, c.Len(types.SupplierCUB))
	assert.Contains(t, c.Codes(types.SupplierLION), "1002")
	assert.Equal(t, []types.Supplier{types.SupplierCUB, types.SupplierLION}, c.Suppliers())
}

func saveWorkbook(t *testing.T, sheets map[string][][]interface{}, order []string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad(t *testing.T) {
	path := saveWorkbook(t, map[string][][]interface{}{
		"alm": {
			{"Product Code", "Product Name"},
			{"ALM-001/ALM-01b", "Beer X"},
			{123456, "GREAT NORTHERN"},
		},
		"Coke": {
			{"Product Code", "Product Name"},
			{100200, "COKE 24X375ML"},
		},
		"Notes": {
			{"anything"},
		},
	}, []string{"alm", "Coke", "Notes"})

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []types.Supplier{types.SupplierALM, types.SupplierCOKE}, c.Suppliers())
	assert.Equal(t, 3, c.Len(types.SupplierALM))
	assert.Equal(t, []string{"Notes"}, c.Ignored())

	name, supplier, ok := c.Lookup("100200")
	require.True(t, ok)
	assert.Equal(t, "COKE 24X375ML", name)
	assert.Equal(t, types.SupplierCOKE, supplier)
}

func TestLoadErrors(t *testing.T) {
	t.Run("no supplier sheets", func(t *testing.T) {
		path := saveWorkbook(t, map[string][][]interface{}{
			"Sheet": {{"Product Code"}},
		}, []string{"Sheet"})

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrNoSheets)
	})

	t.Run("missing code column", func(t *testing.T) {
		path := saveWorkbook(t, map[string][][]interface{}{
			"CUB": {{"Code", "Name"}, {"1001", "VB"}},
		}, []string{"CUB"})

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.xlsx"))
		assert.Error(t, err)
	})
}

package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, wb.SaveAs(path))
}

func TestLoader_LoadTable_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "YPPMPL W10-24.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"Material", "Plant", "MRP BACKLOG", "MRP 10.2024"},
		{"M1", "YMO", 100, 250.5},
		{"M2", "YMM", "", 7},
	})

	table, err := NewLoader().LoadTable(path)
	require.NoError(t, err)

	assert.Equal(t, path, table.Name)
	assert.Equal(t, []string{"Material", "Plant", "MRP BACKLOG", "MRP 10.2024"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "M1", table.Rows[0][0])
	assert.Equal(t, "250.5", table.Rows[0][3])
}

func TestLoader_LoadTable_CSVWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consumption.csv")
	content := "\xEF\xBB\xBFMaterial,Plant,Week,Usage\nM1,YMO,10.2024,800\nM2,YMM\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := NewLoader().LoadTable(path)
	require.NoError(t, err)

	assert.Equal(t, "Material", table.Columns[0])
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"M2", "YMM"}, table.Rows[1])
}

func TestLoader_LoadTable_FallsBackToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "YPPMPL W11-24.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("Material,Plant,MRP\nM1,YMO,5\n"), 0o644))

	table, err := NewLoader().LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Material", "Plant", "MRP"}, table.Columns)
}

func TestLoader_LoadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLoader().LoadTable(filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = NewLoader().LoadTable(empty)
	assert.ErrorContains(t, err, "header row")
}

func TestLoader_ListExtracts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b W02-24.xlsx", "a W01-24.csv", "~$b W02-24.xlsx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.xlsx"), 0o755))

	paths, err := NewLoader().ListExtracts(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a W01-24.csv"),
		filepath.Join(dir, "b W02-24.xlsx"),
	}, paths)
}

func TestLoader_Fingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("Material\nM1\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("Material\nM1\n"), 0o644))

	loader := NewLoader()
	fa, err := loader.Fingerprint(a)
	require.NoError(t, err)
	fb, err := loader.Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)

	require.NoError(t, os.WriteFile(b, []byte("Material\nM2\n"), 0o644))
	fb, err = loader.Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)

	_, err = loader.Fingerprint(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

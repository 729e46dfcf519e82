package tabular

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"github.com/vsinha/fcrecon/pkg/domain/repositories"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads forecast, consumption and mapping extracts from spreadsheet
// and CSV files
type Loader struct{}

// NewLoader creates a new extract loader
func NewLoader() *Loader {
	return &Loader{}
}

var _ repositories.ExtractRepository = (*Loader)(nil)

// LoadTable reads a .csv file directly. Anything else is read as a workbook
// first and as CSV if that fails.
func (l *Loader) LoadTable(path string) (*entities.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return l.LoadCSV(path)
	}

	table, xlsxErr := l.LoadXLSX(path)
	if xlsxErr == nil {
		return table, nil
	}
	table, csvErr := l.LoadCSV(path)
	if csvErr != nil {
		return nil, fmt.Errorf("failed to read %s as workbook (%v) or CSV: %w", path, xlsxErr, csvErr)
	}
	return table, nil
}

// LoadXLSX reads the first sheet of a workbook. Numeric cells keep their raw
// value so that week codes like 10.2024 are not reformatted.
func (l *Loader) LoadXLSX(path string) (*entities.Table, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := file.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], path, err)
	}
	return newTable(path, rows)
}

// LoadCSV reads a comma-separated file with a header row. A UTF-8 byte order
// mark is ignored and rows may have any number of fields.
func (l *Loader) LoadCSV(path string) (*entities.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(skipBOM(file))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
	}
	return newTable(path, records)
}

// ListExtracts returns the workbook and CSV files of dir in name order.
// Office lock files ("~$...") are skipped.
func (l *Loader) ListExtracts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list extracts in %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".xlsx", ".xlsm", ".csv":
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}

// Fingerprint returns the SHA-256 of the file content
func (l *Loader) Fingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open extract %s: %w", path, err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to hash extract %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func newTable(name string, records [][]string) (*entities.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("extract %s must have a header row", name)
	}
	return &entities.Table{
		Name:    name,
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

package entities

// Table is a raw extract as read from a spreadsheet or CSV file: one header
// row and string cells. Rows may be shorter than the header.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the first column named exactly name,
// or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether a column named exactly name exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the value at column idx of row, or "" when idx is out of range.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Record maps column names to the cells of row. The first of any duplicate
// column names wins.
func (t *Table) Record(row []string) map[string]string {
	record := make(map[string]string, len(t.Columns))
	for i, col := range t.Columns {
		if _, seen := record[col]; seen {
			continue
		}
		record[col] = Cell(row, i)
	}
	return record
}

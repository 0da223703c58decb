package models

// Table is a flat, string-celled table as written to CSV and mirrored to JSON.
// An empty cell is a missing value. Index is nil for tables without a named
// index column.
type Table struct {
	IndexName string
	Index     []string
	Columns   []string
	Rows      [][]string
}

// NewTable creates a table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row. Rows shorter than the column count are padded.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Get returns the cell of row i in the named column, "" when absent.
func (t *Table) Get(i int, column string) string {
	c := t.ColumnIndex(column)
	if c < 0 || i < 0 || i >= len(t.Rows) || c >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][c]
}

// HasIndex reports whether the table carries a named index column.
func (t *Table) HasIndex() bool {
	return t.Index != nil
}

// Package table provides the minimal column-addressed tabular model the
// samplesheet core consumes and produces. Sources are delimited text; the
// column-name flexibility of kit tables stays with the caller.
package table

import "fmt"

// Table holds a header and string cells addressed by column name.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty table with the given header.
func New(columns []string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{columns: append([]string(nil), columns...), index: idx}
}

// Columns returns the header in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds a data row. The row must match the header width.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("table: row has %d cells, header has %d", len(row), len(t.columns))
	}
	t.rows = append(t.rows, append([]string(nil), row...))
	return nil
}

// Cell returns the value at (row, column). Unknown columns yield "".
func (t *Table) Cell(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return ""
	}
	return t.rows[row][i]
}

// Row returns a copy of the row's cells keyed by column name.
func (t *Table) Row(row int) map[string]string {
	out := make(map[string]string, len(t.columns))
	for i, c := range t.columns {
		out[c] = t.rows[row][i]
	}
	return out
}

// Package tabular loads uploaded CSV and Excel files into raw tables.
// A Table carries no semantic typing: column meaning is decided later by
// schema detection, and cell coercion happens during validation.
package tabular

import (
	"strings"
)

// Table is an uploaded file in row-major form. Rows are padded so every
// row has exactly len(Columns) cells.
type Table struct {
	Source  string     `json:"source"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RowCount returns the number of data rows (header excluded).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1. The
// comparison trims whitespace but is otherwise exact; alias resolution
// is the schema detector's job.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if strings.TrimSpace(col) == strings.TrimSpace(name) {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col), or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Column returns all values of the column at index col.
func (t *Table) Column(col int) []string {
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Cell(i, col)
	}
	return out
}

// normalizeRows pads or truncates every row to the header width and
// drops rows that are entirely empty.
func normalizeRows(columns []string, rows [][]string) [][]string {
	width := len(columns)
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		hasData := false
		padded := make([]string, width)
		for i := 0; i < width; i++ {
			if i < len(row) {
				padded[i] = strings.TrimSpace(row[i])
			}
			if padded[i] != "" {
				hasData = true
			}
		}
		if hasData {
			out = append(out, padded)
		}
	}
	return out
}

package connector

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrUnsupportedFormat is returned for data files the loader cannot read
var ErrUnsupportedFormat = errors.New("unsupported data file format")

// ErrEmptySource is returned when a source has no header row
var ErrEmptySource = errors.New("data source has no header row")

// Table is an in-memory tabular dataset with string cells.
// Missing cells are represented by empty strings.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Column returns all values of the column at index i
func (t *Table) Column(i int) []string {
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			values[r] = row[i]
		}
	}
	return values
}

// newTable builds a table from a header row and data rows, padding short rows
func newTable(name string, headers []string, rows [][]string) *Table {
	width := len(headers)
	normalized := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else if len(row) > width {
			row = row[:width]
		}
		normalized = append(normalized, row)
	}
	return &Table{Name: name, Headers: headers, Rows: normalized}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// CleanColumnName makes a header safe for use as a Tableau field name:
// spaces become underscores, other punctuation is dropped, and names must not
// start with a digit.
func CleanColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")

	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if cleaned != "" && unicode.IsDigit([]rune(cleaned)[0]) {
		cleaned = "col_" + cleaned
	}
	if cleaned == "" {
		cleaned = "unnamed_column"
	}
	return cleaned
}

// CleanHeaders cleans every header and de-duplicates collisions with a numeric suffix.
// Generated names are reserved too, so no two headers end up equal.
func CleanHeaders(headers []string) []string {
	seen := make(map[string]bool)
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		base := CleanColumnName(h)
		name := base
		for n := 2; seen[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		cleaned[i] = name
	}
	return cleaned
}

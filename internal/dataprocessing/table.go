package dataprocessing

import (
	"strconv"
	"time"
)

// TimeColumn is the canonical timestamp column name required by the analysis
// engine in every time-indexed category.
const TimeColumn = "time"

// AssetIDColumn is the canonical turbine identifier column name.
const AssetIDColumn = "asset_id"

// timeLayout is how normalized timestamps are stored in table cells.
// Normalization parses whatever the source supplied and rewrites it as UTC.
const timeLayout = time.RFC3339

// Table is a rectangular, string-celled dataset with an ordered column list.
// It is the in-memory representation of one uploaded CSV or XLSX sheet after
// parsing and, once normalized, uses the engine's canonical column names.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given column order.
func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the value at (row, column name), or "" when either is missing.
func (t *Table) Cell(row int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// Floats parses the named column as float64 values. Cells that do not parse
// come back as NaN-free zeros would hide gaps, so unparsable cells are
// skipped entirely and ok reports whether the column exists at all.
func (t *Table) Floats(column string) (values []float64, ok bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, false
	}
	values = make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values, true
}

// Times parses the canonical time column. Unparsable cells are skipped.
func (t *Table) Times() []time.Time {
	idx := t.ColumnIndex(TimeColumn)
	if idx < 0 {
		return nil
	}
	out := make([]time.Time, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		ts, err := parseTimestamp(row[idx])
		if err != nil {
			continue
		}
		out = append(out, ts)
	}
	return out
}

// Select returns a new table restricted to the named columns, keeping the
// given order. Columns that do not exist are skipped.
func (t *Table) Select(columns ...string) *Table {
	indices := make([]int, 0, len(columns))
	kept := make([]string, 0, len(columns))
	for _, c := range columns {
		if idx := t.ColumnIndex(c); idx >= 0 {
			indices = append(indices, idx)
			kept = append(kept, c)
		}
	}

	out := NewTable(kept)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		selected := make([]string, len(indices))
		for j, idx := range indices {
			if idx < len(row) {
				selected[j] = row[idx]
			}
		}
		out.Rows[i] = selected
	}
	return out
}

// UniqueStrings returns the distinct values of the named column in first-seen
// order. Used to derive the turbine identifier list from SCADA or asset data.
func (t *Table) UniqueStrings(column string) []string {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(t.Rows))
	var out []string
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		v := row[idx]
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// timestampLayouts are the accepted source formats, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses a source timestamp and converts it to UTC.
// Layouts without an explicit offset are interpreted as UTC.
func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

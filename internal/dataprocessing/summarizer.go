package dataprocessing

import "time"

// TableSummary is a derived, read-only view of a normalized table. DateRange
// is present only when a canonical time column exists and at least one cell
// parses; it holds the [min, max] timestamps as RFC 3339 strings.
type TableSummary struct {
	Rows      int      `json:"rows"`
	Columns   []string `json:"columns"`
	DateRange []string `json:"date_range,omitempty"`
}

// Summarize computes a fresh summary of a table. Nil or empty tables yield
// nil — absence, not an error — so callers can skip missing categories.
func Summarize(table *Table) *TableSummary {
	if table == nil || table.NumRows() == 0 {
		return nil
	}

	summary := &TableSummary{
		Rows:    table.NumRows(),
		Columns: append([]string(nil), table.Columns...),
	}

	times := table.Times()
	if len(times) > 0 {
		min, max := times[0], times[0]
		for _, ts := range times[1:] {
			if ts.Before(min) {
				min = ts
			}
			if ts.After(max) {
				max = ts
			}
		}
		summary.DateRange = []string{
			min.Format(time.RFC3339),
			max.Format(time.RFC3339),
		}
	}

	return summary
}

package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseCSV reads an entire CSV stream into a Table. The first record is the
// header. Ragged rows are tolerated (encoding/csv field-count checking is
// disabled) because several SCADA exports pad or truncate trailing columns;
// anything worse than that fails the parse.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV contains no header row")
	}

	header := make([]string, len(records[0]))
	for i, c := range records[0] {
		header[i] = strings.TrimSpace(c)
	}

	table := NewTable(header)
	table.Rows = records[1:]
	return table, nil
}

// ParseWorkbook reads the first sheet of an XLSX workbook into a Table,
// using the same header-first convention as ParseCSV.
func ParseWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q contains no header row", sheets[0])
	}

	header := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = strings.TrimSpace(c)
	}

	table := NewTable(header)
	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseUpload parses an uploaded file by extension: .xlsx goes through
// excelize, everything else is treated as CSV.
func ParseUpload(filename string, content []byte) (*Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ParseWorkbook(bytes.NewReader(content))
	}
	return ParseCSV(bytes.NewReader(content))
}

package model

import (
	"path/filepath"
	"strings"
)

// Table is a loaded geographic point table: an ordered schema and ordered rows.
// A Table is built once by a loader and is not modified afterwards.
type Table struct {
	// name is derived from the source file path.
	name string
	// header holds field names in source order.
	header Header
	// records holds rows in source order.
	records []Record
	// columnInfo contains inferred type information for each column
	columnInfo []ColumnInfo
}

// NewTable create new Table. Column types are inferred from the records.
func NewTable(
	name string,
	header Header,
	records []Record,
) *Table {
	return &Table{
		name:       name,
		header:     header,
		records:    records,
		columnInfo: InferColumnsInfo(header, records),
	}
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Header return table header.
func (t *Table) Header() Header {
	return t.header
}

// Records return table records.
func (t *Table) Records() []Record {
	return t.records
}

// ColumnInfo returns column information with inferred types
func (t *Table) ColumnInfo() []ColumnInfo {
	return t.columnInfo
}

// FieldCount returns the number of fields in the schema.
func (t *Table) FieldCount() int {
	return len(t.header)
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.records)
}

// Value returns the value at (row, col). Out-of-range coordinates yield "".
func (t *Table) Value(row, col int) string {
	if row < 0 || row >= len(t.records) {
		return ""
	}
	return t.records[row].At(col)
}

// Equal compare Table.
func (t *Table) Equal(t2 *Table) bool {
	if t.Name() != t2.Name() {
		return false
	}
	if !t.header.Equal(t2.header) {
		return false
	}
	if len(t.Records()) != len(t2.Records()) {
		return false
	}
	for i, record := range t.Records() {
		if !record.Equal(t2.Records()[i]) {
			return false
		}
	}
	return true
}

// TableFromFilePath creates table name from file path
func TableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(strings.ToLower(fileName), ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datetimePatterns lists the date and time shapes recognized during inference.
// Each pattern is confirmed with time.Parse before a value counts as a datetime.
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string
}{
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
	// dd/mm/yyyy, common in Brazilian sources
	{
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
		[]string{"02/01/2006"},
	},
}

func isDatetime(value string) bool {
	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if _, err := time.Parse(format, value); err == nil {
				return true
			}
		}
	}
	return false
}

// InferColumnType infers the SQL column type from a slice of string values.
// Empty values are ignored. Numeric checks run before datetime checks, so
// digit-only values such as IBGE geocodes stay INTEGER.
func InferColumnType(values []string) ColumnType {
	hasDatetime := false
	hasReal := false
	hasInteger := false

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			hasInteger = true
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			hasReal = true
			continue
		}
		if isDatetime(value) {
			hasDatetime = true
			continue
		}
		// any text value makes the whole column TEXT
		return ColumnTypeText
	}

	switch {
	case hasDatetime && (hasReal || hasInteger):
		return ColumnTypeText
	case hasDatetime:
		return ColumnTypeDatetime
	case hasReal:
		return ColumnTypeReal
	case hasInteger:
		return ColumnTypeInteger
	default:
		return ColumnTypeText
	}
}

// InferColumnsInfo infers column information from header and data records
func InferColumnsInfo(header Header, records []Record) []ColumnInfo {
	if len(header) == 0 {
		return nil
	}

	columns := make([]ColumnInfo, len(header))
	values := make([]string, 0, len(records))
	for i, name := range header {
		values = values[:0]
		for _, record := range records {
			if i < len(record) {
				values = append(values, record[i])
			}
		}
		columns[i] = ColumnInfo{Name: name, Type: InferColumnType(values)}
	}
	return columns
}

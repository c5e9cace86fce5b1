package model

import "strings"

// OutputFormat represents the output file format
type OutputFormat int

const (
	// OutputFormatCSV represents CSV output format
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV represents TSV output format
	OutputFormatTSV
	// OutputFormatLTSV represents LTSV output format
	OutputFormatLTSV
	// OutputFormatParquet represents Parquet output format
	OutputFormatParquet
	// OutputFormatXLSX represents Excel XLSX output format
	OutputFormatXLSX
)

// String returns the string representation of OutputFormat
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatTSV:
		return "tsv"
	case OutputFormatLTSV:
		return "ltsv"
	case OutputFormatParquet:
		return "parquet"
	case OutputFormatXLSX:
		return "xlsx"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format
func (f OutputFormat) Extension() string {
	return "." + f.String()
}

// ParseOutputFormat converts a name such as "tsv" or ".xlsx" to an OutputFormat.
func ParseOutputFormat(name string) (OutputFormat, bool) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "", "csv":
		return OutputFormatCSV, true
	case "tsv":
		return OutputFormatTSV, true
	case "ltsv":
		return OutputFormatLTSV, true
	case "parquet":
		return OutputFormatParquet, true
	case "xlsx":
		return OutputFormatXLSX, true
	default:
		return OutputFormatCSV, false
	}
}

// OutputFormatOf returns the output format that writes files of type ft.
// DBF and unsupported types have none.
func OutputFormatOf(ft FileType) (OutputFormat, bool) {
	switch ft {
	case FileTypeCSV:
		return OutputFormatCSV, true
	case FileTypeTSV:
		return OutputFormatTSV, true
	case FileTypeLTSV:
		return OutputFormatLTSV, true
	case FileTypeParquet:
		return OutputFormatParquet, true
	case FileTypeXLSX:
		return OutputFormatXLSX, true
	default:
		return OutputFormatCSV, false
	}
}

// ExportOptions represents options for exporting a table or projection
type ExportOptions struct {
	// Format specifies the output file format
	Format OutputFormat
	// Compression specifies the compression type
	Compression CompressionType
}

// NewExportOptions creates new ExportOptions with default values (CSV format, no compression)
func NewExportOptions() ExportOptions {
	return ExportOptions{
		Format:      OutputFormatCSV,
		Compression: CompressionNone,
	}
}

// WithFormat sets the output format
func (o ExportOptions) WithFormat(format OutputFormat) ExportOptions {
	o.Format = format
	return o
}

// WithCompression sets the compression type
func (o ExportOptions) WithCompression(compression CompressionType) ExportOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o ExportOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}

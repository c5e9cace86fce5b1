package geocolumn

import "github.com/nao1215/geocolumn/domain/model"

// Type aliases for the domain model so callers only need to import geocolumn.
type (
	// Table is a loaded tabular source.
	Table = model.Table
	// Header is the ordered list of field names of a table.
	Header = model.Header
	// Record is one row of a table.
	Record = model.Record
	// Projection is the four-column view produced by the resolver.
	Projection = model.Projection
	// ProjectionRow is one row of a Projection.
	ProjectionRow = model.ProjectionRow
	// Resolution is the result of Resolve.
	Resolution = model.Resolution
	// FieldSample describes one field in a manual listing.
	FieldSample = model.FieldSample
	// Role names one of the four projection columns.
	Role = model.Role
	// Strategy tags the resolver tier that produced a result.
	Strategy = model.Strategy
	// FileType represents a supported input format.
	FileType = model.FileType
	// ExportOptions represents options for exporting tables and projections.
	ExportOptions = model.ExportOptions
	// OutputFormat represents the output file format.
	OutputFormat = model.OutputFormat
	// CompressionType represents the compression type.
	CompressionType = model.CompressionType
)

// Re-export constants for easier use
const (
	// StrategyByPosition is the tag of the positional tier.
	StrategyByPosition = model.StrategyByPosition
	// StrategyByNamePattern is the tag of the name-pattern tier.
	StrategyByNamePattern = model.StrategyByNamePattern
	// StrategyManualRequired is the tag of the manual tier.
	StrategyManualRequired = model.StrategyManualRequired

	// FileTypeCSV represents CSV input
	FileTypeCSV = model.FileTypeCSV
	// FileTypeTSV represents TSV input
	FileTypeTSV = model.FileTypeTSV
	// FileTypeLTSV represents LTSV input
	FileTypeLTSV = model.FileTypeLTSV
	// FileTypeParquet represents Parquet input
	FileTypeParquet = model.FileTypeParquet
	// FileTypeXLSX represents Excel XLSX input
	FileTypeXLSX = model.FileTypeXLSX
	// FileTypeDBF represents dBase input
	FileTypeDBF = model.FileTypeDBF

	// OutputFormatCSV represents CSV output format
	OutputFormatCSV = model.OutputFormatCSV
	// OutputFormatTSV represents TSV output format
	OutputFormatTSV = model.OutputFormatTSV
	// OutputFormatLTSV represents LTSV output format
	OutputFormatLTSV = model.OutputFormatLTSV
	// OutputFormatParquet represents Parquet output format
	OutputFormatParquet = model.OutputFormatParquet
	// OutputFormatXLSX represents Excel XLSX output format
	OutputFormatXLSX = model.OutputFormatXLSX

	// CompressionNone represents no compression
	CompressionNone = model.CompressionNone
	// CompressionGZ represents gzip compression
	CompressionGZ = model.CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2 = model.CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ = model.CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD = model.CompressionZSTD
)

// NewExportOptions creates new ExportOptions with default values (CSV format, no compression)
var NewExportOptions = model.NewExportOptions

// NewTable creates a table from a header and records.
var NewTable = model.NewTable

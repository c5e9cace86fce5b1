package model

import (
	"path/filepath"
	"strings"
)

// FileType represents a supported tabular source format, without compression.
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeLTSV represents LTSV file type
	FileTypeLTSV
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeDBF represents dBase (shapefile attribute table) file type
	FileTypeDBF
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtLTSV is the LTSV file extension
	ExtLTSV = ".ltsv"
	// ExtParquet is the Parquet file extension
	ExtParquet = ".parquet"
	// ExtXLSX is the Excel XLSX file extension
	ExtXLSX = ".xlsx"
	// ExtDBF is the dBase file extension
	ExtDBF = ".dbf"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

var compressionExtensions = []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD}

// String returns the lower-case format name.
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeLTSV:
		return "ltsv"
	case FileTypeParquet:
		return "parquet"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeDBF:
		return "dbf"
	default:
		return "unsupported"
	}
}

// Extension returns the file extension for the FileType
func (ft FileType) Extension() string {
	switch ft {
	case FileTypeCSV:
		return ExtCSV
	case FileTypeTSV:
		return ExtTSV
	case FileTypeLTSV:
		return ExtLTSV
	case FileTypeParquet:
		return ExtParquet
	case FileTypeXLSX:
		return ExtXLSX
	case FileTypeDBF:
		return ExtDBF
	default:
		return ""
	}
}

// CompressionType represents the compression type
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// String returns the string representation of CompressionType
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionBZ2:
		return "bz2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return ExtGZ
	case CompressionBZ2:
		return ExtBZ2
	case CompressionXZ:
		return ExtXZ
	case CompressionZSTD:
		return ExtZSTD
	default:
		return ""
	}
}

// DetectFileType detects the base format and the compression of path from its extensions.
// Extension matching is case-insensitive, so "BR_Localidades_2010.DBF" is a DBF file.
func DetectFileType(path string) (FileType, CompressionType) {
	lower := strings.ToLower(path)
	compression := CompressionNone
	for _, c := range []CompressionType{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD} {
		if strings.HasSuffix(lower, c.Extension()) {
			compression = c
			lower = strings.TrimSuffix(lower, c.Extension())
			break
		}
	}

	switch filepath.Ext(lower) {
	case ExtCSV:
		return FileTypeCSV, compression
	case ExtTSV:
		return FileTypeTSV, compression
	case ExtLTSV:
		return FileTypeLTSV, compression
	case ExtParquet:
		return FileTypeParquet, compression
	case ExtXLSX:
		return FileTypeXLSX, compression
	case ExtDBF:
		return FileTypeDBF, compression
	default:
		return FileTypeUnsupported, compression
	}
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(fileName string) bool {
	ft, _ := DetectFileType(fileName)
	return ft != FileTypeUnsupported
}

// ParseFileType converts a format name such as "csv" or ".xlsx" to a FileType.
func ParseFileType(name string) FileType {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	for _, ft := range []FileType{FileTypeCSV, FileTypeTSV, FileTypeLTSV, FileTypeParquet, FileTypeXLSX, FileTypeDBF} {
		if ft.String() == name {
			return ft
		}
	}
	return FileTypeUnsupported
}

// ParseCompressionType converts a name such as "gz", "zstd" or ".zst" to a CompressionType.
// Unknown names map to CompressionNone and ok=false.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "", "none":
		return CompressionNone, true
	case "gz", "gzip":
		return CompressionGZ, true
	case "bz2", "bzip2":
		return CompressionBZ2, true
	case "xz":
		return CompressionXZ, true
	case "zst", "zstd":
		return CompressionZSTD, true
	default:
		return CompressionNone, false
	}
}

package geocolumn

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"

	"github.com/nao1215/geocolumn/domain/model"
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// Loader reads tabular files into tables. The table is read fully into memory.
//
// Supported file formats:
//   - dBase files (.dbf), the attribute table of a shapefile
//   - CSV files (.csv)
//   - TSV files (.tsv)
//   - LTSV files (.ltsv)
//   - Parquet files (.parquet)
//   - Excel files (.xlsx), first sheet only
//   - Compressed versions of above (.gz, .bz2, .xz, .zst)
type Loader struct {
	// encoding decodes DBF character fields; nil means auto-detect
	encoding encoding.Encoding
	logger   *slog.Logger
}

// NewLoader creates a loader that auto-detects DBF code pages.
func NewLoader() *Loader {
	return &Loader{logger: slog.Default()}
}

// WithEncoding forces the code page used to decode DBF character fields.
// Without it the code page comes from a .cpg sidecar file, then from the DBF
// language driver byte, then defaults to Windows-1252.
//
// Returns the loader for method chaining.
func (l *Loader) WithEncoding(enc encoding.Encoding) *Loader {
	l.encoding = enc
	return l
}

// WithLogger sets the logger.
//
// Returns the loader for method chaining.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Load reads the file at path with the default loader.
func Load(ctx context.Context, path string) (*model.Table, error) {
	return NewLoader().Load(ctx, path)
}

// Load reads the file at path. The format and compression are detected from the
// extension and the table is named after the file without its extensions.
func (l *Loader) Load(ctx context.Context, path string) (*model.Table, error) {
	fileType, compression := model.DetectFileType(path)
	if fileType == model.FileTypeUnsupported {
		return nil, NewErrorContext("load", path).Error(ErrUnsupportedFormat)
	}

	reader, cleanup, err := openDecompressed(path, compression)
	if err != nil {
		return nil, NewErrorContext("load", path).Error(err)
	}
	defer func() {
		_ = cleanup() // Ignore close error on a read-only file
	}()

	enc := l.encoding
	if enc == nil && fileType == model.FileTypeDBF {
		enc = sidecarEncoding(path)
	}

	table, err := l.parse(ctx, reader, fileType, model.TableFromFilePath(path), enc)
	if err != nil {
		return nil, NewErrorContext("load", path).Error(err)
	}

	l.logger.Debug("table loaded", "path", path, "format", fileType, "compression", compression,
		"fields", table.FieldCount(), "rows", table.RowCount())
	return table, nil
}

// LoadReader reads a table of the given format from reader, decompressing it first.
func (l *Loader) LoadReader(ctx context.Context, reader io.Reader, fileType FileType, compression CompressionType, tableName string) (*model.Table, error) {
	if reader == nil {
		return nil, errors.New("reader cannot be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("table name must be specified for reader input")
	}
	if fileType == model.FileTypeUnsupported {
		return nil, NewErrorContext("load", "").WithTable(tableName).Error(ErrUnsupportedFormat)
	}

	decompressed, cleanup, err := NewCompressionHandler(compression).CreateReader(reader)
	if err != nil {
		return nil, NewErrorContext("load", "").WithTable(tableName).Error(err)
	}
	defer func() {
		_ = cleanup()
	}()

	table, err := l.parse(ctx, decompressed, fileType, tableName, l.encoding)
	if err != nil {
		return nil, NewErrorContext("load", "").WithTable(tableName).Error(err)
	}
	return table, nil
}

func (l *Loader) parse(ctx context.Context, reader io.Reader, fileType FileType, tableName string, enc encoding.Encoding) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch fileType {
	case model.FileTypeCSV:
		return parseDelimited(reader, csvDelimiter, tableName)
	case model.FileTypeTSV:
		return parseDelimited(reader, tsvDelimiter, tableName)
	case model.FileTypeLTSV:
		return parseLTSV(reader, tableName)
	case model.FileTypeXLSX:
		return parseXLSX(reader, tableName)
	case model.FileTypeParquet:
		return parseParquet(ctx, reader, tableName)
	case model.FileTypeDBF:
		return parseDBF(ctx, reader, tableName, enc)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// parseDelimited parses CSV or TSV data. The first row is the header.
func parseDelimited(reader io.Reader, delimiter rune, tableName string) (*model.Table, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	if delimiter == tsvDelimiter {
		csvReader.LazyQuotes = true
	}

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyData
	}

	header := model.NewHeader(rows[0])
	if err := model.ValidateColumnNames(header); err != nil {
		return nil, err
	}

	return model.NewTable(tableName, header, padRecords(rows[1:], len(header))), nil
}

// parseLTSV parses LTSV data. The header is the union of labels in first-seen order.
func parseLTSV(reader io.Reader, tableName string) (*model.Table, error) {
	var header model.Header
	index := make(map[string]int)
	var rows []map[string]string

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		row := make(map[string]string)
		for _, pair := range strings.Split(line, "\t") {
			key, value, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			if _, seen := index[key]; !seen {
				index[key] = len(header)
				header = append(header, key)
			}
			row[key] = strings.TrimSpace(value)
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyData
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		record := make(model.Record, len(header))
		for key, value := range row {
			record[index[key]] = value
		}
		records = append(records, record)
	}
	return model.NewTable(tableName, header, records), nil
}

// parseXLSX parses the first sheet of an Excel workbook. The first row is the header.
func parseXLSX(reader io.Reader, tableName string) (*model.Table, error) {
	workbook, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	defer func() {
		_ = workbook.Close() // Ignore close error
	}()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets found", ErrEmptyData)
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", ErrEmptyData, sheets[0])
	}

	header := model.NewHeader(rows[0])
	if err := model.ValidateColumnNames(header); err != nil {
		return nil, err
	}
	return model.NewTable(tableName, header, padRecords(rows[1:], len(header))), nil
}

// padRecords converts rows to records of exactly width values, padding short rows
// with "" and dropping cells beyond the header.
func padRecords(rows [][]string, width int) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		record := make(model.Record, width)
		copy(record, row)
		records = append(records, record)
	}
	return records
}

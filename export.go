package geocolumn

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/geocolumn/domain/model"
)

// maxSheetNameLength is the longest sheet name Excel accepts.
const maxSheetNameLength = 31

// Export writes a projection to path. The header is always
// admin_code, category, longitude, latitude.
//
// Without options the format and compression follow the extensions of path,
// falling back to CSV. With options, the extensions of path are replaced by the
// ones the options imply, or appended when path has none.
//
// Example usage:
//
//	res := geocolumn.Resolve(table)
//	if res.Projection != nil {
//		opts := geocolumn.NewExportOptions().
//			WithFormat(geocolumn.OutputFormatParquet).
//			WithCompression(geocolumn.CompressionZSTD)
//		written, err := geocolumn.Export(ctx, res.Projection, "./out/localidades", opts)
//	}
func Export(ctx context.Context, projection *model.Projection, path string, opts ...ExportOptions) (string, error) {
	if projection == nil {
		return "", NewErrorContext("export", path).Error(ErrNilProjection)
	}
	return ExportTable(ctx, projection.ToTable(), path, opts...)
}

// ExportTable writes any table to path using the given options and returns the
// path that was written.
func ExportTable(ctx context.Context, table *model.Table, path string, opts ...ExportOptions) (string, error) {
	options := ExportOptionsFor(path)
	if len(opts) > 0 {
		options = opts[0]
	}
	path = outputPath(path, options)
	errCtx := NewErrorContext("export", path).WithTable(table.Name())

	if err := ctx.Err(); err != nil {
		return "", errCtx.Error(err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", errCtx.Error(err)
		}
	}

	writer, cleanup, err := createCompressed(path, options.Compression)
	if err != nil {
		return "", errCtx.Error(err)
	}

	if err := writeTable(writer, table, options.Format); err != nil {
		_ = cleanup()
		return "", errCtx.Error(err)
	}
	if err := cleanup(); err != nil {
		return "", errCtx.Error(err)
	}
	return path, nil
}

// ExportOptionsFor returns the export options implied by the extensions of path.
// Paths without a writable extension get CSV.
func ExportOptionsFor(path string) ExportOptions {
	fileType, compression := model.DetectFileType(path)
	options := model.NewExportOptions().WithCompression(compression)
	if format, ok := model.OutputFormatOf(fileType); ok {
		options = options.WithFormat(format)
	}
	return options
}

// outputPath makes the extensions of path match options: a missing extension is
// appended and a conflicting one is replaced.
func outputPath(path string, options ExportOptions) string {
	want := options.FileExtension()
	fileType, compression := model.DetectFileType(path)
	if fileType == model.FileTypeUnsupported {
		return path + want
	}

	current := fileType.Extension() + compression.Extension()
	stem, suffix := path[:len(path)-len(current)], path[len(path)-len(current):]
	if strings.EqualFold(suffix, want) {
		return path
	}
	return stem + want
}

// writeTable writes table to w in format.
func writeTable(w io.Writer, table *model.Table, format OutputFormat) error {
	switch format {
	case model.OutputFormatCSV:
		return writeDelimited(w, table, csvDelimiter)
	case model.OutputFormatTSV:
		return writeDelimited(w, table, tsvDelimiter)
	case model.OutputFormatLTSV:
		return writeLTSV(w, table)
	case model.OutputFormatParquet:
		return writeParquet(w, table)
	case model.OutputFormatXLSX:
		return writeXLSX(w, table)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

func writeDelimited(w io.Writer, table *model.Table, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	if err := csvWriter.Write(table.Header()); err != nil {
		return err
	}
	for _, record := range table.Records() {
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ltsvEscaper keeps label values on one line and field separators intact.
var ltsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func writeLTSV(w io.Writer, table *model.Table) error {
	header := table.Header()
	var line strings.Builder
	for _, record := range table.Records() {
		line.Reset()
		for i, name := range header {
			if i > 0 {
				line.WriteByte('\t')
			}
			line.WriteString(name)
			line.WriteByte(':')
			line.WriteString(ltsvEscaper.Replace(record.At(i)))
		}
		line.WriteByte('\n')
		if _, err := io.WriteString(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeXLSX(w io.Writer, table *model.Table) error {
	workbook := excelize.NewFile()
	defer func() {
		_ = workbook.Close()
	}()

	sheet := sheetName(table.Name())
	if err := workbook.SetSheetName(workbook.GetSheetName(0), sheet); err != nil {
		return err
	}

	stream, err := workbook.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	writeRow := func(rowNumber int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNumber)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		return stream.SetRow(cell, row)
	}

	if err := writeRow(1, table.Header()); err != nil {
		return err
	}
	for i, record := range table.Records() {
		if err := writeRow(i+2, record); err != nil {
			return err
		}
	}
	if err := stream.Flush(); err != nil {
		return err
	}
	return workbook.Write(w)
}

// sheetName turns a table name into a valid Excel sheet name.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if name == "" {
		return "Sheet1"
	}
	if runes := []rune(name); len(runes) > maxSheetNameLength {
		name = string(runes[:maxSheetNameLength])
	}
	return name
}

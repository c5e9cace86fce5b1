package geocolumn

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Valentin-Kaiser/go-dbase/dbase"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/nao1215/geocolumn/domain/model"
)

// dBase III/IV layout constants
const (
	dbfFileHeaderSize   = 32
	dbfFieldDescSize    = 32
	dbfHeaderTerminator = 0x0D
	dbfLanguageDriverAt = 29
	// dbfCancelCheckEvery is how many records are read between context checks
	dbfCancelCheckEvery = 1024
)

// dbfHeader is the part of a DBF header checked before the table is opened.
type dbfHeader struct {
	recordCount    uint32
	headerLength   uint16
	recordLength   uint16
	languageDriver byte
	fieldNames     []string
}

// languageDrivers maps the DBF language driver id to a code page.
var languageDrivers = map[byte]encoding.Encoding{
	0x01: charmap.CodePage437,
	0x02: charmap.CodePage850,
	0x03: charmap.Windows1252,
	0x57: charmap.Windows1252,
	0x64: charmap.CodePage852,
	0x65: charmap.CodePage866,
	0x66: charmap.CodePage865,
	0xC8: charmap.Windows1250,
	0xC9: charmap.Windows1251,
	0xCA: charmap.Windows1254,
	0xCB: charmap.Windows1253,
}

// defaultDBFEncoding is used when neither the caller, a .cpg sidecar nor the
// language driver byte names a code page.
var defaultDBFEncoding encoding.Encoding = charmap.Windows1252

// LookupEncoding returns the text encoding registered under an IANA name such as
// "ISO-8859-1", "windows-1252" or "UTF-8".
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	return enc, nil
}

// sidecarEncoding reads the shapefile .cpg file next to a .dbf path, if any.
func sidecarEncoding(dbfPath string) encoding.Encoding {
	base := dbfPath
	for _, ext := range []string{model.ExtGZ, model.ExtBZ2, model.ExtXZ, model.ExtZSTD} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	base = base[:len(base)-len(model.ExtDBF)]

	for _, ext := range []string{".cpg", ".CPG"} {
		data, err := os.ReadFile(base + ext) //nolint:gosec // sidecar of a user-provided path
		if err != nil {
			continue
		}
		if enc, err := LookupEncoding(string(data)); err == nil {
			return enc
		}
	}
	return nil
}

// readDBFHeader reads the file header and the field names.
func readDBFHeader(r io.Reader) (*dbfHeader, error) {
	fixed := make([]byte, dbfFileHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyData
		}
		return nil, fmt.Errorf("%w: short dbf header: %w", ErrInvalidData, err)
	}

	h := &dbfHeader{
		recordCount:    binary.LittleEndian.Uint32(fixed[4:8]),
		headerLength:   binary.LittleEndian.Uint16(fixed[8:10]),
		recordLength:   binary.LittleEndian.Uint16(fixed[10:12]),
		languageDriver: fixed[dbfLanguageDriverAt],
	}
	if int(h.headerLength) < dbfFileHeaderSize+1 || h.recordLength == 0 {
		return nil, fmt.Errorf("%w: header length %d, record length %d", ErrInvalidData, h.headerLength, h.recordLength)
	}

	rest := make([]byte, int(h.headerLength)-dbfFileHeaderSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("%w: short dbf field descriptors: %w", ErrInvalidData, err)
	}

	width := 1 // deletion flag
	for offset := 0; offset+dbfFieldDescSize <= len(rest) && rest[offset] != dbfHeaderTerminator; offset += dbfFieldDescSize {
		desc := rest[offset : offset+dbfFieldDescSize]
		name := desc[:11]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		length := int(desc[16])
		if desc[11] == 'C' {
			// character fields store the high length byte in the decimals slot
			length += int(desc[17]) << 8
		}
		width += length
		h.fieldNames = append(h.fieldNames, strings.TrimSpace(string(name)))
	}

	if len(h.fieldNames) == 0 {
		return nil, fmt.Errorf("%w: dbf has no fields", ErrInvalidData)
	}
	if width > int(h.recordLength) {
		return nil, fmt.Errorf("%w: fields need %d bytes, record length is %d", ErrInvalidData, width, h.recordLength)
	}
	return h, nil
}

// parseDBF reads a dBase table. Deleted records are skipped and character data is
// decoded with enc, or the code page named by the header when enc is nil.
//
// go-dbase works on files, so the stream is spooled to a temporary file first.
// The header is checked against the file size before any record is read.
func parseDBF(ctx context.Context, r io.Reader, tableName string, enc encoding.Encoding) (*model.Table, error) {
	path, size, err := spoolDBF(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.Remove(path) // Ignore removal error for a temporary file
	}()

	h, err := checkDBF(path, size)
	if err != nil {
		return nil, err
	}

	if enc == nil {
		enc = languageDrivers[h.languageDriver]
	}
	if enc == nil {
		enc = defaultDBFEncoding
	}

	table, err := dbase.OpenTable(&dbase.Config{
		Filename:  path,
		Converter: dbase.NewDefaultConverter(enc),
		// shapefile attribute tables are dBase III, which go-dbase marks untested
		Untested: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	defer func() {
		_ = table.Close() // Ignore close error on a read-only table
	}()

	columns := table.Columns()
	names := make([]string, len(columns))
	for i, column := range columns {
		names[i] = column.Name()
	}

	records := make([]model.Record, 0, h.recordCount)
	for n := uint32(0); n < h.recordCount && !table.EOF(); n++ {
		if n%dbfCancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := table.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrInvalidData, n, err)
		}
		if row.Deleted {
			continue
		}

		values := row.Values()
		record := make(model.Record, len(names))
		for i := range record {
			if i < len(values) {
				record[i] = dbfText(values[i])
			}
		}
		records = append(records, record)
	}

	return model.NewTable(tableName, model.NewHeader(names), records), nil
}

// spoolDBF copies r to a temporary .dbf file and returns its path and size.
func spoolDBF(r io.Reader) (string, int64, error) {
	file, err := os.CreateTemp("", "geocolumn-*.dbf")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	size, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(file.Name())
		return "", 0, fmt.Errorf("failed to spool dbf data: %w", err)
	}
	return file.Name(), size, nil
}

// checkDBF validates the header of the file at path. The record count must fit
// in the file, so a lying header fails here instead of at allocation time.
func checkDBF(path string, size int64) (*dbfHeader, error) {
	file, err := os.Open(path) //nolint:gosec // temporary file created by spoolDBF
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	h, err := readDBFHeader(file)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateColumnNames(h.fieldNames); err != nil {
		return nil, err
	}

	available := (size - int64(h.headerLength)) / int64(h.recordLength)
	if int64(h.recordCount) > available {
		return nil, fmt.Errorf("%w: header claims %d records, data holds %d", ErrInvalidData, h.recordCount, max(available, 0))
	}
	return h, nil
}

// dbfText renders one go-dbase value as text. Character data keeps leading
// spaces, logicals become true/false, dates are ISO 8601 and nil is "".
func dbfText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimRight(v, " \x00")
	case []byte:
		return strings.TrimRight(string(v), " \x00")
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

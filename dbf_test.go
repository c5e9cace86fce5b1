package geocolumn

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/nao1215/geocolumn/domain/model"
)

const (
	testDBFDeletedFlag = '*'
	testDBFEndOfFile   = 0x1A
)

type testDBFField struct {
	name     string
	kind     byte
	length   int
	decimals int
}

type testDBFRecord struct {
	deleted bool
	values  []string
}

// buildDBF encodes a dBase III table. Values are raw bytes: character values are
// left-aligned and everything else right-aligned within the field.
func buildDBF(t *testing.T, languageDriver byte, fields []testDBFField, records []testDBFRecord) []byte {
	t.Helper()

	recordLength := 1
	for _, f := range fields {
		recordLength += f.length
	}
	headerLength := dbfFileHeaderSize + dbfFieldDescSize*len(fields) + 1

	var buf bytes.Buffer
	header := make([]byte, dbfFileHeaderSize)
	header[0] = 0x03
	header[1], header[2], header[3] = 110, 8, 1
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(records)))
	binary.LittleEndian.PutUint16(header[8:10], uint16(headerLength))
	binary.LittleEndian.PutUint16(header[10:12], uint16(recordLength))
	header[dbfLanguageDriverAt] = languageDriver
	buf.Write(header)

	for _, f := range fields {
		desc := make([]byte, dbfFieldDescSize)
		copy(desc[:11], f.name)
		desc[11] = f.kind
		desc[16] = byte(f.length)
		desc[17] = byte(f.decimals)
		if f.kind == 'C' {
			desc[17] = byte(f.length >> 8)
		}
		buf.Write(desc)
	}
	buf.WriteByte(dbfHeaderTerminator)

	for _, r := range records {
		require.Len(t, r.values, len(fields))
		if r.deleted {
			buf.WriteByte(testDBFDeletedFlag)
		} else {
			buf.WriteByte(' ')
		}
		for i, f := range fields {
			value := r.values[i]
			require.LessOrEqual(t, len(value), f.length, "value %q too long for %s", value, f.name)
			pad := strings.Repeat(" ", f.length-len(value))
			if f.kind == 'C' {
				buf.WriteString(value + pad)
			} else {
				buf.WriteString(pad + value)
			}
		}
	}
	buf.WriteByte(testDBFEndOfFile)
	return buf.Bytes()
}

var localidadesFields = []testDBFField{
	{name: "CD_GEOCODM", kind: 'C', length: 7},
	{name: "NM_LOCALID", kind: 'C', length: 20},
	{name: "NM_CATEGOR", kind: 'C', length: 10},
	{name: "LONG", kind: 'N', length: 12, decimals: 6},
	{name: "LAT", kind: 'N', length: 12, decimals: 6},
	{name: "SEDE", kind: 'L', length: 1},
	{name: "DT_ATUAL", kind: 'D', length: 8},
}

func localidadesDBF(t *testing.T, languageDriver byte, name string) []byte {
	t.Helper()
	return buildDBF(t, languageDriver, localidadesFields, []testDBFRecord{
		{values: []string{"3550308", name, "CIDADE", "-46.633309", "-23.550520", "T", "20100801"}},
		{deleted: true, values: []string{"0000000", "apagado", "VILA", "0", "0", "F", "20100801"}},
		{values: []string{"3509502", "Campinas", "CIDADE", "-47.060833", "-22.905556", "F", "20100801"}},
	})
}

func TestParseDBF(t *testing.T) {
	t.Parallel()

	data := localidadesDBF(t, 0x57, "S\xe3o Paulo")
	table, err := parseDBF(context.Background(), bytes.NewReader(data), "localidades", nil)
	require.NoError(t, err)

	assert.Equal(t, model.Header{"CD_GEOCODM", "NM_LOCALID", "NM_CATEGOR", "LONG", "LAT", "SEDE", "DT_ATUAL"}, table.Header())
	require.Equal(t, 2, table.RowCount(), "deleted records are skipped")
	// numbers come back in their shortest decimal form
	assert.Equal(t, model.Record{"3550308", "São Paulo", "CIDADE", "-46.633309", "-23.55052", "true", "2010-08-01"}, table.Records()[0])
	assert.Equal(t, model.Record{"3509502", "Campinas", "CIDADE", "-47.060833", "-22.905556", "false", "2010-08-01"}, table.Records()[1])
}

func TestParseDBF_Encoding(t *testing.T) {
	t.Parallel()

	t.Run("language driver byte", func(t *testing.T) {
		t.Parallel()
		// 0x02 is code page 850, where 0xC6 is ã
		data := localidadesDBF(t, 0x02, "S\xc6o Paulo")
		table, err := parseDBF(context.Background(), bytes.NewReader(data), "cp850", nil)
		require.NoError(t, err)
		assert.Equal(t, "São Paulo", table.Value(0, 1))
	})

	t.Run("explicit encoding wins", func(t *testing.T) {
		t.Parallel()
		data := localidadesDBF(t, 0x02, "S\xc3\xa3o Paulo")
		table, err := parseDBF(context.Background(), bytes.NewReader(data), "utf8", unicode.UTF8)
		require.NoError(t, err)
		assert.Equal(t, "São Paulo", table.Value(0, 1))
	})

	t.Run("unknown driver defaults to windows-1252", func(t *testing.T) {
		t.Parallel()
		data := localidadesDBF(t, 0x00, "S\xe3o Paulo")
		table, err := parseDBF(context.Background(), bytes.NewReader(data), "default", nil)
		require.NoError(t, err)
		assert.Equal(t, "São Paulo", table.Value(0, 1))
	})
}

func TestParseDBF_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyData},
		{"short header", []byte{0x03, 0x00, 0x00}, ErrInvalidData},
		{"zero record length", make([]byte, dbfFileHeaderSize+1), ErrInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseDBF(context.Background(), bytes.NewReader(tt.data), "bad", nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("duplicate field names", func(t *testing.T) {
		t.Parallel()
		fields := []testDBFField{{name: "LAT", kind: 'C', length: 3}, {name: "LAT", kind: 'C', length: 3}}
		data := buildDBF(t, 0x57, fields, nil)
		_, err := parseDBF(context.Background(), bytes.NewReader(data), "dup", nil)
		assert.ErrorIs(t, err, model.ErrDuplicateColumnName)
	})

	t.Run("record count larger than the data", func(t *testing.T) {
		t.Parallel()
		data := localidadesDBF(t, 0x57, "Sorocaba")
		binary.LittleEndian.PutUint32(data[4:8], 0xFFFFFFFF)
		_, err := parseDBF(context.Background(), bytes.NewReader(data), "huge", nil)
		assert.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("truncated records", func(t *testing.T) {
		t.Parallel()
		data := localidadesDBF(t, 0x57, "Sorocaba")
		// drop the end-of-file marker and half of the last record
		data = data[:len(data)-20]
		_, err := parseDBF(context.Background(), bytes.NewReader(data), "short", nil)
		assert.ErrorIs(t, err, ErrInvalidData)
	})
}

func TestParseDBF_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := localidadesDBF(t, 0x57, "Sorocaba")
	_, err := parseDBF(ctx, bytes.NewReader(data), "cancelled", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDBFText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"character keeps leading spaces", " CIDADE  ", " CIDADE"},
		{"character with nul padding", "VILA\x00\x00", "VILA"},
		{"bytes", []byte("MEMO "), "MEMO"},
		{"logical true", true, "true"},
		{"logical false", false, "false"},
		{"integer", int64(5300108), "5300108"},
		{"short integer", int32(-7), "-7"},
		{"float", -47.9297, "-47.9297"},
		{"float trailing zeros", 15.5000, "15.5"},
		{"date", time.Date(2010, 8, 1, 0, 0, 0, 0, time.UTC), "2010-08-01"},
		{"datetime", time.Date(2010, 8, 1, 13, 5, 0, 0, time.UTC), "2010-08-01T13:05:00Z"},
		{"blank date", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, dbfText(tt.value))
		})
	}
}

func TestLookupEncoding(t *testing.T) {
	t.Parallel()

	enc, err := LookupEncoding(" ISO-8859-1\n")
	require.NoError(t, err)
	assert.NotNil(t, enc)

	_, err = LookupEncoding("no-such-charset")
	assert.Error(t, err)
}

func TestLoad_DBFSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "BR_Localidades_2010.dbf")
	// the header claims code page 850, the .cpg sidecar says UTF-8
	require.NoError(t, os.WriteFile(path, localidadesDBF(t, 0x02, "S\xc3\xa3o Paulo"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BR_Localidades_2010.cpg"), []byte("UTF-8\n"), 0o600))

	table, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "BR_Localidades_2010", table.Name())
	assert.Equal(t, "São Paulo", table.Value(0, 1))

	forced, err := NewLoader().WithEncoding(charmap.CodePage850).Load(context.Background(), path)
	require.NoError(t, err)
	assert.NotEqual(t, "São Paulo", forced.Value(0, 1))
}

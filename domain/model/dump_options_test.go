package model

import "testing"

func TestExportOptions(t *testing.T) {
	t.Parallel()

	opts := NewExportOptions()
	if opts.Format != OutputFormatCSV || opts.Compression != CompressionNone {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if got := opts.FileExtension(); got != ".csv" {
		t.Errorf("FileExtension() = %q, want .csv", got)
	}

	chained := opts.WithFormat(OutputFormatParquet).WithCompression(CompressionZSTD)
	if got := chained.FileExtension(); got != ".parquet.zst" {
		t.Errorf("FileExtension() = %q, want .parquet.zst", got)
	}
	if opts.Format != OutputFormatCSV {
		t.Error("WithFormat must not modify the receiver")
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want OutputFormat
		ok   bool
	}{
		{"", OutputFormatCSV, true},
		{"csv", OutputFormatCSV, true},
		{"TSV", OutputFormatTSV, true},
		{".ltsv", OutputFormatLTSV, true},
		{"parquet", OutputFormatParquet, true},
		{"xlsx", OutputFormatXLSX, true},
		{"dbf", OutputFormatCSV, false},
	}
	for _, tt := range tests {
		got, ok := ParseOutputFormat(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseOutputFormat(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
		if ok && got.Extension() != "."+got.String() {
			t.Errorf("Extension() = %q", got.Extension())
		}
	}
}

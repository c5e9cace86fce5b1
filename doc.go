// Package geocolumn finds the administrative code, category, longitude and
// latitude fields of a geographic locality table and projects the table onto
// those four columns.
//
// Source tables are not standardized. IBGE's BR_Localidades_2010 attribute table
// keeps the fields at positions 9, 16, 18 and 19, while other exports name them
// freely (cod_ibge_munic, NM_CATEGORIA, LONG, X, ...). The resolver tries three
// tiers in order and the first that succeeds wins:
//
//   - by_position: fixed positions from a position hint, used only when the table
//     has more fields than the highest hinted position
//   - by_name_pattern: case-insensitive keyword matching on field names, taking
//     the first matching field of each role
//   - manual_required: no projection; a listing of every field with its index,
//     inferred type and the first-row sample is returned instead
//
// # Features
//
//   - Load dBase (.dbf), CSV, TSV, LTSV, Parquet and Excel (XLSX) tables
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - DBF code page detection from .cpg sidecars and the language driver byte
//   - Injectable position hints and keyword sets
//   - Category filtering and counting through an in-memory SQLite store
//   - Export of projections to every loadable format except DBF
//
// # Basic Usage
//
//	table, err := geocolumn.Load(ctx, "BR_Localidades_2010.dbf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := geocolumn.Resolve(table)
//	if res.NeedsManual() {
//	    for _, f := range res.Listing {
//	        fmt.Printf("[%2d] %s (%s) sample: %s\n", f.Index, f.Name, f.Type, f.Sample)
//	    }
//	    return
//	}
//
//	cities, err := geocolumn.FilterByCategory(ctx, res.Projection, geocolumn.CityMarker)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := geocolumn.Export(ctx, cities, "cidades.parquet"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Projection
//
// A projection always has exactly the fields admin_code, category, longitude and
// latitude, in that order, and as many rows as the source table. Admin code and
// category values are trimmed; coordinates are kept verbatim as text. Values
// are never converted to numbers and null values are the empty string.
//
// # Table Naming
//
// Table names are derived from file paths:
//   - "BR_Localidades_2010.dbf" becomes "BR_Localidades_2010"
//   - "localidades.csv.gz" becomes "localidades"
//   - "/path/to/pontos.parquet" becomes "pontos"
//
// # Error Handling
//
// Resolve never fails: manual_required is a normal result. Loading, exporting
// and filtering return errors that wrap ErrEmptyData, ErrUnsupportedFormat,
// ErrInvalidData, ErrFileNotFound or ErrNilProjection; test for them with
// errors.Is.
package geocolumn

package geocolumn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/nao1215/geocolumn/domain/model"
)

const (
	// sqliteDriverName is the database/sql name registered by modernc.org/sqlite
	sqliteDriverName = "sqlite"
	// storeTableName is the table a projection is loaded into
	storeTableName = "projection"
	// rowIDColumn keeps the position of each projection row
	rowIDColumn = "row_id"
)

// CityMarker is the category value IBGE uses for municipality seats.
const CityMarker = "CIDADE"

// CategoryCount is the number of projection rows carrying one category value.
type CategoryCount struct {
	Category string
	Rows     int
}

// CategoryStore is a projection loaded into an in-memory SQLite database so that
// callers can filter and summarize it with SQL. Rows returned by the store are
// the original projection rows, unchanged and in their original order.
type CategoryStore struct {
	db         *sql.DB
	projection *model.Projection
}

// OpenStore loads projection into a new in-memory SQLite database.
// The caller must Close the store.
func OpenStore(ctx context.Context, projection *model.Projection) (*CategoryStore, error) {
	if projection == nil {
		return nil, NewErrorContext("open store", "").Error(ErrNilProjection)
	}
	errCtx := NewErrorContext("open store", "").WithTable(projection.Name())

	db, err := sql.Open(sqliteDriverName, ":memory:")
	if err != nil {
		return nil, errCtx.Error(err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	store := &CategoryStore{db: db, projection: projection}
	if err := store.load(ctx); err != nil {
		_ = db.Close()
		return nil, errCtx.Error(err)
	}
	return store, nil
}

// Close releases the database.
func (s *CategoryStore) Close() error {
	return s.db.Close()
}

// load creates the store table and inserts every projection row.
func (s *CategoryStore) load(ctx context.Context) error {
	// values stay TEXT so codes such as "0012" compare and read back verbatim
	columns := []string{fmt.Sprintf(`"%s" INTEGER PRIMARY KEY`, rowIDColumn)}
	for _, name := range s.projection.Fields() {
		columns = append(columns, fmt.Sprintf(`"%s" %s`, name, model.ColumnTypeText))
	}
	query := fmt.Sprintf(`CREATE TABLE "%s" (%s)`, storeTableName, strings.Join(columns, ", "))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after Commit
	}()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(model.Roles)+1), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO "%s" VALUES (%s)`, storeTableName, placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range s.projection.Rows() {
		if _, err := stmt.ExecContext(ctx, i, row.AdminCode, row.Category, row.Longitude, row.Latitude); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// FilterByCategory returns a projection holding only the rows whose category is
// exactly marker. Strategy and source fields are kept.
func (s *CategoryStore) FilterByCategory(ctx context.Context, marker string) (*model.Projection, error) {
	query := fmt.Sprintf(`SELECT "%s" FROM "%s" WHERE "%s" = ? ORDER BY "%s"`,
		rowIDColumn, storeTableName, model.RoleCategory, rowIDColumn)

	rows, err := s.db.QueryContext(ctx, query, marker)
	if err != nil {
		return nil, NewErrorContext("filter", "").WithTable(s.projection.Name()).Error(err)
	}
	defer rows.Close()

	source := s.projection.Rows()
	var kept []model.ProjectionRow
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		kept = append(kept, source[id])
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.projection.WithRows(kept), nil
}

// CategoryCounts returns every distinct category with its row count, in order of
// first appearance.
func (s *CategoryStore) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	query := fmt.Sprintf(`SELECT "%[1]s", COUNT(*) FROM "%[2]s" GROUP BY "%[1]s" ORDER BY MIN("%[3]s")`,
		model.RoleCategory, storeTableName, rowIDColumn)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, NewErrorContext("count categories", "").WithTable(s.projection.Name()).Error(err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		var category sql.NullString
		if err := rows.Scan(&category, &c.Rows); err != nil {
			return nil, err
		}
		c.Category = category.String
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// FilterByCategory loads projection into a temporary store and keeps the rows
// whose category equals marker.
func FilterByCategory(ctx context.Context, projection *model.Projection, marker string) (*model.Projection, error) {
	store, err := OpenStore(ctx, projection)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.FilterByCategory(ctx, marker)
}

// CategoryCounts loads projection into a temporary store and counts its categories.
func CategoryCounts(ctx context.Context, projection *model.Projection) ([]CategoryCount, error) {
	store, err := OpenStore(ctx, projection)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.CategoryCounts(ctx)
}

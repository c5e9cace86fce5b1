package model

// Role is one of the four semantic columns of a projection.
type Role string

const (
	// RoleAdminCode is the administrative (municipality) code column.
	RoleAdminCode Role = "admin_code"
	// RoleCategory is the locality category/type column.
	RoleCategory Role = "category"
	// RoleLongitude is the longitude column.
	RoleLongitude Role = "longitude"
	// RoleLatitude is the latitude column.
	RoleLatitude Role = "latitude"
)

// Roles lists the projection roles in output column order.
var Roles = [4]Role{RoleAdminCode, RoleCategory, RoleLongitude, RoleLatitude}

// String returns the field name used for the role.
func (r Role) String() string {
	return string(r)
}

// Strategy tags which resolver tier produced a result.
type Strategy string

const (
	// StrategyByPosition means the fields were taken from fixed positions.
	StrategyByPosition Strategy = "by_position"
	// StrategyByNamePattern means the fields were matched by name keywords.
	StrategyByNamePattern Strategy = "by_name_pattern"
	// StrategyManualRequired means no projection could be built automatically.
	StrategyManualRequired Strategy = "manual_required"
)

// String returns the strategy tag.
func (s Strategy) String() string {
	return string(s)
}

// ProjectionRow is one row of a projection.
type ProjectionRow struct {
	AdminCode string
	Category  string
	Longitude string
	Latitude  string
}

// Get returns the value held for role.
func (r ProjectionRow) Get(role Role) string {
	switch role {
	case RoleAdminCode:
		return r.AdminCode
	case RoleCategory:
		return r.Category
	case RoleLongitude:
		return r.Longitude
	case RoleLatitude:
		return r.Latitude
	default:
		return ""
	}
}

// Values returns the row values in Roles order.
func (r ProjectionRow) Values() []string {
	return []string{r.AdminCode, r.Category, r.Longitude, r.Latitude}
}

// Projection is the four-column view of a table produced by the resolver.
// A Projection is never modified after creation; filters return new values.
type Projection struct {
	name     string
	strategy Strategy
	sources  [4]string
	rows     []ProjectionRow
}

// NewProjection creates a projection. sources holds the source field name for
// each role in Roles order.
func NewProjection(name string, strategy Strategy, sources [4]string, rows []ProjectionRow) *Projection {
	return &Projection{
		name:     name,
		strategy: strategy,
		sources:  sources,
		rows:     rows,
	}
}

// Name returns the name of the table the projection was derived from.
func (p *Projection) Name() string {
	return p.name
}

// Strategy returns the tag of the tier that produced the projection.
func (p *Projection) Strategy() Strategy {
	return p.strategy
}

// Fields returns the projection field names. It is always the four role names.
func (p *Projection) Fields() Header {
	return Header{RoleAdminCode.String(), RoleCategory.String(), RoleLongitude.String(), RoleLatitude.String()}
}

// Source returns the source field name chosen for role.
func (p *Projection) Source(role Role) string {
	for i, r := range Roles {
		if r == role {
			return p.sources[i]
		}
	}
	return ""
}

// Sources returns the source field names in Roles order.
func (p *Projection) Sources() [4]string {
	return p.sources
}

// Rows returns the projection rows.
func (p *Projection) Rows() []ProjectionRow {
	return p.rows
}

// Len returns the number of rows.
func (p *Projection) Len() int {
	return len(p.rows)
}

// WithRows returns a copy of the projection holding rows instead.
func (p *Projection) WithRows(rows []ProjectionRow) *Projection {
	return NewProjection(p.name, p.strategy, p.sources, rows)
}

// ToTable converts the projection to a Table with the four role fields.
func (p *Projection) ToTable() *Table {
	records := make([]Record, 0, len(p.rows))
	for _, row := range p.rows {
		records = append(records, NewRecord(row.Values()))
	}
	return NewTable(p.name, p.Fields(), records)
}

// Equal compare Projection.
func (p *Projection) Equal(p2 *Projection) bool {
	if p == nil || p2 == nil {
		return p == p2
	}
	if p.name != p2.name || p.strategy != p2.strategy || p.sources != p2.sources {
		return false
	}
	if len(p.rows) != len(p2.rows) {
		return false
	}
	for i, row := range p.rows {
		if row != p2.rows[i] {
			return false
		}
	}
	return true
}

// SampleSentinel is reported as the sample value when a table has no rows.
const SampleSentinel = "N/A"

// FieldSample describes one source field for manual column selection.
type FieldSample struct {
	Index  int
	Name   string
	Type   ColumnType
	Sample string
}

// TierAttempt records what one resolver tier did. It is advisory only.
type TierAttempt struct {
	Strategy Strategy
	// Hint names the position hint, for the positional tier.
	Hint string
	// Candidates holds the matching field names per role, for the name-pattern tier.
	Candidates map[Role][]string
	Succeeded  bool
	Reason     string
}

// Resolution is the result of resolving a table.
type Resolution struct {
	// Projection is nil when Strategy is StrategyManualRequired.
	Projection *Projection
	Strategy   Strategy
	// Listing is filled only when Strategy is StrategyManualRequired.
	Listing  []FieldSample
	Attempts []TierAttempt
}

// NeedsManual reports whether a human has to pick the columns.
func (r Resolution) NeedsManual() bool {
	return r.Strategy == StrategyManualRequired
}

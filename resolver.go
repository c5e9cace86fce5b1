package geocolumn

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/geocolumn/domain/model"
)

// Resolver finds the administrative code, category, longitude and latitude
// columns of a table. It tries, in order:
//
//  1. fixed positions from the configured position hints,
//  2. field name keywords,
//  3. a field listing for manual selection.
//
// The first tier that succeeds wins. A Resolver holds no mutable state once
// configured and Resolve never returns an error.
//
// The typical usage pattern is:
//
//	res := geocolumn.NewResolver().
//		WithPositionHints(geocolumn.IBGELocalidades2010).
//		WithLogger(logger).
//		Resolve(table)
//	if res.NeedsManual() {
//		for _, f := range res.Listing {
//			fmt.Printf("[%2d] %s - sample: %s\n", f.Index, f.Name, f.Sample)
//		}
//	}
type Resolver struct {
	// hints are tried in order by the positional tier
	hints []PositionHint
	// keywords drive the name-pattern tier
	keywords Keywords
	// logger receives tier narration; it never affects the result
	logger *slog.Logger
}

// NewResolver creates a resolver with the default position hints and keywords.
func NewResolver() *Resolver {
	return &Resolver{
		hints:    DefaultPositionHints(),
		keywords: DefaultKeywords(),
		logger:   slog.Default(),
	}
}

// WithPositionHints replaces the position hints. Passing none disables the positional tier.
//
// Returns the resolver for method chaining.
func (r *Resolver) WithPositionHints(hints ...PositionHint) *Resolver {
	r.hints = append([]PositionHint(nil), hints...)
	return r
}

// WithKeywords replaces the keyword sets of the name-pattern tier.
//
// Returns the resolver for method chaining.
func (r *Resolver) WithKeywords(keywords Keywords) *Resolver {
	r.keywords = keywords.clone()
	return r
}

// WithLogger sets the logger used for diagnostic narration.
//
// Returns the resolver for method chaining.
func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Resolve resolves table with the default resolver.
func Resolve(table *model.Table) model.Resolution {
	return NewResolver().Resolve(table)
}

// Resolve runs the tiers against table.
func (r *Resolver) Resolve(table *model.Table) model.Resolution {
	logger := r.logger.With("table", table.Name())
	logger.Debug("resolving columns", "fields", table.FieldCount(), "rows", table.RowCount())

	var attempts []model.TierAttempt

	for _, hint := range r.hints {
		projection, attempt := r.byPosition(table, hint)
		attempts = append(attempts, attempt)
		if projection != nil {
			logger.Info("columns resolved", "strategy", model.StrategyByPosition, "hint", hint.Name)
			return model.Resolution{Projection: projection, Strategy: model.StrategyByPosition, Attempts: attempts}
		}
		logger.Debug("positional tier skipped", "hint", hint.Name, "reason", attempt.Reason)
	}

	projection, attempt := r.byNamePattern(table)
	attempts = append(attempts, attempt)
	for _, role := range model.Roles {
		logger.Debug("name candidates", "role", role, "candidates", attempt.Candidates[role])
	}
	if projection != nil {
		logger.Info("columns resolved", "strategy", model.StrategyByNamePattern)
		return model.Resolution{Projection: projection, Strategy: model.StrategyByNamePattern, Attempts: attempts}
	}
	logger.Debug("name-pattern tier failed", "reason", attempt.Reason)

	logger.Warn("manual column selection required", "fields", table.FieldCount())
	attempts = append(attempts, model.TierAttempt{Strategy: model.StrategyManualRequired, Succeeded: true})
	return model.Resolution{
		Strategy: model.StrategyManualRequired,
		Listing:  FieldListing(table),
		Attempts: attempts,
	}
}

// byPosition is the positional tier for one hint.
func (r *Resolver) byPosition(table *model.Table, hint PositionHint) (*model.Projection, model.TierAttempt) {
	attempt := model.TierAttempt{Strategy: model.StrategyByPosition, Hint: hint.Name}

	if !hint.Applies(table.FieldCount()) {
		attempt.Reason = fmt.Sprintf("table has %d fields, need more than %d", table.FieldCount(), hint.maxPosition())
		return nil, attempt
	}
	if err := hint.Validate(); err != nil {
		attempt.Reason = err.Error()
		return nil, attempt
	}

	projection, err := project(table, model.StrategyByPosition, hint.Positions)
	if err != nil {
		attempt.Reason = err.Error()
		return nil, attempt
	}
	attempt.Succeeded = true
	return projection, attempt
}

// byNamePattern is the name-pattern tier. The first candidate in field order wins
// for each role.
func (r *Resolver) byNamePattern(table *model.Table) (*model.Projection, model.TierAttempt) {
	attempt := model.TierAttempt{
		Strategy:   model.StrategyByNamePattern,
		Candidates: make(map[model.Role][]string, len(model.Roles)),
	}

	var positions [4]int
	var missing []string
	for i, role := range model.Roles {
		first := -1
		for idx, name := range table.Header() {
			if r.keywords.Matches(role, name) {
				attempt.Candidates[role] = append(attempt.Candidates[role], name)
				if first < 0 {
					first = idx
				}
			}
		}
		if first < 0 {
			missing = append(missing, role.String())
		}
		positions[i] = first
	}

	if len(missing) > 0 {
		attempt.Reason = "no candidates for " + strings.Join(missing, ", ")
		return nil, attempt
	}

	projection, err := project(table, model.StrategyByNamePattern, positions)
	if err != nil {
		attempt.Reason = err.Error()
		return nil, attempt
	}
	attempt.Succeeded = true
	return projection, attempt
}

// project selects the fields at positions, relabels them to the four roles and
// trims the admin code and category values. It fails when a position is out of
// range or when two roles would be taken from fields with the same name.
func project(table *model.Table, strategy model.Strategy, positions [4]int) (*model.Projection, error) {
	header := table.Header()

	var sources [4]string
	seen := make(map[string]model.Role, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= len(header) {
			return nil, fmt.Errorf("position %d out of range for %d fields", pos, len(header))
		}
		name := header[pos]
		if other, dup := seen[name]; dup {
			return nil, fmt.Errorf("field %q selected for both %s and %s", name, other, model.Roles[i])
		}
		seen[name] = model.Roles[i]
		sources[i] = name
	}

	rows := make([]model.ProjectionRow, 0, table.RowCount())
	for _, record := range table.Records() {
		rows = append(rows, model.ProjectionRow{
			AdminCode: strings.TrimSpace(record.At(positions[0])),
			Category:  strings.TrimSpace(record.At(positions[1])),
			Longitude: record.At(positions[2]),
			Latitude:  record.At(positions[3]),
		})
	}
	return model.NewProjection(table.Name(), strategy, sources, rows), nil
}

// FieldListing lists every field of table with its index, inferred type and the
// value of the first row, or model.SampleSentinel when the table is empty.
func FieldListing(table *model.Table) []model.FieldSample {
	info := table.ColumnInfo()
	listing := make([]model.FieldSample, 0, table.FieldCount())
	for i, name := range table.Header() {
		sample := model.SampleSentinel
		if table.RowCount() > 0 {
			sample = table.Value(0, i)
		}
		columnType := model.ColumnTypeText
		if i < len(info) {
			columnType = info[i].Type
		}
		listing = append(listing, model.FieldSample{
			Index:  i,
			Name:   name,
			Type:   columnType,
			Sample: sample,
		})
	}
	return listing
}

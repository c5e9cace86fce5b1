package geocolumn

import (
	"fmt"
	"strings"

	"github.com/nao1215/geocolumn/domain/model"
)

// PositionHint maps the four roles to fixed field positions for one known source
// format. Positions are zero-based and given in model.Roles order: admin code,
// category, longitude, latitude.
type PositionHint struct {
	// Name identifies the source format, e.g. "ibge_localidades_2010".
	Name string
	// Positions holds the field index for each role.
	Positions [4]int
}

// IBGELocalidades2010 is the layout of IBGE's BR_Localidades_2010 attribute table,
// where CD_GEOCODM, NM_CATEGORIA, LONG and LAT sit at positions 9, 16, 18 and 19.
var IBGELocalidades2010 = PositionHint{
	Name:      "ibge_localidades_2010",
	Positions: [4]int{9, 16, 18, 19},
}

// DefaultPositionHints returns the position hints used when none are configured.
func DefaultPositionHints() []PositionHint {
	return []PositionHint{IBGELocalidades2010}
}

// maxPosition returns the highest position of the hint.
func (h PositionHint) maxPosition() int {
	highest := h.Positions[0]
	for _, p := range h.Positions[1:] {
		if p > highest {
			highest = p
		}
	}
	return highest
}

// Applies reports whether a table with fieldCount fields is wide enough for the hint.
// The table must have more fields than the highest position.
func (h PositionHint) Applies(fieldCount int) bool {
	return fieldCount > h.maxPosition()
}

// Validate checks that positions are non-negative and distinct.
func (h PositionHint) Validate() error {
	seen := make(map[int]struct{}, len(h.Positions))
	for i, p := range h.Positions {
		if p < 0 {
			return fmt.Errorf("position hint %q: negative position %d for %s", h.Name, p, model.Roles[i])
		}
		if _, ok := seen[p]; ok {
			return fmt.Errorf("position hint %q: position %d used twice", h.Name, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Keywords holds, for each role, the substrings that mark a field name as a candidate.
// Matching is case-insensitive.
type Keywords map[model.Role][]string

// DefaultKeywords returns the built-in keyword sets.
func DefaultKeywords() Keywords {
	return Keywords{
		model.RoleAdminCode: {"COD", "IBGE", "GEOCOD", "CODIGO"},
		model.RoleCategory:  {"CATEG", "TIPO", "CLASS", "CATEGORIA"},
		model.RoleLongitude: {"LONG", "X", "LONGITUDE"},
		model.RoleLatitude:  {"LAT", "Y", "LATITUDE"},
	}
}

// Matches reports whether fieldName contains any keyword of role.
func (k Keywords) Matches(role model.Role, fieldName string) bool {
	upper := strings.ToUpper(fieldName)
	for _, kw := range k[role] {
		if kw == "" {
			continue
		}
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// Validate checks that every role has at least one non-empty keyword.
func (k Keywords) Validate() error {
	for _, role := range model.Roles {
		ok := false
		for _, kw := range k[role] {
			if strings.TrimSpace(kw) != "" {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("no keywords for %s", role)
		}
	}
	return nil
}

// clone returns a deep copy so callers cannot mutate a resolver's keywords.
func (k Keywords) clone() Keywords {
	c := make(Keywords, len(k))
	for role, kws := range k {
		c[role] = append([]string(nil), kws...)
	}
	return c
}

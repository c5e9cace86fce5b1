package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateColumnName is returned when a file contains duplicate column names
var ErrDuplicateColumnName = errors.New("duplicate column name")

// ValidateColumnNames returns ErrDuplicateColumnName when names repeats a value.
func ValidateColumnNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateColumnName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

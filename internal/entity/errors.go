package entity

import (
	"errors"
	"fmt"
)

// StructureError reports ENTITY-MIB data that cannot form a hierarchy:
// cyclic containment or a component without any chassis ancestor.
type StructureError struct {
	Index  string // entPhysicalIndex of the offending row
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("entity %s: %s", e.Index, e.Reason)
}

// IsStructureError checks whether err is or wraps a StructureError.
func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}

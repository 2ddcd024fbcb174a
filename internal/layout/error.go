package layout

import (
	"fmt"
	"strings"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates a struct that contains itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	// LayoutErrOpaque indicates a named struct whose body was never set.
	LayoutErrOpaque
	LayoutErrNegativeLength
	LayoutErrUnsized
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  string
	Cycle []string // for LayoutErrRecursiveUnsized
	Value int64    // for LayoutErrNegativeLength
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive value type has infinite size (%s)", e.Type)
		}
		return fmt.Sprintf("recursive value type has infinite size (cycle: %s)", strings.Join(e.Cycle, " -> "))
	case LayoutErrOpaque:
		return fmt.Sprintf("struct %s has no body", e.Type)
	case LayoutErrNegativeLength:
		return fmt.Sprintf("negative array length: %d (%s)", e.Value, e.Type)
	case LayoutErrUnsized:
		return fmt.Sprintf("type %s has no size", e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d %s", e.Kind, e.Type)
	}
}

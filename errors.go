package trimesh

import (
	"fmt"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is matched by every InvalidInputError.
	ErrInvalidInput = errors.New("trimesh: invalid input")
	// ErrTopology is matched by every TopologyError.
	ErrTopology = errors.New("trimesh: topology error")
)

// InvalidInputError reports an input element that cannot be processed:
// a ring that is not a triangle, a non polygonal geometry, unsorted
// levels or non finite markers.
type InvalidInputError struct {
	Index  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("trimesh: invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("trimesh: invalid input at element %d: %s", e.Index, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) true.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(index int, format string, args ...any) error {
	return &InvalidInputError{Index: index, Reason: fmt.Sprintf(format, args...)}
}

// TopologyError is raised when a triangle falls through the split case
// table or when a produced piece violates its band. It carries everything
// needed to reproduce the failing split.
type TopologyError struct {
	Op       string
	Triangle TriMarker
	Begin    float64
	End      float64
	Flags    string
}

func (e *TopologyError) Error() string {
	t := e.Triangle
	return fmt.Sprintf("trimesh: %s: %s markers (%g, %g, %g) interval [%g, %g] flags %s",
		e.Op, wkt.MarshalString(t.Polygon()), t.M0, t.M1, t.M2, e.Begin, e.End, e.Flags)
}

// Is makes errors.Is(err, ErrTopology) true.
func (e *TopologyError) Is(target error) bool {
	return target == ErrTopology
}

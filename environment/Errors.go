package environment

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfiguration is returned when an environment cannot be
	// constructed from its configuration. It is fatal: no environment
	// is created.
	ErrConfiguration = errors.New("configuration error")

	// ErrShapeMismatch is returned when a per-step input does not have
	// the dimensions fixed at construction. Nothing is written to the
	// output buffers for that step.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// ConfigErrorf wraps ErrConfiguration with a formatted message
func ConfigErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// ShapeErrorf returns an ErrShapeMismatch describing the input called
// name, which has dimensions have instead of want
func ShapeErrorf(name string, have, want []int) error {
	return errors.Wrap(ErrShapeMismatch, fmt.Sprintf("%v: \n\thave(%v) "+
		"\n\twant(%v)", name, have, want))
}

// CheckDims returns an ErrShapeMismatch if the dimensions of a matrix
// called name are not (rows, cols)
func CheckDims(name string, m interface{ Dims() (int, int) }, rows,
	cols int) error {
	r, c := m.Dims()
	if r != rows || c != cols {
		return ShapeErrorf(name, []int{r, c}, []int{rows, cols})
	}
	return nil
}

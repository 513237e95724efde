// Package tensorutils provides helpers for the dense float64 tensors
// that simulators use to expose batched per-body state, such as
// rigid-body poses of shape (environments, bodies, 13)
package tensorutils

import (
	"fmt"

	"gorgonia.org/tensor"
)

// New3 returns a float64 tensor of shape (a, b, c) backed by data. If
// data is nil, a zeroed backing slice is allocated.
func New3(a, b, c int, data []float64) *tensor.Dense {
	if data == nil {
		data = make([]float64, a*b*c)
	}
	if len(data) != a*b*c {
		panic(fmt.Sprintf("new3: backing length %v does not match shape "+
			"(%v, %v, %v)", len(data), a, b, c))
	}
	return tensor.New(tensor.WithShape(a, b, c), tensor.WithBacking(data))
}

// Float64s returns the backing data of t, which must hold float64s
func Float64s(t *tensor.Dense) ([]float64, error) {
	if t == nil {
		return nil, fmt.Errorf("float64s: nil tensor")
	}
	data, ok := t.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("float64s: tensor has dtype %v, want float64",
			t.Dtype())
	}
	return data, nil
}

// ShapeEq returns whether t has exactly the given shape
func ShapeEq(t *tensor.Dense, shape ...int) bool {
	if t == nil {
		return false
	}
	have := t.Shape()
	if len(have) != len(shape) {
		return false
	}
	for i := range shape {
		if have[i] != shape[i] {
			return false
		}
	}
	return true
}

// Shape returns a copy of the shape of t, or nil for a nil tensor
func Shape(t *tensor.Dense) []int {
	if t == nil {
		return nil
	}
	return append([]int(nil), t.Shape()...)
}

// Index3 returns the offset of element (i, j, k) in the row-major
// backing of a tensor of shape (_, b, c)
func Index3(b, c, i, j, k int) int {
	return (i*b+j)*c + k
}

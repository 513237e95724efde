package matutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestScatterRows(t *testing.T) {
	dst := mat.NewDense(3, 2, []float64{1, 1, 2, 2, 3, 3})
	src := mat.NewDense(3, 2, []float64{9, 9, 8, 8, 7, 7})

	ScatterRows(dst, src, []int{2})
	assert.Equal(t, []float64{1, 1, 2, 2, 7, 7}, dst.RawMatrix().Data)
}

func TestZeroColumns(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	ZeroColumns(m, 1, 3)
	assert.Equal(t, []float64{1, 0, 0, 4, 0, 0}, m.RawMatrix().Data)
}

func TestUniqueIndices(t *testing.T) {
	ids, err := UniqueIndices([]int{2, 0, 2, 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, ids)

	_, err = UniqueIndices([]int{3}, 3)
	assert.Error(t, err)
	_, err = UniqueIndices([]int{-1}, 3)
	assert.Error(t, err)

	assert.Equal(t, []int{0, 1, 2}, Range(3))
}

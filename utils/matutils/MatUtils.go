// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// ScatterRows copies the listed rows of src into the same rows of dst.
// No other row of dst is written. The matrices must have the same
// dimensions.
func ScatterRows(dst, src *mat.Dense, rows []int) {
	for _, i := range rows {
		copy(dst.RawRowView(i), src.RawRowView(i))
	}
}

// ZeroColumns sets columns [from, to) of every row of m to zero
func ZeroColumns(m *mat.Dense, from, to int) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := from; j < to; j++ {
			row[j] = 0
		}
	}
}

// UniqueIndices returns the distinct values of ids in their order of
// first appearance. It returns an error if any index is outside
// [0, n).
func UniqueIndices(ids []int, n int) ([]int, error) {
	seen := make(map[int]bool, len(ids))
	unique := make([]int, 0, len(ids))

	for _, id := range ids {
		if id < 0 || id >= n {
			return nil, fmt.Errorf("uniqueIndices: index %v out of range "+
				"[0, %v)", id, n)
		}
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique, nil
}

// Range returns [0, 1, ..., n-1]
func Range(n int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = i
	}
	return r
}

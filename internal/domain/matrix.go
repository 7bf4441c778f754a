package domain

import (
	"fmt"
	"math"
)

// DistanceMatrix is a square matrix of travel costs in kilometres.
// matrix[i][j] is the cost of travelling from stop i to stop j.
type DistanceMatrix [][]float64

// NewDistanceMatrix allocates a zero-filled n x n matrix backed by one slice.
func NewDistanceMatrix(n int) DistanceMatrix {
	cells := make([]float64, n*n)
	m := make(DistanceMatrix, n)
	for i := range m {
		m[i] = cells[i*n : (i+1)*n : (i+1)*n]
	}
	return m
}

func (m DistanceMatrix) Size() int { return len(m) }

// Validate checks that the matrix is square and every entry is finite and non-negative.
func (m DistanceMatrix) Validate() error {
	n := len(m)
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: matrix row %d has %d entries, want %d", ErrInvalidConfiguration, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: matrix[%d][%d] is not finite", ErrInvalidConfiguration, i, j)
			}
			if v < 0 {
				return fmt.Errorf("%w: matrix[%d][%d] = %v is negative", ErrInvalidConfiguration, i, j, v)
			}
		}
	}
	return nil
}

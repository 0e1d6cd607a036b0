package features

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Array is a dense row-major float64 array of rank 1 or 2.
type Array struct {
	Shape []int
	Data  []float64
}

// NewVector wraps data as a rank-1 array without copying.
func NewVector(data []float64) *Array {
	return &Array{Shape: []int{len(data)}, Data: data}
}

// NewMatrix wraps data as a rows x cols array without copying.
func NewMatrix(rows, cols int, data []float64) (*Array, error) {
	if rows < 0 || cols < 0 || rows*cols != len(data) {
		return nil, fmt.Errorf("shape %dx%d does not match %d elements", rows, cols, len(data))
	}
	return &Array{Shape: []int{rows, cols}, Data: data}, nil
}

// FromRows copies a rectangular [][]float64 into a rank-2 array.
func FromRows(rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return nil, ErrNoArray
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRaggedRows, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &Array{Shape: []int{len(rows), cols}, Data: data}, nil
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.Shape) }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Data) }

// Rows returns the first dimension.
func (a *Array) Rows() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// Cols returns the second dimension, or 1 for a vector.
func (a *Array) Cols() int {
	if len(a.Shape) < 2 {
		return 1
	}
	return a.Shape[1]
}

// Row returns row i of a rank-2 array as a sub-slice.
func (a *Array) Row(i int) []float64 {
	c := a.Cols()
	return a.Data[i*c : (i+1)*c]
}

// Flatten returns a rank-1 view sharing the same data.
func (a *Array) Flatten() *Array {
	return NewVector(a.Data)
}

// Dense returns a gonum matrix view of a rank-2 array. The data is shared.
func (a *Array) Dense() (*mat.Dense, error) {
	if a.Rank() != 2 {
		return nil, fmt.Errorf("dense view needs rank 2, have rank %d", a.Rank())
	}
	if a.Rows() == 0 || a.Cols() == 0 {
		return nil, fmt.Errorf("dense view of empty %dx%d array", a.Rows(), a.Cols())
	}
	return mat.NewDense(a.Rows(), a.Cols(), a.Data), nil
}

// Validate checks that Shape and Data agree.
func (a *Array) Validate() error {
	if a == nil {
		return ErrNoArray
	}
	if a.Rank() < 1 || a.Rank() > 2 {
		return fmt.Errorf("unsupported rank %d", a.Rank())
	}
	n := 1
	for _, d := range a.Shape {
		if d < 0 {
			return fmt.Errorf("negative dimension in shape %v", a.Shape)
		}
		n *= d
	}
	if n != len(a.Data) {
		return fmt.Errorf("shape %v holds %d elements, data has %d", a.Shape, n, len(a.Data))
	}
	return nil
}

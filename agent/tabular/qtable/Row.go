package qtable

import "gonum.org/v1/gonum/mat"

// Row is a read-only view of the action values of a single state. It
// shares its memory with the QTable, so it reflects later updates, but
// cannot be used to change the table.
type Row struct {
	values []float64
}

// Dims returns the dimensions of the Row as a column vector
func (r Row) Dims() (int, int) {
	return len(r.values), 1
}

// At returns the value at row i, column j. At panics if j is not 0 or
// i is out of range.
func (r Row) At(i, j int) float64 {
	if j != 0 {
		panic(mat.ErrColAccess)
	}
	return r.AtVec(i)
}

// AtVec returns the value of action i
func (r Row) AtVec(i int) float64 {
	if i < 0 || i >= len(r.values) {
		panic(mat.ErrRowAccess)
	}
	return r.values[i]
}

// Len returns the number of actions in the Row
func (r Row) Len() int {
	return len(r.values)
}

// T returns the transpose of the Row
func (r Row) T() mat.Matrix {
	return mat.Transpose{Matrix: r}
}

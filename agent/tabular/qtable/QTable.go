// Package qtable implements a dense table of action values indexed by
// discretized state coordinates and action
package qtable

import (
	"errors"
	"fmt"

	"gorgonia.org/tensor"

	"github.com/samuelfneumann/wormrl/utils/intutils"
	"github.com/samuelfneumann/wormrl/utils/matutils"
)

var (
	// ErrDimensionMismatch is returned when state coordinates do not have
	// one element per state axis of the table
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexOutOfRange is returned when a state coordinate or action
	// index lies outside of its table axis
	ErrIndexOutOfRange = errors.New("index out of range")
)

// QTable is a dense table of estimated action values. The table has one
// axis per discretized state dimension followed by an action axis:
//
//	shape = [buckets[0], ..., buckets[n-1], actions]
//
// All values start at zero. The table is never resized. Values are
// stored in a flat row-major buffer and every access goes through a
// bounds-checked, stride-computed offset. The only way to change a
// value is through Update or UpdateSARSA, each of which changes a
// single value.
type QTable struct {
	values  *tensor.Dense
	data    []float64
	shape   tensor.Shape
	strides []int
}

// New returns a new zero-initialized QTable with buckets[i] entries
// along state axis i and actions entries along the action axis
func New(buckets []int, actions int) (*QTable, error) {
	if actions < 1 {
		return nil, fmt.Errorf("new: must have at least one action, have %d",
			actions)
	}
	for i, b := range buckets {
		if b < 1 {
			return nil, fmt.Errorf("new: state axis %d must have at least "+
				"one bucket, have %d", i, b)
		}
	}

	shape := make(tensor.Shape, 0, len(buckets)+1)
	shape = append(shape, buckets...)
	shape = append(shape, actions)

	values := tensor.New(tensor.WithShape(shape...), tensor.Of(tensor.Float64))
	data, ok := values.Data().([]float64)
	if !ok || len(data) != intutils.Prod(shape...) {
		return nil, fmt.Errorf("new: could not allocate table of shape %v",
			shape)
	}

	strides := make([]int, len(shape))
	copy(strides, shape.CalcStrides())

	return &QTable{
		values:  values,
		data:    data,
		shape:   shape,
		strides: strides,
	}, nil
}

// Shape returns the shape of the table
func (q *QTable) Shape() []int {
	return q.shape.Clone()
}

// Actions returns the length of the action axis
func (q *QTable) Actions() int {
	return q.shape[len(q.shape)-1]
}

// Len returns the number of values in the table
func (q *QTable) Len() int {
	return len(q.data)
}

// rowOffset returns the offset into the backing buffer of the first
// action value of state
func (q *QTable) rowOffset(state []int) (int, error) {
	if len(state) != len(q.shape)-1 {
		return 0, fmt.Errorf("%w: state has %d coordinates, want %d",
			ErrDimensionMismatch, len(state), len(q.shape)-1)
	}

	offset := 0
	for i, coord := range state {
		if coord < 0 || coord >= q.shape[i] {
			return 0, fmt.Errorf("%w: coordinate %d of state axis %d not "+
				"in [0, %d)", ErrIndexOutOfRange, coord, i, q.shape[i])
		}
		offset += coord * q.strides[i]
	}
	return offset, nil
}

// offset returns the offset into the backing buffer of the value of
// action in state
func (q *QTable) offset(state []int, action int) (int, error) {
	row, err := q.rowOffset(state)
	if err != nil {
		return 0, err
	}
	if action < 0 || action >= q.Actions() {
		return 0, fmt.Errorf("%w: action %d not in [0, %d)",
			ErrIndexOutOfRange, action, q.Actions())
	}
	return row + action*q.strides[len(q.strides)-1], nil
}

// Value returns the value of taking action in state
func (q *QTable) Value(state []int, action int) (float64, error) {
	off, err := q.offset(state, action)
	if err != nil {
		return 0, fmt.Errorf("value: %w", err)
	}
	return q.data[off], nil
}

// Row returns the values of all actions in state. The returned Row is
// a read-only view of the table: it is not a copy and reflects later
// updates.
func (q *QTable) Row(state []int) (Row, error) {
	off, err := q.rowOffset(state)
	if err != nil {
		return Row{}, fmt.Errorf("row: %w", err)
	}
	n := q.Actions()
	return Row{q.data[off : off+n : off+n]}, nil
}

// Update performs a one-step Q-learning update of the value of taking
// action in state, after which reward was received and the environment
// transitioned to next:
//
//	target = reward + discount * max_a' Q(next, a')
//	Q(state, action) += learningRate * (target - Q(state, action))
//
// Update returns the TD error (target - Q(state, action)) computed
// before the update.
func (q *QTable) Update(state []int, action int, reward float64,
	next []int, learningRate, discount float64) (float64, error) {
	nextValues, err := q.Row(next)
	if err != nil {
		return 0, fmt.Errorf("update: next state: %w", err)
	}
	target := reward + discount*matutils.VecMax(nextValues)

	return q.moveToward(state, action, target, learningRate)
}

// UpdateSARSA performs a one-step SARSA update of the value of taking
// action in state, after which reward was received, the environment
// transitioned to next and nextAction was selected:
//
//	target = reward + discount * Q(next, nextAction)
//	Q(state, action) += learningRate * (target - Q(state, action))
//
// UpdateSARSA returns the TD error computed before the update.
func (q *QTable) UpdateSARSA(state []int, action int, reward float64,
	next []int, nextAction int, learningRate, discount float64) (float64,
	error) {
	nextValue, err := q.Value(next, nextAction)
	if err != nil {
		return 0, fmt.Errorf("updateSARSA: next state: %w", err)
	}
	target := reward + discount*nextValue

	return q.moveToward(state, action, target, learningRate)
}

// moveToward moves the value of action in state toward target by
// learningRate times the TD error
func (q *QTable) moveToward(state []int, action int, target,
	learningRate float64) (float64, error) {
	off, err := q.offset(state, action)
	if err != nil {
		return 0, fmt.Errorf("update: %w", err)
	}

	tdError := target - q.data[off]
	q.data[off] += learningRate * tdError

	return tdError, nil
}

// String returns a string representation of a *QTable
func (q *QTable) String() string {
	return fmt.Sprintf("QTable  |  Shape: %v", []int(q.shape))
}

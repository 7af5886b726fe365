package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action or an observation
type SpecType int

const (
	Action SpecType = iota
	Observation
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type
// and bounds of an action or observation in an environment. An
// observation Spec is the observation space of an environment: its
// bounds are immutable once created.
type Spec struct {
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The argument t outlines what the specification is describing (e.g.
// actions, observations). The cardinality argument describes whether
// the values that the spec describes are continuous or discrete.
//
// An error is returned if the bounds have different lengths or if any
// lower bound exceeds its upper bound.
func NewSpec(t SpecType, lowerBound, upperBound mat.Vector,
	cardinality Cardinality) (Spec, error) {
	if lowerBound.Len() != upperBound.Len() {
		return Spec{}, fmt.Errorf("newSpec: lower bounds length %v must "+
			"match upper bounds length %v", lowerBound.Len(),
			upperBound.Len())
	}
	for i := 0; i < lowerBound.Len(); i++ {
		if lowerBound.AtVec(i) > upperBound.AtVec(i) {
			return Spec{}, fmt.Errorf("newSpec: lower bound %v exceeds "+
				"upper bound %v in dimension %d", lowerBound.AtVec(i),
				upperBound.AtVec(i), i)
		}
	}

	// Copy the bounds so that the Spec cannot be mutated through the
	// caller's vectors
	lower := mat.VecDenseCopyOf(lowerBound)
	upper := mat.VecDenseCopyOf(upperBound)

	return Spec{t, lower, upper, cardinality}, nil
}

// Len returns the number of dimensions described by the Spec
func (s Spec) Len() int {
	return s.LowerBound.Len()
}

// Bounds returns the bounds of each dimension as intervals
func (s Spec) Bounds() []r1.Interval {
	bounds := make([]r1.Interval, s.Len())
	for i := range bounds {
		bounds[i] = r1.Interval{
			Min: s.LowerBound.AtVec(i),
			Max: s.UpperBound.AtVec(i),
		}
	}
	return bounds
}

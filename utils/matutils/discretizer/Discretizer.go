// Package discretizer implements discretization of bounded continuous
// vectors into integer grid coordinates
package discretizer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/wormrl/environment"
	"github.com/samuelfneumann/wormrl/utils/floatutils"
)

// ErrDimensionMismatch is returned when a vector does not have one
// element per discretized dimension
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Discretizer maps continuous vectors into a grid of equal-width
// buckets. Each dimension i of the space described by an observation
// Spec is split into buckets[i] buckets:
//
//	[0.5, 70.1, -3.2] -> [0, 7, 2]
//
// Values outside of the Spec's bounds are clamped to the bounds before
// being discretized, so every coordinate lies in [0, buckets[i]-1].
type Discretizer struct {
	bounds  []r1.Interval
	buckets []int
}

// New returns a new Discretizer for the space described by spec, using
// buckets[i] buckets along dimension i
func New(spec environment.Spec, buckets []int) (*Discretizer, error) {
	if len(buckets) != spec.Len() {
		return nil, fmt.Errorf("new: %w: have %d bucket counts for %d "+
			"dimensions", ErrDimensionMismatch, len(buckets), spec.Len())
	}

	for i, b := range buckets {
		if b < 1 {
			return nil, fmt.Errorf("new: dimension %d must have at least "+
				"one bucket, have %d", i, b)
		}
	}
	bounds := spec.Bounds()

	b := make([]int, len(buckets))
	copy(b, buckets)

	return &Discretizer{bounds, b}, nil
}

// Discretize returns the grid coordinates of obs.
//
// Along each dimension i the value is clamped to [low, high], scaled to
// [0, 1] by (v - low) / (high - low), then mapped to the nearest bucket
// by round((buckets[i]-1) * scaling) with halves rounded away from
// zero. A dimension with low == high always maps to bucket 0.
func (d *Discretizer) Discretize(obs mat.Vector) ([]int, error) {
	if obs.Len() != len(d.buckets) {
		return nil, fmt.Errorf("discretize: %w: observation has %d "+
			"dimensions, want %d", ErrDimensionMismatch, obs.Len(),
			len(d.buckets))
	}

	coords := make([]int, len(d.buckets))
	for i, b := range d.bounds {
		if math.IsNaN(obs.AtVec(i)) {
			return nil, fmt.Errorf("discretize: dimension %d is NaN", i)
		}

		width := b.Max - b.Min
		if width == 0 {
			continue
		}

		value := floatutils.ClipInterval(obs.AtVec(i), b)
		scaling := (value - b.Min) / width

		bucket := math.Round(float64(d.buckets[i]-1) * scaling)
		coords[i] = int(floatutils.Clip(bucket, 0, float64(d.buckets[i]-1)))
	}
	return coords, nil
}

// Buckets returns the number of buckets along each dimension
func (d *Discretizer) Buckets() []int {
	b := make([]int, len(d.buckets))
	copy(b, d.buckets)
	return b
}

// Len returns the number of discretized dimensions
func (d *Discretizer) Len() int {
	return len(d.buckets)
}

// String returns a string representation of a *Discretizer
func (d *Discretizer) String() string {
	return fmt.Sprintf("Buckets: %v", d.buckets)
}

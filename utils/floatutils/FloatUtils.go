// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// LogDecay returns a value decayed logarithmically with t:
//
//	max(floor, min(ceil, 1 - log10((t + 1) / rate)))
//
// The value stays at ceil until t + 1 reaches rate / 10^(ceil - 1)
// and then falls by one every time t grows tenfold. A rate of zero or
// less disables decay and ceil is returned.
func LogDecay(t int, rate, floor, ceil float64) float64 {
	if rate <= 0 {
		return math.Max(floor, ceil)
	}
	decayed := 1.0 - math.Log10(float64(t+1)/rate)
	return math.Max(floor, math.Min(ceil, decayed))
}

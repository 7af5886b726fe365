package matutils

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMaxVec(t *testing.T) {
	tests := []struct {
		values []float64
		want   int
	}{
		{[]float64{1}, 0},
		{[]float64{0, 0, 0}, 0},
		{[]float64{-1, 3, 2}, 1},
		{[]float64{-5, -4, -4.5}, 1},
		{[]float64{1, 7, 7, 2}, 1},
	}
	for _, test := range tests {
		v := mat.NewVecDense(len(test.values), test.values)
		if got := MaxVec(v); got != test.want {
			t.Errorf("MaxVec(%v) = %d, want %d", test.values, got, test.want)
		}
		if got := VecMax(v); got != test.values[test.want] {
			t.Errorf("VecMax(%v) = %v, want %v", test.values, got,
				test.values[test.want])
		}
	}
}

func TestFormat(t *testing.T) {
	v := mat.NewVecDense(3, []float64{1, 20, 3})
	if got, want := Format(v.T()), "[1  20  3]"; got != want {
		t.Errorf("Format(%v) = %q, want %q", v.RawVector().Data, got, want)
	}
}

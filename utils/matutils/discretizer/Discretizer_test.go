package discretizer

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/wormrl/environment"
)

var (
	low  = []float64{0, 0, 0, 0, -10000, 0}
	high = []float64{100, 100, 10, 10, 10000, 1500000}
)

func newDiscretizer(t *testing.T, buckets []int) *Discretizer {
	t.Helper()
	spec, err := environment.NewSpec(environment.Observation,
		mat.NewVecDense(len(low), low), mat.NewVecDense(len(high), high),
		environment.Continuous)
	if err != nil {
		t.Fatal(err)
	}
	d, err := New(spec, buckets)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func tens() []int { return []int{10, 10, 10, 10, 10, 10} }

func TestDiscretize(t *testing.T) {
	tests := []struct {
		name string
		obs  []float64
		want []int
	}{
		{"Midpoint", []float64{50, 50, 5, 5, 0, 750000}, []int{5, 5, 5, 5, 5, 5}},
		{"Lower", []float64{0, 0, 0, 0, -10000, 0}, []int{0, 0, 0, 0, 0, 0}},
		{"Upper", high, []int{9, 9, 9, 9, 9, 9}},
		{"BelowLower", []float64{-1, -50, -0.1, -1e9, -20000, -1},
			[]int{0, 0, 0, 0, 0, 0}},
		{"AboveUpper", []float64{101, 1e9, 11, 10.5, 1e6, 2e6},
			[]int{9, 9, 9, 9, 9, 9}},
		{"Mixed", []float64{-5, 200, 1, 9, 5000, 300000},
			[]int{0, 9, 1, 8, 7, 2}},
	}

	d := newDiscretizer(t, tens())
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			obs := mat.NewVecDense(len(test.obs), append([]float64(nil),
				test.obs...))
			got, err := d.Discretize(obs)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("discretize(%v) = %v, want %v", test.obs, got,
					test.want)
			}
		})
	}
}

// The lower bound is subtracted when normalizing. Adding it instead
// would place a zero in the [-10000, 10000] dimension into bucket 0
// rather than the midpoint bucket.
func TestDiscretizeNegativeLowerBound(t *testing.T) {
	d := newDiscretizer(t, tens())
	got, err := d.Discretize(mat.NewVecDense(6, []float64{0, 0, 0, 0, 0, 0}))
	if err != nil {
		t.Fatal(err)
	}
	if got[4] != 5 {
		t.Errorf("zero in [-10000, 10000] discretized to %d, want 5", got[4])
	}
}

func TestDiscretizeInBounds(t *testing.T) {
	buckets := []int{1, 2, 3, 5, 7, 11}
	d := newDiscretizer(t, buckets)

	values := []float64{math.Inf(-1), -1e12, -10000, -1, 0, 0.5, 1, 3, 9.99,
		50, 99.5, 10000, 1e12, math.Inf(1)}
	for _, v := range values {
		obs := mat.NewVecDense(6, []float64{v, v, v, v, v, v})
		got, err := d.Discretize(obs)
		if err != nil {
			t.Fatal(err)
		}
		for i, c := range got {
			if c < 0 || c >= buckets[i] {
				t.Errorf("value %v dimension %d: coordinate %d not in "+
					"[0, %d)", v, i, c, buckets[i])
			}
		}
	}
}

func TestDiscretizeDimensionMismatch(t *testing.T) {
	d := newDiscretizer(t, tens())
	_, err := d.Discretize(mat.NewVecDense(3, []float64{1, 2, 3}))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want %v", err, ErrDimensionMismatch)
	}
}

func TestNewValidation(t *testing.T) {
	spec, err := environment.NewSpec(environment.Observation,
		mat.NewVecDense(2, []float64{0, 0}),
		mat.NewVecDense(2, []float64{1, 1}), environment.Continuous)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := New(spec, []int{10}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want %v", err, ErrDimensionMismatch)
	}
	if _, err := New(spec, []int{10, 0}); err == nil {
		t.Error("expected error for zero buckets")
	}
}

func TestDegenerateDimension(t *testing.T) {
	spec, err := environment.NewSpec(environment.Observation,
		mat.NewVecDense(2, []float64{3, 0}),
		mat.NewVecDense(2, []float64{3, 1}), environment.Continuous)
	if err != nil {
		t.Fatal(err)
	}
	d, err := New(spec, []int{4, 4})
	if err != nil {
		t.Fatal(err)
	}
	got, err := d.Discretize(mat.NewVecDense(2, []float64{10, 1}))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{0, 3}) {
		t.Errorf("discretize = %v, want [0 3]", got)
	}
}

func BenchmarkDiscretize(b *testing.B) {
	spec, _ := environment.NewSpec(environment.Observation,
		mat.NewVecDense(len(low), low), mat.NewVecDense(len(high), high),
		environment.Continuous)
	d, _ := New(spec, tens())
	obs := mat.NewVecDense(6, []float64{50, 50, 5, 5, 0, 750000})

	for i := 0; i < b.N; i++ {
		d.Discretize(obs)
	}
}

func TestDiscretizeNaN(t *testing.T) {
	d := newDiscretizer(t, tens())
	obs := mat.NewVecDense(6, []float64{0, 0, math.NaN(), 0, 0, 0})
	if _, err := d.Discretize(obs); err == nil {
		t.Error("expected error for NaN observation")
	}
}

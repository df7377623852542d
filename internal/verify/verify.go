// Package verify compares computed tensors against reference values.
package verify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/born-ml/clustertrain/internal/tensor"
)

// Report summarises one comparison.
type Report struct {
	Mismatches int     // elements further than the tolerance from the reference
	First      int     // index of the first mismatch, -1 when none
	MaxAbsErr  float64 // largest absolute difference
}

// OK reports whether every element matched.
func (r Report) OK() bool {
	return r.Mismatches == 0
}

// String implements fmt.Stringer.
func (r Report) String() string {
	if r.OK() {
		return fmt.Sprintf("ok (max abs err %.3g)", r.MaxAbsErr)
	}
	return fmt.Sprintf("%d mismatches, first at %d (max abs err %.3g)", r.Mismatches, r.First, r.MaxAbsErr)
}

// Compare checks got against want element by element with an absolute
// tolerance. NaN never matches. Panics if the lengths differ.
func Compare[T tensor.Elem](got []T, want []float32, tol float64) Report {
	if len(got) != len(want) {
		panic(fmt.Sprintf("verify: length mismatch: got %d, want %d", len(got), len(want)))
	}

	g := widen(tensor.ToFloat32Slice(got))
	w := widen(want)

	r := Report{First: -1}
	if len(g) > 0 {
		r.MaxAbsErr = floats.Distance(g, w, math.Inf(1))
	}
	for i := range g {
		if math.IsNaN(g[i]) || !scalar.EqualWithinAbs(g[i], w[i], tol) {
			if r.First < 0 {
				r.First = i
			}
			r.Mismatches++
		}
	}
	return r
}

// Tensor returns the number of elements of got further than tol from
// want.
func Tensor[T tensor.Elem](got []T, want []float32, tol float64) int {
	return Compare(got, want, tol).Mismatches
}

func widen(s []float32) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

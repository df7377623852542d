package matmul

import "fmt"

// Selector indexes the routine catalogue.
type Selector int

// Catalogue entries. Naive is the reference routine and the fallback for
// every selector that cannot serve a call.
const (
	Naive     Selector = iota // ijk loop order
	NaiveIKJ                  // row-axpy loop order
	UnrollK2                  // contraction unrolled by 2
	UnrollK4                  // contraction unrolled by 4
	Unroll1x2                 // 1 row x 2 columns per step
	Unroll1x4
	Unroll1x8
	Unroll2x1
	Unroll4x1
	Unroll8x1
	Unroll2x2
	Unroll2x4
	Unroll4x2
	Unroll4x4
	MatVec // M == 1 only
	Outer  // K == 1 only
	numSelectors
)

var selectorNames = [numSelectors]string{
	Naive:     "naive",
	NaiveIKJ:  "naive_ikj",
	UnrollK2:  "unroll_k2",
	UnrollK4:  "unroll_k4",
	Unroll1x2: "unroll_1x2",
	Unroll1x4: "unroll_1x4",
	Unroll1x8: "unroll_1x8",
	Unroll2x1: "unroll_2x1",
	Unroll4x1: "unroll_4x1",
	Unroll8x1: "unroll_8x1",
	Unroll2x2: "unroll_2x2",
	Unroll2x4: "unroll_2x4",
	Unroll4x2: "unroll_4x2",
	Unroll4x4: "unroll_4x4",
	MatVec:    "matvec",
	Outer:     "outer",
}

// String returns the catalogue name of the selector.
func (s Selector) String() string {
	if s.Valid() {
		return selectorNames[s]
	}
	return fmt.Sprintf("Selector(%d)", int(s))
}

// Valid reports whether s names a catalogue entry.
func (s Selector) Valid() bool {
	return s >= 0 && s < numSelectors
}

// ParseSelector is the inverse of Selector.String.
func ParseSelector(name string) (Selector, error) {
	for s := Naive; s < numSelectors; s++ {
		if selectorNames[s] == name {
			return s, nil
		}
	}
	return Naive, fmt.Errorf("unknown matmul routine %q", name)
}

// Selectors returns every catalogue entry in order.
func Selectors() []Selector {
	out := make([]Selector, numSelectors)
	for i := range out {
		out[i] = Selector(i)
	}
	return out
}

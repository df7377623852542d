package matmul

import (
	"github.com/x448/float16"

	"github.com/born-ml/clustertrain/internal/tensor"
)

// routine is one catalogue entry.
type routine[T tensor.Elem] struct {
	fn       func(a *Args[T], lo, hi int)
	supports func(a *Args[T]) bool // nil means every shape
}

func (r *routine[T]) accepts(a *Args[T]) bool {
	return r.fn != nil && (r.supports == nil || r.supports(a))
}

type catalogue[T tensor.Elem] [numSelectors]routine[T]

func newCatalogue[T tensor.Elem, A tensor.Arith[T]]() *catalogue[T] {
	return &catalogue[T]{
		Naive:     {fn: naive[T, A]},
		NaiveIKJ:  {fn: naiveIKJ[T, A]},
		UnrollK2:  {fn: unrollK2[T, A]},
		UnrollK4:  {fn: unrollK4[T, A]},
		Unroll1x2: {fn: tiled[T, A](1, 2)},
		Unroll1x4: {fn: tiled[T, A](1, 4)},
		Unroll1x8: {fn: tiled[T, A](1, 8)},
		Unroll2x1: {fn: tiled[T, A](2, 1)},
		Unroll4x1: {fn: tiled[T, A](4, 1)},
		Unroll8x1: {fn: tiled[T, A](8, 1)},
		Unroll2x2: {fn: tiled[T, A](2, 2)},
		Unroll2x4: {fn: tiled[T, A](2, 4)},
		Unroll4x2: {fn: tiled[T, A](4, 2)},
		Unroll4x4: {fn: tiled[T, A](4, 4)},
		MatVec: {
			fn:       matVec[T, A],
			supports: func(a *Args[T]) bool { return a.M == 1 },
		},
		Outer: {
			fn:       outer[T, A],
			supports: func(a *Args[T]) bool { return a.K == 1 },
		},
	}
}

var (
	catalogueFP32 = newCatalogue[float32, tensor.F32]()
	catalogueFP16 = newCatalogue[float16.Float16, tensor.F16]()
)

// catalogueFor returns the catalogue instantiated for T.
func catalogueFor[T tensor.Elem]() *catalogue[T] {
	if c, ok := any(catalogueFP32).(*catalogue[T]); ok {
		return c
	}
	return any(catalogueFP16).(*catalogue[T])
}

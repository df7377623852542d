package matmul

import "github.com/born-ml/clustertrain/internal/tensor"

// Every routine computes output rows [lo, hi) and nothing else. Rows are
// the only partitioned dimension, so cores never write the same element.
//
// Routines that keep one accumulator per output element and add products
// in ascending k order round exactly like Naive; the K-unrolled routines
// split the sum and differ by rounding only.

// naive is the reference routine.
func naive[T tensor.Elem, A tensor.Arith[T]](a *Args[T], lo, hi int) {
	var ar A
	sk, sm := bStrides(a)
	for n := lo; n < hi; n++ {
		row := a.A[n*a.K : (n+1)*a.K]
		for m := 0; m < a.M; m++ {
			var acc T
			for k, av := range row {
				acc = ar.MulAdd(acc, av, a.B[k*sk+m*sm])
			}
			a.C[n*a.M+m] = acc
		}
	}
}

// naiveIKJ streams each A element across a whole output row.
func naiveIKJ[T tensor.Elem, A tensor.Arith[T]](a *Args[T], lo, hi int) {
	var ar A
	sk, sm := bStrides(a)
	for n := lo; n < hi; n++ {
		c := a.C[n*a.M : (n+1)*a.M]
		clear(c)
		for k := 0; k < a.K; k++ {
			av := a.A[n*a.K+k]
			bk := k * sk
			for m := range c {
				c[m] = ar.MulAdd(c[m], av, a.B[bk+m*sm])
			}
		}
	}
}

func unrollK2[T tensor.Elem, A tensor.Arith[T]](a *Args[T], lo, hi int) {
	var ar A
	sk, sm := bStrides(a)
	for n := lo; n < hi; n++ {
		row := a.A[n*a.K : (n+1)*a.K]
		for m := 0; m < a.M; m++ {
			bm := m * sm
			var acc0, acc1 T
			k := 0
			for ; k+1 < a.K; k += 2 {
				acc0 = ar.MulAdd(acc0, row[k], a.B[k*sk+bm])
				acc1 = ar.MulAdd(acc1, row[k+1], a.B[(k+1)*sk+bm])
			}
			if k < a.K {
				acc0 = ar.MulAdd(acc0, row[k], a.B[k*sk+bm])
			}
			a.C[n*a.M+m] = ar.Add(acc0, acc1)
		}
	}
}

func unrollK4[T tensor.Elem, A tensor.Arith[T]](a *Args[T], lo, hi int) {
	var ar A
	sk, sm := bStrides(a)
	for n := lo; n < hi; n++ {
		row := a.A[n*a.K : (n+1)*a.K]
		for m := 0; m < a.M; m++ {
			bm := m * sm
			var acc0, acc1, acc2, acc3 T
			k := 0
			for ; k+3 < a.K; k += 4 {
				acc0 = ar.MulAdd(acc0, row[k], a.B[k*sk+bm])
				acc1 = ar.MulAdd(acc1, row[k+1], a.B[(k+1)*sk+bm])
				acc2 = ar.MulAdd(acc2, row[k+2], a.B[(k+2)*sk+bm])
				acc3 = ar.MulAdd(acc3, row[k+3], a.B[(k+3)*sk+bm])
			}
			for ; k < a.K; k++ {
				acc0 = ar.MulAdd(acc0, row[k], a.B[k*sk+bm])
			}
			a.C[n*a.M+m] = ar.Add(ar.Add(acc0, acc1), ar.Add(acc2, acc3))
		}
	}
}

// maxTileElems bounds the register tile of the unrolled routines.
const maxTileElems = 16

// tiled returns a routine computing tr×tc output tiles, loading each A
// element once per tile row and each B element once per tile column.
// Edge tiles shrink to fit.
func tiled[T tensor.Elem, A tensor.Arith[T]](tr, tc int) func(a *Args[T], lo, hi int) {
	return func(a *Args[T], lo, hi int) {
		var ar A
		var acc [maxTileElems]T
		sk, sm := bStrides(a)
		for n0 := lo; n0 < hi; n0 += tr {
			rows := min(tr, hi-n0)
			for m0 := 0; m0 < a.M; m0 += tc {
				cols := min(tc, a.M-m0)
				clear(acc[:])
				for k := 0; k < a.K; k++ {
					bk := k*sk + m0*sm
					for r := 0; r < rows; r++ {
						av := a.A[(n0+r)*a.K+k]
						t := acc[r*tc : r*tc+cols]
						for c := range t {
							t[c] = ar.MulAdd(t[c], av, a.B[bk+c*sm])
						}
					}
				}
				for r := 0; r < rows; r++ {
					off := (n0+r)*a.M + m0
					copy(a.C[off:off+cols], acc[r*tc:r*tc+cols])
				}
			}
		}
	}
}

// matVec specialises M == 1.
func matVec[T tensor.Elem, A tensor.Arith[T]](a *Args[T], lo, hi int) {
	var ar A
	sk, _ := bStrides(a)
	for n := lo; n < hi; n++ {
		var acc T
		for k, av := range a.A[n*a.K : (n+1)*a.K] {
			acc = ar.MulAdd(acc, av, a.B[k*sk])
		}
		a.C[n] = acc
	}
}

// outer specialises K == 1: every output element is a single product.
func outer[T tensor.Elem, A tensor.Arith[T]](a *Args[T], lo, hi int) {
	var ar A
	var zero T
	_, sm := bStrides(a)
	for n := lo; n < hi; n++ {
		av := a.A[n]
		c := a.C[n*a.M : (n+1)*a.M]
		for m := range c {
			c[m] = ar.MulAdd(zero, av, a.B[m*sm])
		}
	}
}

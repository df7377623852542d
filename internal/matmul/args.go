// Package matmul implements the matmul dispatch manager: a fixed catalogue
// of parallel matrix-multiply routines and the policy that picks one for
// each (layer kind, pass kind, precision, core count).
package matmul

import "github.com/born-ml/clustertrain/internal/tensor"

// Args describes one multiply, C = A × B (or A × Bᵗ when TransB).
//
// A is N×K row-major, C is N×M row-major. B is K×M row-major, or M×K
// row-major when TransB is set. N, K and M must be positive; the manager
// does not check. Args is built fresh for each call and never retained.
type Args[T tensor.Elem] struct {
	A, B, C []T
	N, K, M int
	TransB  bool
}

// bStrides returns the distance in B between consecutive k and consecutive m.
func bStrides[T tensor.Elem](a *Args[T]) (sk, sm int) {
	if a.TransB {
		return 1, a.K
	}
	return a.M, 1
}

// Reference computes C = A × B on the calling goroutine with the
// unconditionally correct routine. It is the oracle the catalogue is
// tested against.
func Reference[T tensor.Elem](a *Args[T]) {
	ar := tensor.ArithFor[T]()
	sk, sm := bStrides(a)
	for n := 0; n < a.N; n++ {
		for m := 0; m < a.M; m++ {
			var acc T
			for k := 0; k < a.K; k++ {
				acc = ar.MulAdd(acc, a.A[n*a.K+k], a.B[k*sk+m*sm])
			}
			a.C[n*a.M+m] = acc
		}
	}
}

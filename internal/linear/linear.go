// Package linear implements the training kernels of a fully-connected
// layer on a core team.
//
// With Ci = Input.Dim and Co = Output.Dim the weights are a Co×Ci row-major
// matrix, carried by a Coeff blob with C = Co, H = 1 and W = Ci.
package linear

import (
	"github.com/born-ml/clustertrain/internal/matmul"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Args describes one fully-connected layer.
type Args[T tensor.Elem] struct {
	Input  *tensor.Blob[T]
	Coeff  *tensor.Blob[T]
	Output *tensor.Blob[T]

	// SkipInGrad leaves Input.Diff untouched in Backward.
	SkipInGrad bool

	MatmulFW, MatmulWG, MatmulIG matmul.Selector
}

func run[T tensor.Elem](mm *matmul.Manager[T], pass matmul.PassKind, sel matmul.Selector, args *matmul.Args[T]) {
	mm.Run(mm.TagFor(matmul.Linear, pass), sel, args)
}

// Forward computes Output = Coeff × Input, a Co×Ci by Ci×1 multiply.
func Forward[T tensor.Elem](mm *matmul.Manager[T], args *Args[T]) {
	run(mm, matmul.Forward, args.MatmulFW, &matmul.Args[T]{
		A: args.Coeff.Data, B: args.Input.Data, C: args.Output.Data,
		N: args.Output.Dim, K: args.Input.Dim, M: 1,
	})
}

// Backward computes the weight gradient and then, unless SkipInGrad is
// set, the input gradient.
func Backward[T tensor.Elem](mm *matmul.Manager[T], args *Args[T]) {
	BackwardParamGrads(mm, args)
	if !args.SkipInGrad {
		BackwardInputGrads(mm, args)
	}
}

// BackwardParamGrads writes Coeff.Diff = Output.Diff × Inputᵗ, the outer
// product of the output gradient and the input.
func BackwardParamGrads[T tensor.Elem](mm *matmul.Manager[T], args *Args[T]) {
	run(mm, matmul.WeightGrad, args.MatmulWG, &matmul.Args[T]{
		A: args.Output.Diff, B: args.Input.Data, C: args.Coeff.Diff,
		N: args.Output.Dim, K: 1, M: args.Input.Dim,
	})
}

// BackwardInputGrads writes Input.Diff = Output.Diffᵗ × Coeff.
//
// The product has a single row, so the whole pass lands on one core.
func BackwardInputGrads[T tensor.Elem](mm *matmul.Manager[T], args *Args[T]) {
	run(mm, matmul.InputGrad, args.MatmulIG, &matmul.Args[T]{
		A: args.Output.Diff, B: args.Coeff.Data, C: args.Input.Diff,
		N: 1, K: args.Output.Dim, M: args.Input.Dim,
	})
}

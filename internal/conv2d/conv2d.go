package conv2d

import (
	"github.com/born-ml/clustertrain/internal/im2col"
	"github.com/born-ml/clustertrain/internal/matmul"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Forward computes args.Output.Data from the input and the weights.
//
// With UseIm2col the input is unrolled into I2CBuffer and the layer becomes
// one multiply:
//
//	CHW: Output[Cout][Hout*Wout] = Coeff[Cout][Cin*Kh*Kw] × Patchesᵗ
//	HWC: Output[Hout*Wout][Cout] = Patches[Hout*Wout][Kh*Kw*Cin] × Coeffᵗ
//
// Otherwise the direct loop nest runs, split over output channels.
func Forward[T tensor.Elem](k *Kernel[T], args *Args[T]) {
	g := args.Geometry()
	if !args.UseIm2col {
		naiveForward(k.team(), g, args.Input.Data, args.Coeff.Data, args.Output.Data)
		return
	}

	patches := args.I2CBuffer[:g.Hout*g.Wout*g.PatchLen()]
	k.stager.Forward(g, args.Input.Data, patches, args.UseDMAIm2col)

	mm := &matmul.Args[T]{
		A: args.Coeff.Data, B: patches, C: args.Output.Data,
		N: g.Cout, K: g.PatchLen(), M: g.Hout * g.Wout,
		TransB: true,
	}
	if g.HWC {
		mm = &matmul.Args[T]{
			A: patches, B: args.Coeff.Data, C: args.Output.Data,
			N: g.Hout * g.Wout, K: g.PatchLen(), M: g.Cout,
			TransB: true,
		}
	}
	k.run(matmul.Forward, args.MatmulFW, mm)
}

// Backward computes the weight gradient and then, unless SkipInGrad is
// set, the input gradient.
func Backward[T tensor.Elem](k *Kernel[T], args *Args[T]) {
	BackwardParamGrads(k, args)
	if !args.SkipInGrad {
		BackwardInputGrads(k, args)
	}
}

// BackwardParamGrads writes args.Coeff.Diff from the input and the output
// gradient.
//
//	CHW: dW[Cout][Cin*Kh*Kw] = dY[Cout][Hout*Wout] × Patches
//	HWC: dW[Cout][Kh*Kw*Cin] = dYᵗ × Patches, dY transposed into BTBuffer
func BackwardParamGrads[T tensor.Elem](k *Kernel[T], args *Args[T]) {
	g := args.Geometry()
	if !args.UseIm2col {
		naiveWeightGrad(k.team(), g, args.Input.Data, args.Output.Diff, args.Coeff.Diff)
		return
	}

	p := g.Hout * g.Wout
	patches := args.I2CBuffer[:p*g.PatchLen()]
	k.stager.Forward(g, args.Input.Data, patches, args.UseDMAIm2col)

	outDiff := args.Output.Diff
	if g.HWC {
		bt := args.BTBuffer[:g.Cout*p]
		im2col.Transpose(k.team(), outDiff, bt, p, g.Cout)
		outDiff = bt
	}

	k.run(matmul.WeightGrad, args.MatmulWG, &matmul.Args[T]{
		A: outDiff, B: patches, C: args.Coeff.Diff,
		N: g.Cout, K: p, M: g.PatchLen(),
	})
}

// BackwardInputGrads writes args.Input.Diff from the weights and the
// output gradient.
//
// The weights are rotated by 180 degrees and transposed into BTBuffer, the
// output gradient is unrolled against that view into I2CBuffer, and:
//
//	CHW: dX[Cin][Hin*Win] = Rotated[Cin][Cout*Kh*Kw] × Patchesᵗ
//	HWC: dX[Hin*Win][Cin] = Patches[Hin*Win][Kh*Kw*Cout] × Rotatedᵗ
func BackwardInputGrads[T tensor.Elem](k *Kernel[T], args *Args[T]) {
	g := args.Geometry()
	if !args.UseIm2col {
		naiveInputGrad(k.team(), g, args.Coeff.Data, args.Output.Diff, args.Input.Diff)
		return
	}

	q := g.Hin * g.Win
	rotated := args.BTBuffer[:g.Cin*g.GradPatchLen()]
	im2col.BlockTranspose(k.team(), g, args.Coeff.Data, rotated)

	patches := args.I2CBuffer[:q*g.GradPatchLen()]
	k.stager.InputGrad(g, args.Output.Diff, patches, args.UseDMAIm2col)

	mm := &matmul.Args[T]{
		A: rotated, B: patches, C: args.Input.Diff,
		N: g.Cin, K: g.GradPatchLen(), M: q,
		TransB: true,
	}
	if g.HWC {
		mm = &matmul.Args[T]{
			A: patches, B: rotated, C: args.Input.Diff,
			N: q, K: g.GradPatchLen(), M: g.Cin,
			TransB: true,
		}
	}
	k.run(matmul.InputGrad, args.MatmulIG, mm)
}

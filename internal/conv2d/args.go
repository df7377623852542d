// Package conv2d implements the training kernels of a 2D convolution layer
// on a core team: forward, weight gradient and input gradient.
package conv2d

import (
	"github.com/born-ml/clustertrain/internal/im2col"
	"github.com/born-ml/clustertrain/internal/matmul"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Args describes one convolution layer.
//
// Weights are [Cout][Cin][Kh][Kw] in CHW mode and [Cout][Kh][Kw][Cin] in
// HWC mode. The Coeff blob carries C = Cin*Cout, H = Kh and W = Kw; Cin and
// Cout are read from the Input and Output blobs.
//
// I2CBuffer must hold Geometry().BufferSize() elements and BTBuffer
// Geometry().TransposeBufferSize() elements whenever UseIm2col is set.
// Both are scratch: their contents are undefined after any pass.
//
// Shapes are a caller contract. Nothing here re-checks them.
type Args[T tensor.Elem] struct {
	Input  *tensor.Blob[T]
	Coeff  *tensor.Blob[T]
	Output *tensor.Blob[T]

	Lpad, Rpad, Upad, Dpad int
	StrideH, StrideW       int
	HWC                    bool

	I2CBuffer []T
	BTBuffer  []T

	// SkipInGrad leaves Input.Diff untouched in Backward. The first layer
	// of a network sets it because its input has no gradient.
	SkipInGrad bool

	MatmulFW, MatmulWG, MatmulIG matmul.Selector

	UseIm2col    bool
	UseDMAIm2col bool
}

// Geometry returns the im2col geometry of the layer.
func (a *Args[T]) Geometry() im2col.Geometry {
	return im2col.Geometry{
		Cin: a.Input.C, Hin: a.Input.H, Win: a.Input.W,
		Cout: a.Output.C, Hout: a.Output.H, Wout: a.Output.W,
		Kh: a.Coeff.H, Kw: a.Coeff.W,
		Lpad: a.Lpad, Rpad: a.Rpad, Upad: a.Upad, Dpad: a.Dpad,
		StrideH: max(a.StrideH, 1), StrideW: max(a.StrideW, 1),
		HWC: a.HWC,
	}
}

// Package im2col rewrites sliding-window convolution access into dense
// patch matrices so that every convolution pass becomes one multiply.
package im2col

import "fmt"

// Geometry describes one convolution.
//
// Hout and Wout are taken as given: the caller sized the output tensor for
// the declared kernel, stride and padding, and no shape inference happens
// here.
type Geometry struct {
	Cin, Hin, Win    int
	Cout, Hout, Wout int
	Kh, Kw           int

	Lpad, Rpad, Upad, Dpad int
	StrideH, StrideW       int

	HWC bool
}

// OutputSize returns the output extents implied by the input, kernel,
// padding and stride.
func (g Geometry) OutputSize() (h, w int) {
	h = (g.Hin+g.Upad+g.Dpad-g.Kh)/g.StrideH + 1
	w = (g.Win+g.Lpad+g.Rpad-g.Kw)/g.StrideW + 1
	return h, w
}

// PatchLen is the length of one forward patch, Cin*Kh*Kw.
func (g Geometry) PatchLen() int {
	return g.Cin * g.Kh * g.Kw
}

// GradPatchLen is the length of one input-gradient patch, Cout*Kh*Kw.
func (g Geometry) GradPatchLen() int {
	return g.Cout * g.Kh * g.Kw
}

// BufferSize returns the im2col buffer length needed by every pass.
func (g Geometry) BufferSize() int {
	return max(g.Hout*g.Wout*g.PatchLen(), g.Hin*g.Win*g.GradPatchLen())
}

// TransposeBufferSize returns the block-transpose buffer length needed by
// every pass: the rotated weights, or in HWC the transposed output gradient.
func (g Geometry) TransposeBufferSize() int {
	n := g.Cin * g.Cout * g.Kh * g.Kw
	if g.HWC {
		n = max(n, g.Cout*g.Hout*g.Wout)
	}
	return n
}

// String implements fmt.Stringer.
func (g Geometry) String() string {
	layout := "CHW"
	if g.HWC {
		layout = "HWC"
	}
	return fmt.Sprintf("%dx%dx%d -> %dx%dx%d k=%dx%d pad=[%d,%d,%d,%d] stride=%dx%d %s",
		g.Cin, g.Hin, g.Win, g.Cout, g.Hout, g.Wout, g.Kh, g.Kw,
		g.Lpad, g.Rpad, g.Upad, g.Dpad, g.StrideH, g.StrideW, layout)
}

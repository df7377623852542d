package im2col

import (
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// BlockTranspose writes the rotated weight view used by the input-gradient
// pass into dst, leaving coeff untouched.
//
// CHW weights [Cout][Cin][Kh][Kw] become [Cin][Cout][Kh][Kw], HWC weights
// [Cout][Kh][Kw][Cin] become [Cin][Kh][Kw][Cout], both with the kernel
// rotated by 180 degrees.
func BlockTranspose[T tensor.Elem](team *parallel.Team, g Geometry, coeff, dst []T) {
	khw := g.Kh * g.Kw
	team.For(g.Cin, func(ci int) {
		for co := 0; co < g.Cout; co++ {
			for kh := 0; kh < g.Kh; kh++ {
				for kw := 0; kw < g.Kw; kw++ {
					rot := (g.Kh-1-kh)*g.Kw + (g.Kw - 1 - kw)
					if g.HWC {
						dst[(ci*khw+kh*g.Kw+kw)*g.Cout+co] = coeff[(co*khw+rot)*g.Cin+ci]
					} else {
						dst[(ci*g.Cout+co)*khw+kh*g.Kw+kw] = coeff[(co*g.Cin+ci)*khw+rot]
					}
				}
			}
		}
	})
}

// transposeBlock is the tile edge of Transpose.
const transposeBlock = 8

// Transpose writes the cols×rows transpose of the rows×cols matrix src
// into dst, tile by tile. Destination rows are split across the team.
func Transpose[T tensor.Elem](team *parallel.Team, src, dst []T, rows, cols int) {
	team.ForRange(cols, func(lo, hi int) {
		for c0 := lo; c0 < hi; c0 += transposeBlock {
			cEnd := min(c0+transposeBlock, hi)
			for r0 := 0; r0 < rows; r0 += transposeBlock {
				rEnd := min(r0+transposeBlock, rows)
				for c := c0; c < cEnd; c++ {
					for r := r0; r < rEnd; r++ {
						dst[c*rows+r] = src[r*cols+c]
					}
				}
			}
		}
	})
}

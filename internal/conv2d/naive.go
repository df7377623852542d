package conv2d

import (
	"github.com/born-ml/clustertrain/internal/im2col"
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// The direct loop nests below need no scratch buffer. Each core owns whole
// output channels (forward, weight gradient) or input channels (input
// gradient), so no element is written by two cores.

// weightIndex returns the flat offset of W[co][ci][kh][kw] in the weight
// layout of g.
func weightIndex(g im2col.Geometry, co, ci, kh, kw int) int {
	if g.HWC {
		return ((co*g.Kh+kh)*g.Kw+kw)*g.Cin + ci
	}
	return ((co*g.Cin+ci)*g.Kh+kh)*g.Kw + kw
}

// forEachTap calls f for every (input, output) position pair connected by
// the kernel tap (kh, kw).
func forEachTap(g im2col.Geometry, kh, kw int, f func(h, w, oh, ow int)) {
	for oh := 0; oh < g.Hout; oh++ {
		h := oh*g.StrideH - g.Upad + kh
		if h < 0 || h >= g.Hin {
			continue
		}
		for ow := 0; ow < g.Wout; ow++ {
			w := ow*g.StrideW - g.Lpad + kw
			if w < 0 || w >= g.Win {
				continue
			}
			f(h, w, oh, ow)
		}
	}
}

// naiveForward computes out[co][oh][ow] = Σ W[co][ci][kh][kw]·in[ci][h][w].
func naiveForward[T tensor.Elem](team *parallel.Team, g im2col.Geometry, in, coeff, out []T) {
	ar := tensor.ArithFor[T]()
	layout := tensor.LayoutOf(g.HWC)

	team.For(g.Cout, func(co int) {
		for oh := 0; oh < g.Hout; oh++ {
			for ow := 0; ow < g.Wout; ow++ {
				var acc T
				for ci := 0; ci < g.Cin; ci++ {
					for kh := 0; kh < g.Kh; kh++ {
						h := oh*g.StrideH - g.Upad + kh
						if h < 0 || h >= g.Hin {
							continue
						}
						for kw := 0; kw < g.Kw; kw++ {
							w := ow*g.StrideW - g.Lpad + kw
							if w < 0 || w >= g.Win {
								continue
							}
							acc = ar.MulAdd(acc,
								coeff[weightIndex(g, co, ci, kh, kw)],
								in[layout.Index(ci, h, w, g.Cin, g.Hin, g.Win)])
						}
					}
				}
				out[layout.Index(co, oh, ow, g.Cout, g.Hout, g.Wout)] = acc
			}
		}
	})
}

// naiveWeightGrad computes dW[co][ci][kh][kw] = Σ dY[co][oh][ow]·in[ci][h][w].
func naiveWeightGrad[T tensor.Elem](team *parallel.Team, g im2col.Geometry, in, outDiff, coeffDiff []T) {
	ar := tensor.ArithFor[T]()
	layout := tensor.LayoutOf(g.HWC)

	team.For(g.Cout, func(co int) {
		for ci := 0; ci < g.Cin; ci++ {
			for kh := 0; kh < g.Kh; kh++ {
				for kw := 0; kw < g.Kw; kw++ {
					var acc T
					forEachTap(g, kh, kw, func(h, w, oh, ow int) {
						acc = ar.MulAdd(acc,
							outDiff[layout.Index(co, oh, ow, g.Cout, g.Hout, g.Wout)],
							in[layout.Index(ci, h, w, g.Cin, g.Hin, g.Win)])
					})
					coeffDiff[weightIndex(g, co, ci, kh, kw)] = acc
				}
			}
		}
	})
}

// naiveInputGrad scatters every dY[co][oh][ow]·W[co][ci][kh][kw] into
// dX[ci][h][w], starting from zero.
func naiveInputGrad[T tensor.Elem](team *parallel.Team, g im2col.Geometry, coeff, outDiff, inDiff []T) {
	ar := tensor.ArithFor[T]()
	layout := tensor.LayoutOf(g.HWC)

	team.For(g.Cin, func(ci int) {
		var zero T
		for h := 0; h < g.Hin; h++ {
			for w := 0; w < g.Win; w++ {
				inDiff[layout.Index(ci, h, w, g.Cin, g.Hin, g.Win)] = zero
			}
		}
		for co := 0; co < g.Cout; co++ {
			for kh := 0; kh < g.Kh; kh++ {
				for kw := 0; kw < g.Kw; kw++ {
					wv := coeff[weightIndex(g, co, ci, kh, kw)]
					forEachTap(g, kh, kw, func(h, w, oh, ow int) {
						i := layout.Index(ci, h, w, g.Cin, g.Hin, g.Win)
						inDiff[i] = ar.MulAdd(inDiff[i], wv,
							outDiff[layout.Index(co, oh, ow, g.Cout, g.Hout, g.Wout)])
					})
				}
			}
		}
	})
}

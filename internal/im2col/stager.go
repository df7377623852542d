package im2col

import (
	"github.com/born-ml/clustertrain/internal/memory"
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Stager materialises patch matrices on a core team.
//
// Patch rows are split across cores the same way the matmul manager
// splits output rows. The destination buffer must not alias the source.
//
// When a call is staged the source is taken to live in L2 and the
// destination in L1: every contiguous in-bounds span of a patch is moved
// by one synchronous DMA transfer and padding is written locally as zero.
// Unstaged calls assume both sides are already in L1 and copy directly.
type Stager[T tensor.Elem] struct {
	team *parallel.Team
	dma  *memory.DMA
}

// NewStager returns a stager forking on team and moving staged spans
// through dma.
func NewStager[T tensor.Elem](team *parallel.Team, dma *memory.DMA) *Stager[T] {
	return &Stager[T]{team: team, dma: dma}
}

// DMA returns the transfer engine used for staged calls.
func (s *Stager[T]) DMA() *memory.DMA {
	return s.dma
}

func (s *Stager[T]) move(dst, src []T, staged bool) {
	if staged {
		memory.Copy(s.dma, dst, src)
		return
	}
	copy(dst, src)
}

// validSpan returns the kernel offsets [lo, hi) whose source coordinate
// start+k falls inside [0, limit).
func validSpan(start, k, limit int) (lo, hi int) {
	lo = max(0, -start)
	hi = min(k, limit-start)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Forward writes the patch matrix of src into dst.
//
// dst is (Hout*Wout) × PatchLen. In CHW a patch is ordered (ci, kh, kw),
// in HWC (kh, kw, ci), matching the weight layout of each mode.
func (s *Stager[T]) Forward(g Geometry, src, dst []T, staged bool) {
	staged = staged && memory.DMAEnabled
	rows := g.Hout * g.Wout
	cols := g.PatchLen()

	s.team.ForRange(rows, func(lo, hi int) {
		for p := lo; p < hi; p++ {
			oh, ow := p/g.Wout, p%g.Wout
			row := dst[p*cols : (p+1)*cols]
			h0 := oh*g.StrideH - g.Upad
			w0 := ow*g.StrideW - g.Lpad
			kwLo, kwHi := validSpan(w0, g.Kw, g.Win)

			if g.HWC {
				s.forwardRowHWC(g, src, row, h0, w0, kwLo, kwHi, staged)
			} else {
				s.forwardRowCHW(g, src, row, h0, w0, kwLo, kwHi, staged)
			}
		}
	})
}

func (s *Stager[T]) forwardRowCHW(g Geometry, src, row []T, h0, w0, kwLo, kwHi int, staged bool) {
	for ci := 0; ci < g.Cin; ci++ {
		for kh := 0; kh < g.Kh; kh++ {
			seg := row[(ci*g.Kh+kh)*g.Kw : (ci*g.Kh+kh+1)*g.Kw]
			h := h0 + kh
			if h < 0 || h >= g.Hin || kwLo == kwHi {
				clear(seg)
				continue
			}
			clear(seg[:kwLo])
			clear(seg[kwHi:])
			off := (ci*g.Hin+h)*g.Win + w0
			s.move(seg[kwLo:kwHi], src[off+kwLo:off+kwHi], staged)
		}
	}
}

func (s *Stager[T]) forwardRowHWC(g Geometry, src, row []T, h0, w0, kwLo, kwHi int, staged bool) {
	span := g.Kw * g.Cin
	for kh := 0; kh < g.Kh; kh++ {
		seg := row[kh*span : (kh+1)*span]
		h := h0 + kh
		if h < 0 || h >= g.Hin || kwLo == kwHi {
			clear(seg)
			continue
		}
		clear(seg[:kwLo*g.Cin])
		clear(seg[kwHi*g.Cin:])
		off := (h*g.Win + w0) * g.Cin
		s.move(seg[kwLo*g.Cin:kwHi*g.Cin], src[off+kwLo*g.Cin:off+kwHi*g.Cin], staged)
	}
}

// gradCoord maps an input coordinate and a rotated kernel offset to the
// output-gradient coordinate it reads, or -1 when that position lies on a
// stride hole or outside the output.
func gradCoord(pos, kRot, pad, k, stride, out int) int {
	y := pos + kRot + pad - (k - 1)
	if y < 0 || y%stride != 0 || y/stride >= out {
		return -1
	}
	return y / stride
}

// InputGrad writes the patch matrix of the output gradient seen through the
// rotated kernel into dst.
//
// dst is (Hin*Win) × GradPatchLen, ordered (co, kh', kw') in CHW and
// (kh', kw', co) in HWC, where kh' = Kh-1-kh. Multiplying it by the
// block-transposed weights yields the input gradient.
func (s *Stager[T]) InputGrad(g Geometry, outDiff, dst []T, staged bool) {
	staged = staged && memory.DMAEnabled
	rows := g.Hin * g.Win
	cols := g.GradPatchLen()

	s.team.ForRange(rows, func(lo, hi int) {
		for p := lo; p < hi; p++ {
			h, w := p/g.Win, p%g.Win
			row := dst[p*cols : (p+1)*cols]
			if g.HWC {
				s.inputGradRowHWC(g, outDiff, row, h, w, staged)
			} else {
				s.inputGradRowCHW(g, outDiff, row, h, w, staged)
			}
		}
	})
}

func (s *Stager[T]) inputGradRowCHW(g Geometry, outDiff, row []T, h, w int, staged bool) {
	var zero T
	for co := 0; co < g.Cout; co++ {
		for kh := 0; kh < g.Kh; kh++ {
			seg := row[(co*g.Kh+kh)*g.Kw : (co*g.Kh+kh+1)*g.Kw]
			oh := gradCoord(h, kh, g.Upad, g.Kh, g.StrideH, g.Hout)
			if oh < 0 {
				clear(seg)
				continue
			}
			plane := outDiff[(co*g.Hout+oh)*g.Wout : (co*g.Hout+oh+1)*g.Wout]

			if g.StrideW == 1 {
				// Unit stride: the valid offsets form one contiguous span.
				x0 := w + g.Lpad - (g.Kw - 1)
				lo, hi := validSpan(x0, g.Kw, g.Wout)
				clear(seg[:lo])
				clear(seg[hi:])
				if lo < hi {
					s.move(seg[lo:hi], plane[x0+lo:x0+hi], staged)
				}
				continue
			}

			for kw := range seg {
				ow := gradCoord(w, kw, g.Lpad, g.Kw, g.StrideW, g.Wout)
				if ow < 0 {
					seg[kw] = zero
					continue
				}
				s.move(seg[kw:kw+1], plane[ow:ow+1], staged)
			}
		}
	}
}

func (s *Stager[T]) inputGradRowHWC(g Geometry, outDiff, row []T, h, w int, staged bool) {
	for kh := 0; kh < g.Kh; kh++ {
		oh := gradCoord(h, kh, g.Upad, g.Kh, g.StrideH, g.Hout)
		for kw := 0; kw < g.Kw; kw++ {
			seg := row[(kh*g.Kw+kw)*g.Cout : (kh*g.Kw+kw+1)*g.Cout]
			ow := gradCoord(w, kw, g.Lpad, g.Kw, g.StrideW, g.Wout)
			if oh < 0 || ow < 0 {
				clear(seg)
				continue
			}
			off := (oh*g.Wout + ow) * g.Cout
			s.move(seg, outDiff[off:off+g.Cout], staged)
		}
	}
}

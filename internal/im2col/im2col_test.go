package im2col

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/clustertrain/internal/memory"
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

func newTestStager(t *testing.T, cores int) *Stager[float32] {
	t.Helper()
	team := parallel.NewTeam(cores)
	t.Cleanup(team.Close)
	return NewStager[float32](team, memory.NewDMA())
}

func geometry(cin, hin, win, cout, kh, kw, l, r, u, d, sh, sw int, hwc bool) Geometry {
	g := Geometry{
		Cin: cin, Hin: hin, Win: win, Cout: cout, Kh: kh, Kw: kw,
		Lpad: l, Rpad: r, Upad: u, Dpad: d, StrideH: sh, StrideW: sw, HWC: hwc,
	}
	g.Hout, g.Wout = g.OutputSize()
	return g
}

func iota32(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i + 1)
	}
	return out
}

func TestForward_NoPadding(t *testing.T) {
	s := newTestStager(t, 2)
	g := geometry(1, 3, 3, 1, 2, 2, 0, 0, 0, 0, 1, 1, false)

	// 1 2 3
	// 4 5 6
	// 7 8 9
	dst := make([]float32, g.Hout*g.Wout*g.PatchLen())
	s.Forward(g, iota32(9), dst, false)

	expected := []float32{
		1, 2, 4, 5,
		2, 3, 5, 6,
		4, 5, 7, 8,
		5, 6, 8, 9,
	}
	assert.Equal(t, expected, dst)
}

func TestForward_PaddingWritesZeros(t *testing.T) {
	s := newTestStager(t, 3)
	g := geometry(1, 2, 2, 1, 3, 3, 1, 1, 1, 1, 1, 1, false)
	require.Equal(t, 2, g.Hout)
	require.Equal(t, 2, g.Wout)

	dst := make([]float32, g.BufferSize())
	for i := range dst {
		dst[i] = -1 // stale data from a previous layer
	}
	s.Forward(g, iota32(4), dst, false)

	expected := []float32{
		0, 0, 0, 0, 1, 2, 0, 3, 4,
		0, 0, 0, 1, 2, 0, 3, 4, 0,
		0, 1, 2, 0, 3, 4, 0, 0, 0,
		1, 2, 0, 3, 4, 0, 0, 0, 0,
	}
	assert.Equal(t, expected, dst[:len(expected)])
}

func TestForward_AsymmetricPaddingAndStride(t *testing.T) {
	s := newTestStager(t, 4)
	// 1x4x5 input, 2x3 kernel, stride 2x2, pad left 2 / up 1.
	g := geometry(1, 4, 5, 1, 2, 3, 2, 0, 1, 0, 2, 2, false)
	src := iota32(20)
	dst := make([]float32, g.Hout*g.Wout*g.PatchLen())
	s.Forward(g, src, dst, false)

	for p := 0; p < g.Hout*g.Wout; p++ {
		oh, ow := p/g.Wout, p%g.Wout
		for kh := 0; kh < g.Kh; kh++ {
			for kw := 0; kw < g.Kw; kw++ {
				h := oh*g.StrideH - g.Upad + kh
				w := ow*g.StrideW - g.Lpad + kw
				want := float32(0)
				if h >= 0 && h < g.Hin && w >= 0 && w < g.Win {
					want = src[h*g.Win+w]
				}
				assert.Equal(t, want, dst[p*g.PatchLen()+kh*g.Kw+kw], "p=%d kh=%d kw=%d", p, kh, kw)
			}
		}
	}
}

// chwToHWC permutes a C×H×W map into H×W×C order.
func chwToHWC(src []float32, c, h, w int) []float32 {
	out := make([]float32, len(src))
	for ci := 0; ci < c; ci++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out[tensor.HWC.Index(ci, y, x, c, h, w)] = src[tensor.CHW.Index(ci, y, x, c, h, w)]
			}
		}
	}
	return out
}

func TestForward_HWCMatchesCHW(t *testing.T) {
	s := newTestStager(t, 3)
	r := rand.New(rand.NewPCG(1, 2))

	chw := geometry(3, 5, 4, 2, 3, 2, 1, 0, 0, 1, 1, 2, false)
	hwc := chw
	hwc.HWC = true

	src := make([]float32, 3*5*4)
	for i := range src {
		src[i] = r.Float32()
	}
	a := make([]float32, chw.BufferSize())
	b := make([]float32, hwc.BufferSize())
	s.Forward(chw, src, a, false)
	s.Forward(hwc, chwToHWC(src, 3, 5, 4), b, false)

	k := chw.PatchLen()
	for p := 0; p < chw.Hout*chw.Wout; p++ {
		for ci := 0; ci < chw.Cin; ci++ {
			for kh := 0; kh < chw.Kh; kh++ {
				for kw := 0; kw < chw.Kw; kw++ {
					got := b[p*k+(kh*chw.Kw+kw)*chw.Cin+ci]
					want := a[p*k+(ci*chw.Kh+kh)*chw.Kw+kw]
					require.Equal(t, want, got)
				}
			}
		}
	}
}

func TestForward_StagedMatchesDirect(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))

	for _, hwc := range []bool{false, true} {
		s := newTestStager(t, 4)
		g := geometry(2, 6, 6, 3, 3, 3, 1, 1, 1, 1, 1, 1, hwc)
		src := make([]float32, 2*6*6)
		for i := range src {
			src[i] = r.Float32()
		}

		direct := make([]float32, g.BufferSize())
		staged := make([]float32, g.BufferSize())
		s.Forward(g, src, direct, false)
		assert.Equal(t, memory.Stats{}, s.DMA().Stats(), "unstaged calls issue no transfers")

		s.Forward(g, src, staged, true)
		assert.Equal(t, direct, staged)

		if memory.DMAEnabled {
			st := s.DMA().Stats()
			assert.Positive(t, st.Transfers)
			// Every non-padding element moves exactly once.
			var nonzero int64
			for _, v := range staged {
				if v != 0 {
					nonzero++
				}
			}
			assert.Equal(t, nonzero*4, st.Bytes)
		}
	}
}

// inputGradRef evaluates the rotated-kernel patch entry directly from the
// forward index relation h = oh*s - pad + kh.
func inputGradRef(g Geometry, outDiff []float32, h, w, co, khRot, kwRot int) float32 {
	kh, kw := g.Kh-1-khRot, g.Kw-1-kwRot
	for oh := 0; oh < g.Hout; oh++ {
		for ow := 0; ow < g.Wout; ow++ {
			if oh*g.StrideH-g.Upad+kh == h && ow*g.StrideW-g.Lpad+kw == w {
				layout := tensor.LayoutOf(g.HWC)
				return outDiff[layout.Index(co, oh, ow, g.Cout, g.Hout, g.Wout)]
			}
		}
	}
	return 0
}

func TestInputGrad_MatchesDefinition(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	cases := []Geometry{
		geometry(2, 4, 4, 3, 3, 3, 0, 0, 0, 0, 1, 1, false),
		geometry(2, 5, 5, 2, 3, 3, 1, 1, 1, 1, 1, 1, false),
		geometry(1, 7, 6, 2, 3, 2, 2, 0, 1, 0, 2, 2, false),
		geometry(2, 5, 5, 2, 3, 3, 1, 1, 1, 1, 2, 1, true),
		geometry(3, 4, 6, 2, 2, 3, 0, 1, 1, 0, 1, 2, true),
	}

	for _, g := range cases {
		for _, staged := range []bool{false, true} {
			s := newTestStager(t, 3)
			outDiff := make([]float32, g.Cout*g.Hout*g.Wout)
			for i := range outDiff {
				outDiff[i] = r.Float32() + 0.5
			}
			dst := make([]float32, g.BufferSize())
			s.InputGrad(g, outDiff, dst, staged)

			k := g.GradPatchLen()
			for p := 0; p < g.Hin*g.Win; p++ {
				h, w := p/g.Win, p%g.Win
				for co := 0; co < g.Cout; co++ {
					for kh := 0; kh < g.Kh; kh++ {
						for kw := 0; kw < g.Kw; kw++ {
							col := (co*g.Kh+kh)*g.Kw + kw
							if g.HWC {
								col = (kh*g.Kw+kw)*g.Cout + co
							}
							want := inputGradRef(g, outDiff, h, w, co, kh, kw)
							require.Equal(t, want, dst[p*k+col], "%s p=%d co=%d k=(%d,%d)", g, p, co, kh, kw)
						}
					}
				}
			}
		}
	}
}

func TestBlockTranspose(t *testing.T) {
	team := parallel.NewTeam(2)
	defer team.Close()

	// Cout=2, Cin=1, 2x2 kernel, CHW.
	g := geometry(1, 3, 3, 2, 2, 2, 0, 0, 0, 0, 1, 1, false)
	coeff := []float32{
		1, 2, 3, 4, // co=0
		5, 6, 7, 8, // co=1
	}
	snapshot := append([]float32(nil), coeff...)
	dst := make([]float32, g.TransposeBufferSize())
	BlockTranspose(team, g, coeff, dst)

	assert.Equal(t, []float32{4, 3, 2, 1, 8, 7, 6, 5}, dst)
	assert.Equal(t, snapshot, coeff, "weights must not be mutated")

	// Same weights in HWC with Cin=2, Cout=1, 1x2 kernel: [co][kh][kw][ci].
	g = geometry(2, 3, 3, 1, 1, 2, 0, 0, 0, 0, 1, 1, true)
	coeff = []float32{1, 2, 3, 4} // (kw0: ci0=1, ci1=2), (kw1: ci0=3, ci1=4)
	dst = make([]float32, 4)
	BlockTranspose(team, g, coeff, dst)
	// [ci][kh][kw'][co] with kw' = 1-kw
	assert.Equal(t, []float32{3, 1, 4, 2}, dst)
}

func TestTranspose(t *testing.T) {
	team := parallel.NewTeam(3)
	defer team.Close()

	rows, cols := 11, 19
	src := iota32(rows * cols)
	dst := make([]float32, rows*cols)
	Transpose(team, src, dst, rows, cols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			require.Equal(t, src[r*cols+c], dst[c*rows+r])
		}
	}
}

func TestGeometry_Sizes(t *testing.T) {
	g := geometry(2, 5, 5, 4, 3, 3, 1, 1, 1, 1, 2, 2, false)
	assert.Equal(t, 3, g.Hout)
	assert.Equal(t, 3, g.Wout)
	assert.Equal(t, 18, g.PatchLen())
	assert.Equal(t, 36, g.GradPatchLen())
	assert.Equal(t, max(9*18, 25*36), g.BufferSize())
	assert.Equal(t, 72, g.TransposeBufferSize())

	g.HWC = true
	g.Cin, g.Kh, g.Kw = 1, 1, 1
	assert.Equal(t, 36, g.TransposeBufferSize())
	assert.Contains(t, g.String(), "HWC")
}

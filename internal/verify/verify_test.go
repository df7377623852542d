package verify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/x448/float16"

	"github.com/born-ml/clustertrain/internal/tensor"
)

func TestCompare(t *testing.T) {
	want := []float32{1, 2, 3, 4}

	r := Compare([]float32{1, 2.0005, 3, 4}, want, 1e-3)
	assert.True(t, r.OK())
	assert.Equal(t, -1, r.First)
	assert.InDelta(t, 5e-4, r.MaxAbsErr, 1e-6)
	assert.Contains(t, r.String(), "ok")

	r = Compare([]float32{1, 2.5, 3, 3}, want, 1e-3)
	assert.False(t, r.OK())
	assert.Equal(t, 2, r.Mismatches)
	assert.Equal(t, 1, r.First)
	assert.InDelta(t, 1.0, r.MaxAbsErr, 1e-9)
	assert.Contains(t, r.String(), "2 mismatches")
}

func TestTensor_NaN(t *testing.T) {
	nan := float32(math.NaN())
	assert.Equal(t, 1, Tensor([]float32{nan, 1}, []float32{0, 1}, 10))
}

func TestTensor_FP16(t *testing.T) {
	got := tensor.FromFloat32Slice[float16.Float16]([]float32{0.1, 0.2, 0.3})
	assert.Zero(t, Tensor(got, []float32{0.1, 0.2, 0.3}, 1e-3))
	assert.Equal(t, 3, Tensor(got, []float32{0.1, 0.2, 0.3}, 1e-6))
}

func TestCompare_Empty(t *testing.T) {
	assert.True(t, Compare([]float32{}, []float32{}, 0).OK())
}

func TestCompare_LengthMismatch(t *testing.T) {
	assert.Panics(t, func() { Compare([]float32{1}, []float32{1, 2}, 0) })
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/clustertrain/internal/matmul"
	"github.com/born-ml/clustertrain/internal/tensor"
)

const sample = `
cluster:
  cores: 8
  matmul_mode: reference
memory:
  l1_bytes: 65536
  l2_bytes: 1048576
layers:
  - name: conv0
    kind: conv2d
    use_im2col: true
    use_dma_im2col: true
    matmul:
      forward: unroll_4x4
      weight_grad: unroll_2x4
  - name: fc2
    kind: linear
    matmul: {forward: matvec, weight_grad: outer, input_grad: naive_ikj}
tuning:
  - {layer: conv2d, pass: input_grad, precision: fp16, routine: unroll_k4}
  - {layer: linear, pass: forward, cores: 2, routine: unroll_1x8}
`

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Positive(t, cfg.Cluster.Cores)
	assert.Positive(t, cfg.Memory.L1Bytes)
	assert.Greater(t, cfg.Memory.L2Bytes, cfg.Memory.L1Bytes)
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Cluster.Cores)
	mode, err := cfg.Mode()
	require.NoError(t, err)
	assert.Equal(t, matmul.ModeReference, mode)
	assert.Equal(t, 65536, cfg.Memory.L1Bytes)
	require.Len(t, cfg.Layers, 2)

	conv, err := cfg.Layer("conv0")
	require.NoError(t, err)
	assert.True(t, conv.UseIm2col)
	assert.True(t, conv.UseDMAIm2col)
	fw, wg, ig, err := conv.Routines()
	require.NoError(t, err)
	assert.Equal(t, matmul.Unroll4x4, fw)
	assert.Equal(t, matmul.Unroll2x4, wg)
	assert.Equal(t, matmul.Naive, ig)

	fc, err := cfg.Layer("fc2")
	require.NoError(t, err)
	fw, wg, ig, err = fc.Routines()
	require.NoError(t, err)
	assert.Equal(t, []matmul.Selector{matmul.MatVec, matmul.Outer, matmul.NaiveIKJ}, []matmul.Selector{fw, wg, ig})

	tag, sel, err := cfg.Tuning[0].Resolve(cfg.Cluster.Cores)
	require.NoError(t, err)
	assert.Equal(t, matmul.Tag{Layer: matmul.Conv2D, Pass: matmul.InputGrad, Precision: tensor.FP16, Cores: 8}, tag)
	assert.Equal(t, matmul.UnrollK4, sel)

	tag, sel, err = cfg.Tuning[1].Resolve(cfg.Cluster.Cores)
	require.NoError(t, err)
	assert.Equal(t, matmul.Tag{Layer: matmul.Linear, Pass: matmul.Forward, Precision: tensor.FP32, Cores: 2}, tag)
	assert.Equal(t, matmul.Unroll1x8, sel)
}

func TestParse_KeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("cluster:\n  cores: 3\n"))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, 3, cfg.Cluster.Cores)
	assert.Equal(t, def.Memory, cfg.Memory)
	assert.Equal(t, def.Cluster.MatmulMode, cfg.Cluster.MatmulMode)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"zero cores", "cluster: {cores: 0}", "cluster.cores"},
		{"bad mode", "cluster: {matmul_mode: fast}", "cluster.matmul_mode"},
		{"bad l1", "memory: {l1_bytes: -1}", "memory.l1_bytes"},
		{"missing name", "layers: [{kind: conv2d}]", "layers[0].name"},
		{"duplicate", "layers: [{name: a, kind: linear}, {name: a, kind: linear}]", "layers[1].name"},
		{"bad kind", "layers: [{name: a, kind: pooling}]", "layers[0].kind"},
		{"no kernel", "layers: [{name: a, kind: depthwise}]", "layers[0].kind"},
		{"im2col on linear", "layers: [{name: a, kind: linear, use_im2col: true}]", "layers[0]"},
		{"bad routine", "layers: [{name: a, kind: conv2d, matmul: {forward: unroll_16x16}}]", "layers[0].matmul"},
		{"bad tuning pass", "tuning: [{layer: conv2d, pass: sideways, routine: naive}]", "tuning[0]"},
		{"bad tuning precision", "tuning: [{layer: conv2d, pass: forward, precision: fp8, routine: naive}]", "tuning[0]"},
		{"negative tuning cores", "tuning: [{layer: conv2d, pass: forward, cores: -1, routine: naive}]", "tuning[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("cluster: {cores: 2, turbo: true}"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLayer_NotFound(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Layer("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	def := Layer{Name: "missing", Kind: "linear"}
	assert.Equal(t, def, cfg.LayerOr("missing", def))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Cluster.Cores)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

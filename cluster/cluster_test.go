package cluster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/clustertrain/cluster"
	"github.com/born-ml/clustertrain/nn"
	"github.com/born-ml/clustertrain/tensor"
)

func TestNet(t *testing.T) {
	cfg := cluster.DefaultConfig()
	cfg.Cluster.Cores = 2
	c, err := cluster.New(cfg)
	require.NoError(t, err)
	defer c.Close()

	net, err := cluster.NewNet[float32](c, cluster.DefaultTopology(), 0.5)
	require.NoError(t, err)
	net.SetInput([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	net.SetWeights(
		[]float32{0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125},
		[]float32{0.5, 0, 0, 0.5, 0, 0.25, 0.25, 0},
	)

	l := net.TrainStep([]float32{9.5, 5.0})
	assert.Equal(t, float32(0.02587890625), l)
	assert.InDelta(t, 0.20703125, net.Conv.Coeff.Data[0], 1e-7)
}

func TestKernels(t *testing.T) {
	cfg := cluster.DefaultConfig()
	cfg.Cluster.Cores = 3
	c, err := cluster.New(cfg)
	require.NoError(t, err)
	defer c.Close()
	eng := cluster.EngineFor[float32](c)

	sel, err := nn.ParseSelector("matvec")
	require.NoError(t, err)

	fc := &nn.LinearArgs[float32]{
		Input:    tensor.NewBlob([]float32{1, -1}, make([]float32, 2), 2, 1, 1),
		Coeff:    tensor.NewBlob([]float32{1, 2, 3, 4, 5, 6}, make([]float32, 6), 3, 1, 2),
		Output:   tensor.NewBlob(make([]float32, 3), nil, 3, 1, 1),
		MatmulFW: sel,
	}
	nn.LinearForward(eng.MM, fc)
	assert.Equal(t, []float32{-1, -1, -1}, fc.Output.Data)

	out := tensor.NewBlob(make([]float32, 3), make([]float32, 3), 3, 1, 1)
	nn.ReLUForward(c.Team(), fc.Output, out)
	assert.Equal(t, []float32{0, 0, 0}, out.Data)

	fc.Output.Diff = make([]float32, 3)
	l := nn.MSELoss(fc.Output, []float32{0, 0, 0})
	assert.Equal(t, float32(1), l)
	nn.LinearBackward(eng.MM, fc)
	// dY = 2*(-1)/3 for every output.
	assert.InDeltaSlice(t, []float32{-2.0 / 3 * 9, -2.0 / 3 * 12}, fc.Input.Diff, 1e-5)

	conv := &nn.Conv2DArgs[float32]{
		Input:   tensor.NewBlob([]float32{1, 2, 3, 4}, nil, 1, 2, 2),
		Coeff:   tensor.NewBlob([]float32{1, 1, 1, 1}, make([]float32, 4), 1, 2, 2),
		Output:  tensor.NewBlob(make([]float32, 1), []float32{1}, 1, 1, 1),
		StrideH: 1,
		StrideW: 1,
	}
	nn.Conv2DForward(eng.Conv, conv)
	assert.Equal(t, []float32{10}, conv.Output.Data)
	nn.Conv2DBackwardParamGrads(eng.Conv, conv)
	assert.Equal(t, []float32{1, 2, 3, 4}, conv.Coeff.Diff)
}

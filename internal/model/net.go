// Package model wires the layer kernels into the small training network
// used by the demo driver: conv2d, ReLU, then a fully-connected layer,
// trained with MSE loss and gradient descent.
package model

import (
	"fmt"

	"github.com/born-ml/clustertrain/internal/act"
	"github.com/born-ml/clustertrain/internal/cluster"
	"github.com/born-ml/clustertrain/internal/config"
	"github.com/born-ml/clustertrain/internal/conv2d"
	"github.com/born-ml/clustertrain/internal/im2col"
	"github.com/born-ml/clustertrain/internal/linear"
	"github.com/born-ml/clustertrain/internal/loss"
	"github.com/born-ml/clustertrain/internal/memory"
	"github.com/born-ml/clustertrain/internal/optim"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Layer names looked up in the configuration.
const (
	ConvLayer   = "conv0"
	LinearLayer = "fc2"
)

// Topology fixes the extents of the network.
type Topology struct {
	InC, InH, InW int // input feature map
	ConvC         int // convolution output channels
	Kh, Kw        int // convolution kernel
	Stride        int
	Pad           int // applied on all four sides
	Out           int // fully-connected outputs
}

// DefaultTopology is a single-channel 4x4 input, a 3x3 convolution and two
// outputs.
func DefaultTopology() Topology {
	return Topology{InC: 1, InH: 4, InW: 4, ConvC: 1, Kh: 3, Kw: 3, Stride: 1, Out: 2}
}

func (t Topology) convGeometry() im2col.Geometry {
	g := im2col.Geometry{
		Cin: t.InC, Hin: t.InH, Win: t.InW, Cout: t.ConvC, Kh: t.Kh, Kw: t.Kw,
		Lpad: t.Pad, Rpad: t.Pad, Upad: t.Pad, Dpad: t.Pad,
		StrideH: t.Stride, StrideW: t.Stride,
	}
	g.Hout, g.Wout = g.OutputSize()
	return g
}

// Net is a conv2d → ReLU → linear network living in a cluster's arena.
//
// The input sits in L2 and reaches the convolution through staged im2col
// when the layer enables it; every other buffer lives in L1.
type Net[T tensor.Elem] struct {
	c   *cluster.Cluster
	eng *cluster.Engine[T]

	Conv *conv2d.Args[T]
	Act  *tensor.Blob[T] // ReLU output, input of the linear layer
	FC   *linear.Args[T]

	opt *optim.SGD[T]
}

type allocator[T tensor.Elem] struct {
	arena *memory.Arena
	err   error
}

func (a *allocator[T]) alloc(t memory.Tier, n int) []T {
	if a.err != nil {
		return nil
	}
	s, err := memory.Alloc[T](a.arena, t, n)
	a.err = err
	return s
}

func (a *allocator[T]) blob(t memory.Tier, withDiff bool, c, h, w int) *tensor.Blob[T] {
	data := a.alloc(t, c*h*w)
	var diff []T
	if withDiff {
		diff = a.alloc(t, c*h*w)
	}
	if a.err != nil {
		return nil
	}
	return tensor.NewBlob(data, diff, c, h, w)
}

// New allocates a network of the given topology on c, with layer kernel
// choices taken from the cluster configuration and a learning rate of lr.
func New[T tensor.Elem](c *cluster.Cluster, top Topology, lr float32) (*Net[T], error) {
	cfg := c.Config()
	convCfg := cfg.LayerOr(ConvLayer, config.Layer{Name: ConvLayer, Kind: "conv2d", UseIm2col: true})
	fcCfg := cfg.LayerOr(LinearLayer, config.Layer{Name: LinearLayer, Kind: "linear"})

	g := top.convGeometry()
	if g.Hout <= 0 || g.Wout <= 0 {
		return nil, fmt.Errorf("%w: kernel %dx%d does not fit input %dx%d",
			config.ErrInvalid, top.Kh, top.Kw, top.InH, top.InW)
	}

	a := &allocator[T]{arena: c.Arena()}
	input := a.blob(memory.L2, false, top.InC, top.InH, top.InW)
	coeff := a.blob(memory.L1, true, top.InC*top.ConvC, top.Kh, top.Kw)
	convOut := a.blob(memory.L1, true, top.ConvC, g.Hout, g.Wout)
	actOut := a.blob(memory.L1, true, top.ConvC, g.Hout, g.Wout)
	fcCoeff := a.blob(memory.L1, true, top.Out, 1, top.ConvC*g.Hout*g.Wout)
	fcOut := a.blob(memory.L1, true, top.Out, 1, 1)

	var i2c, bt []T
	if convCfg.UseIm2col {
		i2c = a.alloc(memory.L1, g.BufferSize())
		bt = a.alloc(memory.L1, g.TransposeBufferSize())
	}
	if a.err != nil {
		return nil, fmt.Errorf("allocate network: %w", a.err)
	}

	fw, wg, ig, err := convCfg.Routines()
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", ConvLayer, err)
	}
	n := &Net[T]{
		c:   c,
		eng: cluster.EngineFor[T](c),
		Conv: &conv2d.Args[T]{
			Input:        input,
			Coeff:        coeff,
			Output:       convOut,
			Lpad:         top.Pad,
			Rpad:         top.Pad,
			Upad:         top.Pad,
			Dpad:         top.Pad,
			StrideH:      top.Stride,
			StrideW:      top.Stride,
			I2CBuffer:    i2c,
			BTBuffer:     bt,
			SkipInGrad:   true,
			MatmulFW:     fw,
			MatmulWG:     wg,
			MatmulIG:     ig,
			UseIm2col:    convCfg.UseIm2col,
			UseDMAIm2col: convCfg.UseDMAIm2col,
		},
		Act: actOut,
	}

	// The linear layer reads the flattened ReLU output.
	flat := tensor.NewBlob(actOut.Data, actOut.Diff, actOut.Dim, 1, 1)
	if fw, wg, ig, err = fcCfg.Routines(); err != nil {
		return nil, fmt.Errorf("layer %s: %w", LinearLayer, err)
	}
	n.FC = &linear.Args[T]{
		Input: flat, Coeff: fcCoeff, Output: fcOut,
		MatmulFW: fw, MatmulWG: wg, MatmulIG: ig,
	}

	n.opt = optim.NewSGD(c.Team(), n.Params(), optim.SGDConfig{LR: lr})
	return n, nil
}

// Params returns the trainable blobs: convolution then linear weights.
func (n *Net[T]) Params() []*tensor.Blob[T] {
	return []*tensor.Blob[T]{n.Conv.Coeff, n.FC.Coeff}
}

// SetInput copies x into the input tensor.
func (n *Net[T]) SetInput(x []float32) {
	fill(n.Conv.Input.Data, x)
}

// SetWeights copies the convolution and linear weights.
func (n *Net[T]) SetWeights(conv, fc []float32) {
	fill(n.Conv.Coeff.Data, conv)
	fill(n.FC.Coeff.Data, fc)
}

func fill[T tensor.Elem](dst []T, src []float32) {
	if len(dst) != len(src) {
		panic(fmt.Sprintf("model: got %d values for a tensor of %d", len(src), len(dst)))
	}
	for i, v := range src {
		dst[i] = tensor.FromFloat32[T](v)
	}
}

// Output returns the network output.
func (n *Net[T]) Output() []T {
	return n.FC.Output.Data
}

// Forward runs the three layers in order.
func (n *Net[T]) Forward() {
	conv2d.Forward(n.eng.Conv, n.Conv)
	act.ReLUForward(n.c.Team(), n.Conv.Output, n.Act)
	linear.Forward(n.eng.MM, n.FC)
}

// Loss writes the output gradient for target and returns the MSE loss.
func (n *Net[T]) Loss(target []T) float32 {
	return loss.MSE(n.FC.Output, target)
}

// Backward runs the three layers in reverse. The convolution skips its
// input gradient.
func (n *Net[T]) Backward() {
	linear.Backward(n.eng.MM, n.FC)
	act.ReLUBackward(n.c.Team(), n.Conv.Output, n.Act)
	conv2d.Backward(n.eng.Conv, n.Conv)
}

// Update applies one gradient-descent step to every weight.
func (n *Net[T]) Update() {
	n.opt.Step()
}

// TrainStep runs forward, loss, backward and update, returning the loss
// measured before the update.
func (n *Net[T]) TrainStep(target []T) float32 {
	n.Forward()
	l := n.Loss(target)
	n.Backward()
	n.Update()
	return l
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/clustertrain/internal/act"
	"github.com/born-ml/clustertrain/internal/conv2d"
	"github.com/born-ml/clustertrain/internal/linear"
	"github.com/born-ml/clustertrain/internal/loss"
	"github.com/born-ml/clustertrain/internal/matmul"
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Selector names a matmul routine of the catalogue.
type Selector = matmul.Selector

// ParseSelector returns the routine with the given catalogue name.
func ParseSelector(name string) (Selector, error) {
	return matmul.ParseSelector(name)
}

// Conv2DArgs describes one convolution layer.
type Conv2DArgs[T tensor.Elem] = conv2d.Args[T]

// Conv2DKernel is the handle convolution passes run on.
type Conv2DKernel[T tensor.Elem] = conv2d.Kernel[T]

// Conv2DForward computes the convolution output.
func Conv2DForward[T tensor.Elem](k *Conv2DKernel[T], args *Conv2DArgs[T]) {
	conv2d.Forward(k, args)
}

// Conv2DBackward computes the weight gradient and, unless SkipInGrad is
// set, the input gradient.
func Conv2DBackward[T tensor.Elem](k *Conv2DKernel[T], args *Conv2DArgs[T]) {
	conv2d.Backward(k, args)
}

// Conv2DBackwardParamGrads computes the weight gradient only.
func Conv2DBackwardParamGrads[T tensor.Elem](k *Conv2DKernel[T], args *Conv2DArgs[T]) {
	conv2d.BackwardParamGrads(k, args)
}

// Conv2DBackwardInputGrads computes the input gradient only.
func Conv2DBackwardInputGrads[T tensor.Elem](k *Conv2DKernel[T], args *Conv2DArgs[T]) {
	conv2d.BackwardInputGrads(k, args)
}

// LinearArgs describes one fully-connected layer.
type LinearArgs[T tensor.Elem] = linear.Args[T]

// Manager is the matmul dispatch handle fully-connected passes run on.
type Manager[T tensor.Elem] = matmul.Manager[T]

// LinearForward computes the fully-connected output.
func LinearForward[T tensor.Elem](mm *Manager[T], args *LinearArgs[T]) {
	linear.Forward(mm, args)
}

// LinearBackward computes the weight gradient and, unless SkipInGrad is
// set, the input gradient.
func LinearBackward[T tensor.Elem](mm *Manager[T], args *LinearArgs[T]) {
	linear.Backward(mm, args)
}

// LinearBackwardParamGrads computes the weight gradient only.
func LinearBackwardParamGrads[T tensor.Elem](mm *Manager[T], args *LinearArgs[T]) {
	linear.BackwardParamGrads(mm, args)
}

// LinearBackwardInputGrads computes the input gradient only.
func LinearBackwardInputGrads[T tensor.Elem](mm *Manager[T], args *LinearArgs[T]) {
	linear.BackwardInputGrads(mm, args)
}

// ReLUForward writes out = max(0, in).
func ReLUForward[T tensor.Elem](team *parallel.Team, in, out *tensor.Blob[T]) {
	act.ReLUForward(team, in, out)
}

// ReLUBackward writes the gradient of in from the gradient of out.
func ReLUBackward[T tensor.Elem](team *parallel.Team, in, out *tensor.Blob[T]) {
	act.ReLUBackward(team, in, out)
}

// MSELoss writes the loss gradient into output.Diff and returns the loss.
func MSELoss[T tensor.Elem](output *tensor.Blob[T], target []T) float32 {
	return loss.MSE(output, target)
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the weight updates applied after a backward pass.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with optional momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - GradientDescent: a single in-place update of one blob
//   - Optimizer interface for custom optimizers
//
// Updates run on every core of a cluster's team, each core owning a
// contiguous range of elements.
//
// # Basic Usage
//
//	opt := optim.NewSGD(c.Team(), []*tensor.Blob[float32]{conv.Coeff, fc.Coeff},
//	    optim.SGDConfig{LR: 0.5})
//
//	for epoch := range epochs {
//	    forward()
//	    backward()
//	    opt.Step()
//	}
package optim

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the training kernels of each layer kind.
//
// # Overview
//
// This package contains:
//   - Conv2D: forward, weight gradient and input gradient, through im2col
//     and the matmul catalogue or through a direct loop nest
//   - Linear: forward, weight gradient and input gradient
//   - ReLU activation and MSE loss
//
// Every entry point takes a kernel handle and an argument descriptor and
// returns nothing. Kernels do not validate shapes; a mismatched descriptor
// panics on an out-of-range index or produces garbage.
//
// # Basic Usage
//
//	eng := cluster.EngineFor[float32](c)
//	conv := &nn.Conv2DArgs[float32]{Input: x, Coeff: w, Output: y, StrideH: 1, StrideW: 1}
//	nn.Conv2DForward(eng.Conv, conv)
//	nn.Conv2DBackward(eng.Conv, conv)
package nn

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensor descriptors the clustertrain layer
// kernels operate on.
//
// # Overview
//
// A Blob is a C×H×W view over caller-owned storage: a value slice and an
// optional gradient slice of the same length. Blobs never allocate; their
// buffers usually come from a cluster's memory arena.
//
// # Basic Usage
//
//	import "github.com/born-ml/clustertrain/tensor"
//
//	data := make([]float32, 3*8*8)
//	diff := make([]float32, 3*8*8)
//	x := tensor.NewBlob(data, diff, 3, 8, 8)
//
// # Supported Data Types
//
// The Elem constraint admits two precisions:
//   - float32 (FP32)
//   - float16.Float16 from github.com/x448/float16 (FP16)
//
// FP16 kernels accumulate in half precision; there is no wider accumulator.
//
// # Layouts
//
// Feature maps are stored channel-major (CHW) or channel-minor (HWC). The
// layout is a per-layer flag; Layout.Index maps (c, h, w) to a flat offset
// in either.
package tensor

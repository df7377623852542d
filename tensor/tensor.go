// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/clustertrain/internal/tensor"

// Elem is the constraint satisfied by supported element types.
type Elem = tensor.Elem

// Blob is a tensor descriptor over borrowed storage.
type Blob[T Elem] = tensor.Blob[T]

// Shape represents the logical extents of a tensor.
type Shape = tensor.Shape

// Precision is the numeric format of a tensor.
type Precision = tensor.Precision

// Supported precisions.
const (
	FP32 = tensor.FP32
	FP16 = tensor.FP16
)

// Layout is the memory order of a feature map.
type Layout = tensor.Layout

// Supported layouts.
const (
	CHW = tensor.CHW
	HWC = tensor.HWC
)

// NewBlob wraps data and diff with extents c×h×w. diff may be nil.
// Panics if the buffers do not hold exactly c*h*w elements.
func NewBlob[T Elem](data, diff []T, c, h, w int) *Blob[T] {
	return tensor.NewBlob(data, diff, c, h, w)
}

// PrecisionOf returns the precision of element type T.
func PrecisionOf[T Elem]() Precision {
	return tensor.PrecisionOf[T]()
}

// ToFloat32Slice widens src into a new []float32.
func ToFloat32Slice[T Elem](src []T) []float32 {
	return tensor.ToFloat32Slice(src)
}

// FromFloat32Slice rounds src into a new []T.
func FromFloat32Slice[T Elem](src []float32) []T {
	return tensor.FromFloat32Slice[T](src)
}

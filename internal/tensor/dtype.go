// Package tensor provides the tensor descriptors shared by every layer kernel.
package tensor

import (
	"fmt"

	"github.com/x448/float16"
)

// Elem is a constraint for supported element types.
//
// float16.Float16 is stored as a uint16, so generic code must never apply
// the built-in arithmetic operators to an Elem. Use an Arith instead.
type Elem interface {
	float32 | float16.Float16
}

// Precision represents the numeric format of a tensor at runtime.
type Precision int

// Supported precisions.
const (
	FP32 Precision = iota
	FP16
)

// Size returns the byte size of one element.
func (p Precision) Size() int {
	switch p {
	case FP32:
		return 4
	case FP16:
		return 2
	default:
		panic("unknown precision")
	}
}

// String returns a human-readable name for the precision.
func (p Precision) String() string {
	switch p {
	case FP32:
		return "fp32"
	case FP16:
		return "fp16"
	default:
		return "unknown"
	}
}

// ParsePrecision is the inverse of Precision.String.
func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "fp32":
		return FP32, nil
	case "fp16":
		return FP16, nil
	default:
		return FP32, fmt.Errorf("unknown precision %q", s)
	}
}

// PrecisionOf infers the Precision of element type T.
func PrecisionOf[T Elem]() Precision {
	var zero T
	if _, ok := any(zero).(float16.Float16); ok {
		return FP16
	}
	return FP32
}

// ToFloat32 widens a single element. Not meant for inner loops.
func ToFloat32[T Elem](v T) float32 {
	switch x := any(v).(type) {
	case float32:
		return x
	case float16.Float16:
		return x.Float32()
	}
	panic("unsupported element type")
}

// FromFloat32 rounds f to element type T.
func FromFloat32[T Elem](f float32) T {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		*p = f
	case *float16.Float16:
		*p = float16.Fromfloat32(f)
	}
	return out
}

// ToFloat32Slice widens src into a new []float32.
func ToFloat32Slice[T Elem](src []T) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = ToFloat32(v)
	}
	return out
}

// FromFloat32Slice rounds src into a new []T.
func FromFloat32Slice[T Elem](src []float32) []T {
	out := make([]T, len(src))
	for i, v := range src {
		out[i] = FromFloat32[T](v)
	}
	return out
}

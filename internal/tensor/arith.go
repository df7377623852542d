package tensor

import "github.com/x448/float16"

// Arith is the arithmetic of one precision.
//
// Results are rounded to the element type after every operation; there is
// no wider accumulator, so FP16 sums carry FP16 rounding error.
type Arith[T Elem] interface {
	MulAdd(acc, a, b T) T // acc + a*b, rounded once
	Add(a, b T) T
	Mul(a, b T) T
}

// F32 is the Arith of float32.
type F32 struct{}

// MulAdd returns acc + a*b. The conversion keeps the compiler from fusing
// the two operations, so every routine rounds the same way.
func (F32) MulAdd(acc, a, b float32) float32 { return acc + float32(a*b) }

// Add returns a + b.
func (F32) Add(a, b float32) float32 { return a + b }

// Mul returns a * b.
func (F32) Mul(a, b float32) float32 { return a * b }

// F16 is the Arith of float16.Float16.
//
// The product of two halves is exact in float32, so MulAdd rounds to half
// precision a single time.
type F16 struct{}

// MulAdd returns acc + a*b rounded to half precision.
func (F16) MulAdd(acc, a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(acc.Float32() + a.Float32()*b.Float32())
}

// Add returns a + b rounded to half precision.
func (F16) Add(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() + b.Float32())
}

// Mul returns a * b rounded to half precision.
func (F16) Mul(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() * b.Float32())
}

// ArithFor returns the Arith of T as an interface value.
//
// Dynamic dispatch costs a call per operation; hot loops take the Arith as
// a type parameter instead.
func ArithFor[T Elem]() Arith[T] {
	var zero T
	if _, ok := any(zero).(float16.Float16); ok {
		return any(F16{}).(Arith[T])
	}
	return any(F32{}).(Arith[T])
}

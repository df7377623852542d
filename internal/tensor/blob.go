package tensor

import "fmt"

// Blob is a tensor descriptor: a value buffer, an optional gradient buffer
// of the same length, and the logical extents C×H×W.
//
// A Blob never owns its storage. Data and Diff are borrowed from
// caller-allocated memory (usually a memory.Arena) and must not alias each
// other. Diff is nil for tensors that never receive a gradient, such as the
// network input.
type Blob[T Elem] struct {
	Data []T
	Diff []T
	Dim  int
	C    int
	H    int
	W    int
}

// NewBlob wraps data and diff with the given extents.
// Panics if the buffers do not hold exactly c*h*w elements.
func NewBlob[T Elem](data, diff []T, c, h, w int) *Blob[T] {
	dim := c * h * w
	if err := (Shape{c, h, w}).Validate(); err != nil {
		panic(fmt.Sprintf("blob: %v", err))
	}
	if len(data) != dim {
		panic(fmt.Sprintf("blob: data holds %d elements, want %d (%dx%dx%d)", len(data), dim, c, h, w))
	}
	if diff != nil && len(diff) != dim {
		panic(fmt.Sprintf("blob: diff holds %d elements, want %d", len(diff), dim))
	}
	return &Blob[T]{Data: data, Diff: diff, Dim: dim, C: c, H: h, W: w}
}

// HasDiff reports whether the blob carries a gradient buffer.
func (b *Blob[T]) HasDiff() bool {
	return b.Diff != nil
}

// Shape returns the logical extents {C, H, W}.
func (b *Blob[T]) Shape() Shape {
	return Shape{b.C, b.H, b.W}
}

// Precision returns the numeric format of the blob.
func (b *Blob[T]) Precision() Precision {
	return PrecisionOf[T]()
}

// String implements fmt.Stringer.
func (b *Blob[T]) String() string {
	return fmt.Sprintf("Blob[%s](%dx%dx%d, grad=%t)", b.Precision(), b.C, b.H, b.W, b.HasDiff())
}

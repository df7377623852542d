package tensor

import "fmt"

// Shape represents the logical extents of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Layout is the memory order of a feature map.
type Layout int

// Supported layouts.
const (
	CHW Layout = iota // channel-major
	HWC               // channel-minor
)

// String returns the layout name.
func (l Layout) String() string {
	if l == HWC {
		return "HWC"
	}
	return "CHW"
}

// LayoutOf maps the HWC flag carried by layer descriptors to a Layout.
func LayoutOf(hwc bool) Layout {
	if hwc {
		return HWC
	}
	return CHW
}

// Index returns the flat offset of (c, h, w) in a C×H×W feature map.
func (l Layout) Index(c, h, w, C, H, W int) int {
	if l == HWC {
		return (h*W+w)*C + c
	}
	return (c*H+h)*W + w
}

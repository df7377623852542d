// Package act implements element-wise activation kernels on a core team.
package act

import (
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// ReLUForward writes out.Data = max(0, in.Data).
//
// Elements are split across the team in contiguous ranges. in and out may
// be the same blob.
func ReLUForward[T tensor.Elem](team *parallel.Team, in, out *tensor.Blob[T]) {
	src, dst := in.Data, out.Data
	team.ForRange(len(src), func(lo, hi int) {
		var zero T
		for i := lo; i < hi; i++ {
			if tensor.ToFloat32(src[i]) > 0 {
				dst[i] = src[i]
			} else {
				dst[i] = zero
			}
		}
	})
}

// ReLUBackward writes in.Diff, passing out.Diff through where in.Data is
// positive and zero elsewhere.
func ReLUBackward[T tensor.Elem](team *parallel.Team, in, out *tensor.Blob[T]) {
	x, dy, dx := in.Data, out.Diff, in.Diff
	team.ForRange(len(x), func(lo, hi int) {
		var zero T
		for i := lo; i < hi; i++ {
			if tensor.ToFloat32(x[i]) > 0 {
				dx[i] = dy[i]
			} else {
				dx[i] = zero
			}
		}
	})
}

// Package optim implements the weight updates applied after a backward
// pass.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: gradient descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//
// Parameters are tensor blobs whose Diff holds the gradient written by the
// layer kernels. Updates run in place on every core of a team; each core
// owns a contiguous range of elements.
//
// Example usage:
//
//	opt := optim.NewSGD(team, []*tensor.Blob[float32]{conv.Coeff, fc.Coeff},
//	    optim.SGDConfig{LR: 0.5})
//
//	for epoch := range epochs {
//	    forward(net)
//	    backward(net)
//	    opt.Step()
//	}
package optim

import (
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies the gradient in each parameter's Diff to its Data.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// The layer kernels overwrite gradients, so a training loop only needs
	// this when it accumulates across several backward passes.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// params is the parameter set shared by every optimizer.
type params[T tensor.Elem] struct {
	team  *parallel.Team
	blobs []*tensor.Blob[T]
}

func (p *params[T]) zeroGrad() {
	for _, b := range p.blobs {
		if !b.HasDiff() {
			continue
		}
		diff := b.Diff
		p.team.ForRange(len(diff), func(lo, hi int) {
			clear(diff[lo:hi])
		})
	}
}

// GradientDescent applies data -= lr * diff to one blob on every core.
func GradientDescent[T tensor.Elem](team *parallel.Team, b *tensor.Blob[T], lr float32) {
	data, diff := b.Data, b.Diff
	team.ForRange(len(data), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			w := tensor.ToFloat32(data[i]) - lr*tensor.ToFloat32(diff[i])
			data[i] = tensor.FromFloat32[T](w)
		}
	})
}

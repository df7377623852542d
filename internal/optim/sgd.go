package optim

import (
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Arithmetic is carried out in float32 and rounded to T once per element.
type SGD[T tensor.Elem] struct {
	params[T]
	lr         float32
	momentum   float32
	velocities map[*tensor.Blob[T]][]float32
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over blobs, updating on team.
func NewSGD[T tensor.Elem](team *parallel.Team, blobs []*tensor.Blob[T], config SGDConfig) *SGD[T] {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD[T]{
		params:     params[T]{team: team, blobs: blobs},
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*tensor.Blob[T]][]float32),
	}
}

// Step performs a single optimization step.
//
// Blobs without a gradient buffer are skipped.
func (s *SGD[T]) Step() {
	for _, b := range s.blobs {
		if !b.HasDiff() {
			continue
		}
		if s.momentum == 0 {
			GradientDescent(s.team, b, s.lr)
			continue
		}
		s.updateWithMomentum(b)
	}
}

func (s *SGD[T]) updateWithMomentum(b *tensor.Blob[T]) {
	velocity, ok := s.velocities[b]
	if !ok {
		velocity = make([]float32, len(b.Data))
		s.velocities[b] = velocity
	}

	data, diff := b.Data, b.Diff
	s.team.ForRange(len(data), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			velocity[i] = s.momentum*velocity[i] + tensor.ToFloat32(diff[i])
			data[i] = tensor.FromFloat32[T](tensor.ToFloat32(data[i]) - s.lr*velocity[i])
		}
	})
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[T]) ZeroGrad() {
	s.zeroGrad()
}

// GetLR returns the current learning rate.
func (s *SGD[T]) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[T]) SetLR(lr float32) {
	s.lr = lr
}

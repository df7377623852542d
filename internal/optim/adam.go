package optim

import (
	"math"

	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Adam implements Adaptive Moment Estimation.
//
//	m = beta1 * m + (1 - beta1) * g
//	v = beta2 * v + (1 - beta2) * g²
//	param = param - lr * m̂ / (√v̂ + eps)
//
// where m̂ and v̂ are the bias-corrected moments. Moments are kept in
// float32 for both precisions.
type Adam[T tensor.Elem] struct {
	params[T]
	lr    float32
	beta1 float32
	beta2 float32
	eps   float32
	t     int                           // Timestep for bias correction
	m     map[*tensor.Blob[T]][]float32 // First moment estimates
	v     map[*tensor.Blob[T]][]float32 // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer over blobs, updating on team.
func NewAdam[T tensor.Elem](team *parallel.Team, blobs []*tensor.Blob[T], config AdamConfig) *Adam[T] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam[T]{
		params: params[T]{team: team, blobs: blobs},
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*tensor.Blob[T]][]float32),
		v:      make(map[*tensor.Blob[T]][]float32),
	}
}

// Step performs a single optimization step.
func (a *Adam[T]) Step() {
	a.t++

	bc1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	bc2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, b := range a.blobs {
		if !b.HasDiff() {
			continue
		}
		m, ok := a.m[b]
		if !ok {
			m = make([]float32, len(b.Data))
			a.m[b] = m
		}
		v, ok := a.v[b]
		if !ok {
			v = make([]float32, len(b.Data))
			a.v[b] = v
		}
		a.update(b, m, v, bc1, bc2)
	}
}

func (a *Adam[T]) update(b *tensor.Blob[T], m, v []float32, bc1, bc2 float32) {
	data, diff := b.Data, b.Diff
	a.team.ForRange(len(data), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			g := tensor.ToFloat32(diff[i])
			m[i] = a.beta1*m[i] + (1.0-a.beta1)*g
			v[i] = a.beta2*v[i] + (1.0-a.beta2)*g*g

			mHat := m[i] / bc1
			vHat := v[i] / bc2
			w := tensor.ToFloat32(data[i]) - a.lr*mHat/(float32(math.Sqrt(float64(vHat)))+a.eps)
			data[i] = tensor.FromFloat32[T](w)
		}
	})
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[T]) ZeroGrad() {
	a.zeroGrad()
}

// GetLR returns the current learning rate.
func (a *Adam[T]) GetLR() float32 {
	return a.lr
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/clustertrain/internal/optim"
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Optimizer is the interface for all optimizers.
type Optimizer = optim.Optimizer

// Config is the base configuration for optimizers.
type Config = optim.Config

// SGD implements gradient descent with optional momentum.
type SGD[T tensor.Elem] = optim.SGD[T]

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer over params, updating on team.
func NewSGD[T tensor.Elem](team *parallel.Team, params []*tensor.Blob[T], config SGDConfig) *SGD[T] {
	return optim.NewSGD(team, params, config)
}

// Adam implements the Adam optimizer.
type Adam[T tensor.Elem] = optim.Adam[T]

// AdamConfig contains configuration for the Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer over params, updating on team.
func NewAdam[T tensor.Elem](team *parallel.Team, params []*tensor.Blob[T], config AdamConfig) *Adam[T] {
	return optim.NewAdam(team, params, config)
}

// GradientDescent applies data -= lr * diff to one blob on every core.
func GradientDescent[T tensor.Elem](team *parallel.Team, b *tensor.Blob[T], lr float32) {
	optim.GradientDescent(team, b, lr)
}

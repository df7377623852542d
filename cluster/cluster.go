// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cluster

import (
	"github.com/born-ml/clustertrain/internal/cluster"
	"github.com/born-ml/clustertrain/internal/config"
	"github.com/born-ml/clustertrain/internal/model"
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Cluster owns a core team and the memory it computes on.
type Cluster = cluster.Cluster

// Engine bundles the matmul manager and convolution kernel of a precision.
type Engine[T tensor.Elem] = cluster.Engine[T]

// Stats is a snapshot of a cluster's counters.
type Stats = cluster.Stats

// Team is the fixed set of cores every kernel forks on.
type Team = parallel.Team

// Config is the cluster and per-layer configuration.
type Config = config.Config

// Net is the conv2d, ReLU, linear training network.
type Net[T tensor.Elem] = model.Net[T]

// Topology fixes the extents of a Net.
type Topology = model.Topology

// New validates cfg and starts a cluster.
func New(cfg Config) (*Cluster, error) {
	return cluster.New(cfg)
}

// EngineFor returns the engine of precision T.
func EngineFor[T tensor.Elem](c *Cluster) *Engine[T] {
	return cluster.EngineFor[T](c)
}

// DefaultConfig returns a configuration sized after the host.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultTopology returns the topology of the demo network.
func DefaultTopology() Topology {
	return model.DefaultTopology()
}

// NewNet allocates a network on c with learning rate lr.
func NewNet[T tensor.Elem](c *Cluster, top Topology, lr float32) (*Net[T], error) {
	return model.New[T](c, top, lr)
}

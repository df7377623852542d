// Package cluster assembles a compute cluster from configuration: the core
// team, the memory tiers and one matmul manager and convolution kernel per
// precision.
package cluster

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/born-ml/clustertrain/internal/config"
	"github.com/born-ml/clustertrain/internal/conv2d"
	"github.com/born-ml/clustertrain/internal/matmul"
	"github.com/born-ml/clustertrain/internal/memory"
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Engine is what the layer kernels of one precision run on.
type Engine[T tensor.Elem] struct {
	MM   *matmul.Manager[T]
	Conv *conv2d.Kernel[T]
}

func newEngine[T tensor.Elem](team *parallel.Team, mode matmul.Mode, dma *memory.DMA) *Engine[T] {
	mm := matmul.NewManager[T](team, mode)
	return &Engine[T]{MM: mm, Conv: conv2d.NewKernel(mm, dma)}
}

// Cluster owns a core team and the memory it computes on.
type Cluster struct {
	cfg   config.Config
	team  *parallel.Team
	arena *memory.Arena
	dma   *memory.DMA

	fp32 *Engine[float32]
	fp16 *Engine[float16.Float16]
}

// New validates cfg and starts a cluster. The caller must Close it.
func New(cfg config.Config) (*Cluster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	team := parallel.NewTeam(cfg.Cluster.Cores)
	dma := memory.NewDMA()
	c := &Cluster{
		cfg:   cfg,
		team:  team,
		arena: memory.NewArena(cfg.Memory),
		dma:   dma,
		fp32:  newEngine[float32](team, mode, dma),
		fp16:  newEngine[float16.Float16](team, mode, dma),
	}

	for i, e := range cfg.Tuning {
		tag, sel, err := e.Resolve(team.Cores())
		if err != nil {
			team.Close()
			return nil, fmt.Errorf("tuning[%d]: %w", i, err)
		}
		switch tag.Precision {
		case tensor.FP16:
			c.fp16.MM.Tune(tag, sel)
		default:
			c.fp32.MM.Tune(tag, sel)
		}
	}
	return c, nil
}

// EngineFor returns the engine of precision T.
func EngineFor[T tensor.Elem](c *Cluster) *Engine[T] {
	if e, ok := any(c.fp32).(*Engine[T]); ok {
		return e
	}
	return any(c.fp16).(*Engine[T])
}

// Config returns the configuration the cluster was built from.
func (c *Cluster) Config() config.Config {
	return c.cfg
}

// Team returns the core team.
func (c *Cluster) Team() *parallel.Team {
	return c.team
}

// Arena returns the tier allocator.
func (c *Cluster) Arena() *memory.Arena {
	return c.arena
}

// DMA returns the transfer engine shared by both precisions.
func (c *Cluster) DMA() *memory.DMA {
	return c.dma
}

// Stats is a snapshot of the cluster's counters.
type Stats struct {
	Cores    int
	L1Used   int
	L2Used   int
	DMA      memory.Stats
	Routines map[tensor.Precision]map[matmul.Selector]int64
}

// Stats returns the current counters.
func (c *Cluster) Stats() Stats {
	return Stats{
		Cores:  c.team.Cores(),
		L1Used: c.arena.Used(memory.L1),
		L2Used: c.arena.Used(memory.L2),
		DMA:    c.dma.Stats(),
		Routines: map[tensor.Precision]map[matmul.Selector]int64{
			tensor.FP32: c.fp32.MM.Stats(),
			tensor.FP16: c.fp16.MM.Stats(),
		},
	}
}

// Close stops the core team.
func (c *Cluster) Close() {
	c.team.Close()
}

package conv2d

import (
	"github.com/born-ml/clustertrain/internal/im2col"
	"github.com/born-ml/clustertrain/internal/matmul"
	"github.com/born-ml/clustertrain/internal/memory"
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Kernel bundles what every convolution pass of precision T runs on: the
// matmul manager, its core team and an im2col stager on that team.
type Kernel[T tensor.Elem] struct {
	mm     *matmul.Manager[T]
	stager *im2col.Stager[T]
}

// NewKernel returns a kernel dispatching through mm and staging patches
// through dma.
func NewKernel[T tensor.Elem](mm *matmul.Manager[T], dma *memory.DMA) *Kernel[T] {
	return &Kernel[T]{
		mm:     mm,
		stager: im2col.NewStager[T](mm.Team(), dma),
	}
}

// Manager returns the matmul manager of the kernel.
func (k *Kernel[T]) Manager() *matmul.Manager[T] {
	return k.mm
}

// DMA returns the transfer engine used for staged im2col.
func (k *Kernel[T]) DMA() *memory.DMA {
	return k.stager.DMA()
}

func (k *Kernel[T]) team() *parallel.Team {
	return k.mm.Team()
}

func (k *Kernel[T]) run(pass matmul.PassKind, sel matmul.Selector, args *matmul.Args[T]) {
	k.mm.Run(k.mm.TagFor(matmul.Conv2D, pass), sel, args)
}

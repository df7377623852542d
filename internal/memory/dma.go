package memory

import (
	"sync/atomic"

	"github.com/born-ml/clustertrain/internal/tensor"
)

// DMA is the block-transfer engine between tiers.
//
// Transfers are synchronous: the issuing core blocks until the copy is
// complete, and no transfer overlaps with compute. The engine only counts
// what it moves; it is safe for concurrent use by every core of a team.
type DMA struct {
	transfers atomic.Int64
	bytes     atomic.Int64
}

// Stats summarises the traffic issued through a DMA engine.
type Stats struct {
	Transfers int64
	Bytes     int64
}

// NewDMA returns an idle engine.
func NewDMA() *DMA {
	return &DMA{}
}

// Copy transfers len(src) contiguous elements into dst as one block.
func Copy[T tensor.Elem](d *DMA, dst, src []T) {
	n := copy(dst, src)
	d.record(n * tensor.PrecisionOf[T]().Size())
}

// Copy2D gathers count blocks of length elements, spaced srcStride apart
// in src, into contiguous dst as one strided transfer.
func Copy2D[T tensor.Elem](d *DMA, dst, src []T, count, srcStride, length int) {
	for i := 0; i < count; i++ {
		copy(dst[i*length:(i+1)*length], src[i*srcStride:i*srcStride+length])
	}
	d.record(count * length * tensor.PrecisionOf[T]().Size())
}

func (d *DMA) record(bytes int) {
	d.transfers.Add(1)
	d.bytes.Add(int64(bytes))
}

// Stats returns the traffic recorded since the last Reset.
func (d *DMA) Stats() Stats {
	return Stats{
		Transfers: d.transfers.Load(),
		Bytes:     d.bytes.Load(),
	}
}

// Reset clears the counters.
func (d *DMA) Reset() {
	d.transfers.Store(0)
	d.bytes.Store(0)
}

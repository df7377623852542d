package memory

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/born-ml/clustertrain/internal/tensor"
)

// align is the byte alignment of every arena allocation.
const align = 8

// Arena owns one backing buffer per tier and carves typed slices out of it.
//
// Slices handed out by an arena stay valid until Reset; there is no
// per-slice free. Layers keep references to their slices for the whole
// training run, as the scratch and tensor buffers of a static network do.
type Arena struct {
	mu   sync.Mutex
	cfg  Config
	mem  [numTiers][]byte
	used [numTiers]int
}

// NewArena allocates the backing buffers described by cfg.
func NewArena(cfg Config) *Arena {
	a := &Arena{cfg: cfg}
	for t := Tier(0); t < numTiers; t++ {
		if n := cfg.Budget(t); n > 0 {
			a.mem[t] = make([]byte, n)
		}
	}
	return a
}

// Alloc returns a zeroed slice of n elements of T from tier t.
func Alloc[T tensor.Elem](a *Arena, t Tier, n int) ([]T, error) {
	if n <= 0 {
		return nil, fmt.Errorf("alloc %d elements on %s: invalid length", n, t)
	}
	size := n * tensor.PrecisionOf[T]().Size()

	a.mu.Lock()
	defer a.mu.Unlock()

	off := (a.used[t] + align - 1) &^ (align - 1)
	if off+size > len(a.mem[t]) {
		return nil, fmt.Errorf("alloc %d bytes on %s (%d of %d used): %w",
			size, t, a.used[t], len(a.mem[t]), ErrOutOfMemory)
	}
	a.used[t] = off + size

	buf := a.mem[t][off : off+size]
	clear(buf)
	//nolint:gosec // unsafe.Slice for zero-copy typed views, bounds checked above
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n), nil
}

// MustAlloc is Alloc for static network setup, where running out of a tier
// is a configuration bug.
func MustAlloc[T tensor.Elem](a *Arena, t Tier, n int) []T {
	s, err := Alloc[T](a, t, n)
	if err != nil {
		panic(fmt.Sprintf("arena: %v", err))
	}
	return s
}

// Used returns the bytes allocated on tier t.
func (a *Arena) Used(t Tier) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used[t]
}

// Free returns the bytes still available on tier t.
func (a *Arena) Free(t Tier) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.mem[t]) - a.used[t]
}

// Reset releases every allocation. Slices previously returned must no
// longer be used.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.used = [numTiers]int{}
}

// Config returns the tier budgets of the arena.
func (a *Arena) Config() Config {
	return a.cfg
}

// Package parallel provides the fixed core team that every kernel forks on.
package parallel

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Config controls the size of a core team.
type Config struct {
	Cores    int // Number of cores in the team.
	MaxCores int // Upper bound accepted by NewTeam; 0 means no bound.
}

// DefaultConfig returns a team as wide as the host's physical cores.
func DefaultConfig() Config {
	return Config{
		Cores:    HostCores(),
		MaxCores: 0,
	}
}

// HostCores returns the number of physical cores, falling back to the
// logical CPU count when cpuid cannot tell.
func HostCores() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Chunk returns the half-open range [lo, hi) of n items owned by core id in
// a team of the given size. Every core gets ceil(n/cores) items except the
// tail; cores past the end get an empty range.
func Chunk(n, cores, id int) (lo, hi int) {
	blk := (n + cores - 1) / cores
	lo = min(id*blk, n)
	hi = min(lo+blk, n)
	return lo, hi
}

// Package memory models the two memory tiers of a compute cluster: a small
// fast scratchpad (L1) and a larger slow backing memory (L2) that is only
// reachable through explicit block transfers.
package memory

import (
	"errors"

	"github.com/klauspost/cpuid/v2"
)

// Tier identifies a memory region.
type Tier int

// Memory tiers.
const (
	L1 Tier = iota // fast, small, per-cluster scratchpad
	L2             // slow, large, backing memory
	numTiers
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case L1:
		return "L1"
	case L2:
		return "L2"
	default:
		return "unknown"
	}
}

// ErrOutOfMemory is returned when an allocation exceeds a tier's budget.
var ErrOutOfMemory = errors.New("memory tier exhausted")

// Config holds the byte budget of each tier.
type Config struct {
	L1Bytes int `yaml:"l1_bytes"`
	L2Bytes int `yaml:"l2_bytes"`
}

// Fallback budgets when the host cache sizes are unknown.
const (
	defaultL1Bytes = 256 << 10
	defaultL2Bytes = 4 << 20
)

// DefaultConfig sizes the tiers after the host caches: the fast tier gets
// the per-core L2 cache, the slow tier the shared L3 (or 16x the fast tier).
func DefaultConfig() Config {
	l1 := cpuid.CPU.Cache.L2
	if l1 <= 0 {
		l1 = defaultL1Bytes
	}
	l2 := cpuid.CPU.Cache.L3
	if l2 <= l1 {
		l2 = max(16*l1, defaultL2Bytes)
	}
	return Config{L1Bytes: l1, L2Bytes: l2}
}

// Budget returns the byte budget of tier t.
func (c Config) Budget(t Tier) int {
	switch t {
	case L1:
		return c.L1Bytes
	case L2:
		return c.L2Bytes
	default:
		return 0
	}
}

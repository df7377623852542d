//go:build nodma

package memory

// DMAEnabled reports whether staged transfers are compiled in.
const DMAEnabled = false

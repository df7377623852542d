//go:build !nodma

package memory

// DMAEnabled reports whether staged transfers are compiled in. Build with
// the nodma tag to turn every staged im2col into plain copies.
const DMAEnabled = true

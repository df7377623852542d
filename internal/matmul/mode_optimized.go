//go:build !reference

package matmul

// DefaultMode is the mode of managers built without an explicit one.
// Build with the reference tag to verify against the reference routine.
const DefaultMode = ModeOptimized

//go:build reference

package matmul

// DefaultMode is the mode of managers built without an explicit one.
const DefaultMode = ModeReference

package matmul

import "fmt"

// Mode selects between the optimised catalogue and the reference routine.
type Mode int

// Manager modes.
const (
	ModeOptimized Mode = iota
	ModeReference
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeReference {
		return "reference"
	}
	return "optimized"
}

// ParseMode is the inverse of Mode.String. The empty string yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "":
		return DefaultMode, nil
	case "optimized":
		return ModeOptimized, nil
	case "reference":
		return ModeReference, nil
	default:
		return DefaultMode, fmt.Errorf("unknown matmul mode %q", s)
	}
}

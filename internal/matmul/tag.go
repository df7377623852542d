package matmul

import (
	"fmt"

	"github.com/born-ml/clustertrain/internal/tensor"
)

// LayerKind identifies the layer issuing a multiply.
type LayerKind int

// Layer kinds.
const (
	Conv2D LayerKind = iota
	Linear
	PointWise
	DepthWise
)

// String returns the layer kind name.
func (l LayerKind) String() string {
	switch l {
	case Conv2D:
		return "conv2d"
	case Linear:
		return "linear"
	case PointWise:
		return "pointwise"
	case DepthWise:
		return "depthwise"
	default:
		return fmt.Sprintf("LayerKind(%d)", int(l))
	}
}

// ParseLayerKind is the inverse of LayerKind.String.
func ParseLayerKind(s string) (LayerKind, error) {
	for l := Conv2D; l <= DepthWise; l++ {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown layer kind %q", s)
}

// PassKind identifies a forward or backward step.
type PassKind int

// Pass kinds.
const (
	Forward PassKind = iota
	WeightGrad
	InputGrad
)

// String returns the pass kind name.
func (p PassKind) String() string {
	switch p {
	case Forward:
		return "forward"
	case WeightGrad:
		return "weight_grad"
	case InputGrad:
		return "input_grad"
	default:
		return fmt.Sprintf("PassKind(%d)", int(p))
	}
}

// ParsePassKind is the inverse of PassKind.String.
func ParsePassKind(s string) (PassKind, error) {
	for p := Forward; p <= InputGrad; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pass kind %q", s)
}

// Tag is the kernel selection key. It is fixed for the duration of one
// layer invocation.
type Tag struct {
	Layer     LayerKind
	Pass      PassKind
	Precision tensor.Precision
	Cores     int
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	return fmt.Sprintf("%s/%s/%s/%dc", t.Layer, t.Pass, t.Precision, t.Cores)
}

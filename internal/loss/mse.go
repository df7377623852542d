// Package loss implements the loss functions that seed a backward pass.
package loss

import "github.com/born-ml/clustertrain/internal/tensor"

// MSE computes Mean Squared Error loss.
//
//	Loss = mean((output - target)²)
//
// It writes the gradient of the loss into output.Diff, 2*(output-target)/n,
// and returns the loss. The sum runs in float32 for both precisions and on
// the calling goroutine; the output of a layer is small.
func MSE[T tensor.Elem](output *tensor.Blob[T], target []T) float32 {
	n := len(output.Data)
	if len(target) != n {
		panic("loss: output and target must have the same length")
	}

	meanval := 1 / float32(n)
	var sum float32
	for i, y := range output.Data {
		d := tensor.ToFloat32(y) - tensor.ToFloat32(target[i])
		sum += meanval * d * d
		output.Diff[i] = tensor.FromFloat32[T](2 * meanval * d)
	}
	return sum
}

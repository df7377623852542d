// Package main provides the clustertrain CLI: it trains a small
// conv2d → ReLU → linear network on a simulated compute cluster and checks
// the result against a reference run.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/x448/float16"

	"github.com/born-ml/clustertrain/internal/cluster"
	"github.com/born-ml/clustertrain/internal/config"
	"github.com/born-ml/clustertrain/internal/matmul"
	"github.com/born-ml/clustertrain/internal/model"
	"github.com/born-ml/clustertrain/internal/tensor"
	"github.com/born-ml/clustertrain/internal/verify"
)

const version = "v0.1.0-dev"

// Network data: a 4x4 ramp, a box-filter kernel and a linear layer picking
// opposite corners of the feature map.
var (
	input  = []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	conv0  = []float32{0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125}
	fc2    = []float32{0.5, 0, 0, 0.5, 0, 0.25, 0.25, 0}
	target = []float32{9.5, 5.0}
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("clustertrain %s\n", version)
		return
	}

	configPath := flag.String("config", "", "YAML cluster configuration (default: sized after the host)")
	cores := flag.Int("cores", 0, "Override the number of cores (0 = from configuration)")
	epochs := flag.Int("epochs", 5, "Number of training steps")
	lr := flag.Float64("lr", 0.01, "Learning rate for gradient descent")
	fp16 := flag.Bool("fp16", false, "Train in half precision")
	tol := flag.Float64("tol", 1e-4, "Tolerance of the final output check (FP16 runs use at least 1e-2)")
	verbose := flag.Bool("v", false, "Print gradients and weights after training")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *cores > 0 {
		cfg.Cluster.Cores = *cores
	}

	fmt.Println("clustertrain - conv2d/relu/linear training on a core cluster")
	fmt.Printf("   Cores: %d, matmul: %s\n", cfg.Cluster.Cores, cfg.Cluster.MatmulMode)
	fmt.Printf("   L1: %d bytes, L2: %d bytes\n", cfg.Memory.L1Bytes, cfg.Memory.L2Bytes)

	if *fp16 {
		run[float16.Float16](cfg, *epochs, float32(*lr), max(*tol, 1e-2), *verbose)
	} else {
		run[float32](cfg, *epochs, float32(*lr), *tol, *verbose)
	}
}

func run[T tensor.Elem](cfg config.Config, epochs int, lr float32, tol float64, verbose bool) {
	c, err := cluster.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start cluster: %v", err)
	}
	defer c.Close()

	net := newNet[T](c, lr)
	tgt := tensor.FromFloat32Slice[T](target)

	fmt.Printf("\nInput (%s):\n", tensor.PrecisionOf[T]())
	printMatrix(tensor.ToFloat32Slice(net.Conv.Input.Data), net.Conv.Input.W)
	fmt.Printf("Label: %v\n", target)

	net.Forward()
	fmt.Printf("\nInitial output: %v\n", tensor.ToFloat32Slice(net.Output()))

	for epoch := 0; epoch < epochs; epoch++ {
		l := net.TrainStep(tgt)
		fmt.Printf("Epoch %2d/%d: Loss=%.6f\n", epoch+1, epochs, l)
	}

	net.Forward()
	out := tensor.ToFloat32Slice(net.Output())
	fmt.Printf("\nFinal output: %v\n", out)

	if verbose {
		printState(net)
	}

	st := c.Stats()
	fmt.Printf("\nDMA: %d transfers, %d bytes\n", st.DMA.Transfers, st.DMA.Bytes)
	calls := st.Routines[tensor.PrecisionOf[T]()]
	for _, sel := range matmul.Selectors() {
		if n := calls[sel]; n > 0 {
			fmt.Printf("   %-12s %d calls\n", sel, n)
		}
	}

	golden := reference(cfg, epochs, lr)
	report := verify.Compare(net.Output(), golden, tol)
	fmt.Printf("\nCheck against reference: %s\n", report)
	if !report.OK() {
		fmt.Println("\n*** UPDATED OUTPUT NOT MATCHING REFERENCE ***")
		os.Exit(1)
	}
}

func newNet[T tensor.Elem](c *cluster.Cluster, lr float32) *model.Net[T] {
	net, err := model.New[T](c, model.DefaultTopology(), lr)
	if err != nil {
		log.Fatalf("Failed to build network: %v", err)
	}
	net.SetInput(input)
	net.SetWeights(conv0, fc2)
	return net
}

// reference trains the same network in FP32 on one core with the direct
// convolution and the reference matmul.
func reference(cfg config.Config, epochs int, lr float32) []float32 {
	cfg.Cluster.Cores = 1
	cfg.Cluster.MatmulMode = "reference"
	cfg.Layers = nil
	cfg.Tuning = nil

	c, err := cluster.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start reference cluster: %v", err)
	}
	defer c.Close()

	net := newNet[float32](c, lr)
	net.Conv.UseIm2col = false
	for epoch := 0; epoch < epochs; epoch++ {
		net.TrainStep(target)
	}
	net.Forward()
	return net.Output()
}

func printState[T tensor.Elem](net *model.Net[T]) {
	fmt.Printf("\nLayer 2 output gradient:\n%v\n", tensor.ToFloat32Slice(net.FC.Output.Diff))
	fmt.Printf("\nLayer 2 weight gradient:\n%v\n", tensor.ToFloat32Slice(net.FC.Coeff.Diff))
	fmt.Printf("\nLayer 2 input gradient:\n%v\n", tensor.ToFloat32Slice(net.FC.Input.Diff))
	fmt.Printf("\nLayer 1 input gradient:\n%v\n", tensor.ToFloat32Slice(net.Conv.Output.Diff))
	fmt.Printf("\nLayer 0 weight gradient:\n")
	printMatrix(tensor.ToFloat32Slice(net.Conv.Coeff.Diff), net.Conv.Coeff.W)
	fmt.Printf("\nLayer 0 weights:\n")
	printMatrix(tensor.ToFloat32Slice(net.Conv.Coeff.Data), net.Conv.Coeff.W)
	fmt.Printf("\nLayer 2 weights:\n%v\n", tensor.ToFloat32Slice(net.FC.Coeff.Data))
}

func printMatrix(v []float32, cols int) {
	for i := 0; i < len(v); i += cols {
		fmt.Printf("   %v\n", v[i:i+cols])
	}
}

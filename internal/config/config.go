// Package config holds the deployment settings of a cluster and the
// per-layer kernel choices of a network, loadable from YAML.
//
// A minimal file:
//
//	cluster:
//	  cores: 8
//	  matmul_mode: optimized
//	memory:
//	  l1_bytes: 131072
//	layers:
//	  - name: conv0
//	    kind: conv2d
//	    use_im2col: true
//	    matmul: {forward: unroll_4x4, weight_grad: unroll_2x4}
//	tuning:
//	  - {layer: linear, pass: forward, precision: fp32, routine: matvec}
//
// Fields left out keep the values of DefaultConfig.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/clustertrain/internal/matmul"
	"github.com/born-ml/clustertrain/internal/memory"
	"github.com/born-ml/clustertrain/internal/parallel"
	"github.com/born-ml/clustertrain/internal/tensor"
)

// Config is the root configuration.
type Config struct {
	Cluster Cluster       `yaml:"cluster"`
	Memory  memory.Config `yaml:"memory"`
	Layers  []Layer       `yaml:"layers"`
	Tuning  []TuningEntry `yaml:"tuning"`
}

// Cluster configures the core team and the matmul manager.
type Cluster struct {
	Cores      int    `yaml:"cores"`
	MatmulMode string `yaml:"matmul_mode"` // "optimized" or "reference"; empty keeps the build default
}

// Layer holds the kernel choices of one layer.
type Layer struct {
	Name         string       `yaml:"name"`
	Kind         string       `yaml:"kind"` // "conv2d" or "linear"
	Matmul       PassRoutines `yaml:"matmul"`
	UseIm2col    bool         `yaml:"use_im2col"`
	UseDMAIm2col bool         `yaml:"use_dma_im2col"`
}

// PassRoutines names the matmul routine of each pass. Empty means naive.
type PassRoutines struct {
	Forward    string `yaml:"forward"`
	WeightGrad string `yaml:"weight_grad"`
	InputGrad  string `yaml:"input_grad"`
}

// TuningEntry pins a routine for every call of a (layer kind, pass,
// precision, cores) tag, overriding the layer's own choice.
type TuningEntry struct {
	Layer     string `yaml:"layer"`
	Pass      string `yaml:"pass"`
	Precision string `yaml:"precision"`
	Cores     int    `yaml:"cores"` // 0 means the cluster's core count
	Routine   string `yaml:"routine"`
}

// DefaultConfig returns a configuration sized after the host: one core per
// physical core, tier budgets from the cache sizes, im2col enabled.
func DefaultConfig() Config {
	return Config{
		Cluster: Cluster{
			Cores:      parallel.DefaultConfig().Cores,
			MatmulMode: matmul.DefaultMode.String(),
		},
		Memory: memory.DefaultConfig(),
	}
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over DefaultConfig and validates the result.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks every field that has a closed set of values.
func (c *Config) Validate() error {
	if c.Cluster.Cores <= 0 {
		return invalid("cluster.cores", c.Cluster.Cores, "must be positive")
	}
	if _, err := c.Mode(); err != nil {
		return invalid("cluster.matmul_mode", c.Cluster.MatmulMode, err.Error())
	}
	if c.Memory.L1Bytes <= 0 {
		return invalid("memory.l1_bytes", c.Memory.L1Bytes, "must be positive")
	}
	if c.Memory.L2Bytes <= 0 {
		return invalid("memory.l2_bytes", c.Memory.L2Bytes, "must be positive")
	}

	seen := make(map[string]bool, len(c.Layers))
	for i, l := range c.Layers {
		field := fmt.Sprintf("layers[%d]", i)
		if l.Name == "" {
			return invalid(field+".name", nil, "must not be empty")
		}
		if seen[l.Name] {
			return invalid(field+".name", l.Name, "duplicate layer name")
		}
		seen[l.Name] = true

		kind, err := matmul.ParseLayerKind(l.Kind)
		if err != nil {
			return invalid(field+".kind", l.Kind, err.Error())
		}
		if kind != matmul.Conv2D && kind != matmul.Linear {
			return invalid(field+".kind", l.Kind, "no kernel for this layer kind")
		}
		if kind == matmul.Linear && (l.UseIm2col || l.UseDMAIm2col) {
			return invalid(field, l.Name, "im2col applies to conv2d layers only")
		}
		if _, _, _, err := l.Routines(); err != nil {
			return invalid(field+".matmul", nil, err.Error())
		}
	}

	for i, e := range c.Tuning {
		if _, _, err := e.Resolve(c.Cluster.Cores); err != nil {
			return invalid(fmt.Sprintf("tuning[%d]", i), nil, err.Error())
		}
	}
	return nil
}

// Mode returns the parsed matmul mode.
func (c *Config) Mode() (matmul.Mode, error) {
	return matmul.ParseMode(c.Cluster.MatmulMode)
}

// Layer returns the entry named name.
func (c *Config) Layer(name string) (Layer, error) {
	for _, l := range c.Layers {
		if l.Name == name {
			return l, nil
		}
	}
	return Layer{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// LayerOr returns the entry named name, or def when there is none.
func (c *Config) LayerOr(name string, def Layer) Layer {
	if l, err := c.Layer(name); err == nil {
		return l
	}
	return def
}

// Routines parses the per-pass routine names.
func (l Layer) Routines() (fw, wg, ig matmul.Selector, err error) {
	if fw, err = parseRoutine(l.Matmul.Forward); err != nil {
		return
	}
	if wg, err = parseRoutine(l.Matmul.WeightGrad); err != nil {
		return
	}
	ig, err = parseRoutine(l.Matmul.InputGrad)
	return
}

func parseRoutine(name string) (matmul.Selector, error) {
	if name == "" {
		return matmul.Naive, nil
	}
	return matmul.ParseSelector(name)
}

// Resolve parses the entry into a tag and a selector. cores fills in an
// unset core count.
func (e TuningEntry) Resolve(cores int) (matmul.Tag, matmul.Selector, error) {
	layer, err := matmul.ParseLayerKind(e.Layer)
	if err != nil {
		return matmul.Tag{}, 0, err
	}
	pass, err := matmul.ParsePassKind(e.Pass)
	if err != nil {
		return matmul.Tag{}, 0, err
	}
	prec := tensor.FP32
	if e.Precision != "" {
		if prec, err = tensor.ParsePrecision(e.Precision); err != nil {
			return matmul.Tag{}, 0, err
		}
	}
	sel, err := matmul.ParseSelector(e.Routine)
	if err != nil {
		return matmul.Tag{}, 0, err
	}
	if e.Cores < 0 {
		return matmul.Tag{}, 0, fmt.Errorf("negative core count %d", e.Cores)
	}
	if e.Cores > 0 {
		cores = e.Cores
	}
	return matmul.Tag{Layer: layer, Pass: pass, Precision: prec, Cores: cores}, sel, nil
}

package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

// ArtifactFormat identifies the JSON weight export read by LoadModel.
const ArtifactFormat = "coinscope.lstm/v1"

// Artifact is the serialized form of a trained sequence model.
type Artifact struct {
	Format   string          `json:"format"`
	Lookback int             `json:"lookback"`
	Features int             `json:"features"`
	Loss     string          `json:"loss"`
	Metrics  []string        `json:"metrics"`
	Layers   []LayerArtifact `json:"layers"`
}

type LayerArtifact struct {
	Type                string      `json:"type"`
	Units               int         `json:"units"`
	Activation          string      `json:"activation"`
	RecurrentActivation string      `json:"recurrent_activation,omitempty"`
	ReturnSequences     bool        `json:"return_sequences,omitempty"`
	Kernel              [][]float64 `json:"kernel"`
	RecurrentKernel     [][]float64 `json:"recurrent_kernel,omitempty"`
	Bias                []float64   `json:"bias"`
}

// LossFunc is a training objective or metric recorded in an artifact. Inference never
// calls it; it must be registered so that artifacts referring to it can be loaded.
type LossFunc func(yTrue, yPred []float64) float64

func meanSquaredError(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		s += d * d
	}
	return s / float64(len(yTrue))
}

func meanAbsoluteError(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yTrue[i] - yPred[i])
	}
	return s / float64(len(yTrue))
}

func huber(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := math.Abs(yTrue[i] - yPred[i])
		if d <= 1 {
			s += 0.5 * d * d
		} else {
			s += d - 0.5
		}
	}
	return s / float64(len(yTrue))
}

// DefaultCustomObjects returns the names every loader accepts out of the box.
func DefaultCustomObjects() map[string]LossFunc {
	return map[string]LossFunc{
		"mse":                 meanSquaredError,
		"mean_squared_error":  meanSquaredError,
		"mae":                 meanAbsoluteError,
		"mean_absolute_error": meanAbsoluteError,
		"huber":               huber,
	}
}

// BuiltinObject looks up a default registry entry by name.
func BuiltinObject(name string) (LossFunc, bool) {
	fn, ok := DefaultCustomObjects()[name]
	return fn, ok
}

// LoadOption configures LoadModel.
type LoadOption func(*loadConfig)

type loadConfig struct {
	objects  map[string]LossFunc
	lookback int
}

// WithCustomObject registers name so artifacts referring to it load.
func WithCustomObject(name string, fn LossFunc) LoadOption {
	return func(c *loadConfig) {
		c.objects[name] = fn
	}
}

// WithLookback makes LoadModel reject artifacts trained on a different window length.
func WithLookback(n int) LoadOption {
	return func(c *loadConfig) {
		c.lookback = n
	}
}

// LoadModel reads and validates an artifact from path.
func LoadModel(path string, opts ...LoadOption) (*Network, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return Build(a, opts...)
}

// Build validates a decoded artifact and assembles the network.
func Build(a Artifact, opts ...LoadOption) (*Network, error) {
	cfg := &loadConfig{objects: DefaultCustomObjects()}
	for _, opt := range opts {
		opt(cfg)
	}

	if a.Format != ArtifactFormat {
		return nil, fmt.Errorf("unsupported artifact format %q (want %q)", a.Format, ArtifactFormat)
	}
	if a.Lookback <= 0 {
		return nil, fmt.Errorf("artifact lookback must be positive")
	}
	if cfg.lookback > 0 && a.Lookback != cfg.lookback {
		return nil, fmt.Errorf("artifact lookback %d does not match configured %d", a.Lookback, cfg.lookback)
	}
	if a.Features == 0 {
		a.Features = 1
	}
	if a.Features != 1 {
		return nil, fmt.Errorf("artifact expects %d features, only univariate close series are supported", a.Features)
	}
	for _, name := range append([]string{a.Loss}, a.Metrics...) {
		if name == "" {
			continue
		}
		if _, ok := cfg.objects[name]; !ok {
			return nil, fmt.Errorf("unknown custom object %q; register it with WithCustomObject (known: %s)",
				name, strings.Join(objectNames(cfg.objects), ", "))
		}
	}
	if len(a.Layers) == 0 {
		return nil, fmt.Errorf("artifact has no layers")
	}

	net := &Network{lookback: a.Lookback, features: a.Features}
	in := a.Features
	for i, la := range a.Layers {
		l, err := buildLayer(la, in)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, la.Type, err)
		}
		net.layers = append(net.layers, l)
		in = l.outputSize()
	}
	return net, nil
}

func buildLayer(la LayerArtifact, in int) (layer, error) {
	if la.Units <= 0 {
		return nil, fmt.Errorf("units must be positive")
	}
	act, err := activation(la.Activation)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(la.Type) {
	case "lstm":
		recName := la.RecurrentActivation
		if recName == "" {
			recName = "sigmoid"
		}
		recAct, err := activation(recName)
		if err != nil {
			return nil, err
		}
		g := 4 * la.Units
		if err := checkMatrix("kernel", la.Kernel, in, g); err != nil {
			return nil, err
		}
		if err := checkMatrix("recurrent_kernel", la.RecurrentKernel, la.Units, g); err != nil {
			return nil, err
		}
		if len(la.Bias) != g {
			return nil, fmt.Errorf("bias has %d entries, want %d", len(la.Bias), g)
		}
		return &lstmLayer{
			units:           la.Units,
			kernel:          la.Kernel,
			recurrent:       la.RecurrentKernel,
			bias:            la.Bias,
			act:             act,
			recAct:          recAct,
			returnSequences: la.ReturnSequences,
		}, nil
	case "dense":
		if err := checkMatrix("kernel", la.Kernel, in, la.Units); err != nil {
			return nil, err
		}
		if len(la.Bias) != la.Units {
			return nil, fmt.Errorf("bias has %d entries, want %d", len(la.Bias), la.Units)
		}
		return &denseLayer{units: la.Units, kernel: la.Kernel, bias: la.Bias, act: act}, nil
	default:
		return nil, fmt.Errorf("unsupported layer type %q", la.Type)
	}
}

func checkMatrix(name string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%s has %d rows, want %d", name, len(m), rows)
	}
	for i, r := range m {
		if len(r) != cols {
			return fmt.Errorf("%s row %d has %d columns, want %d", name, i, len(r), cols)
		}
	}
	return nil
}

func objectNames(m map[string]LossFunc) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

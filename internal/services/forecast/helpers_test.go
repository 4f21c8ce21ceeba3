package forecast

import (
	"context"
	"sync/atomic"
)

// tinyArtifact is a 1-unit LSTM followed by a dense layer whose output is a constant
// bias when every weight is zero.
func tinyArtifact(lookback int, out float64) Artifact {
	return Artifact{
		Format:   ArtifactFormat,
		Lookback: lookback,
		Features: 1,
		Loss:     "mse",
		Layers: []LayerArtifact{
			{
				Type:                "lstm",
				Units:               1,
				Activation:          "tanh",
				RecurrentActivation: "sigmoid",
				Kernel:              [][]float64{{0, 0, 0, 0}},
				RecurrentKernel:     [][]float64{{0, 0, 0, 0}},
				Bias:                []float64{0, 0, 0, 0},
			},
			{
				Type:       "dense",
				Units:      1,
				Activation: "linear",
				Kernel:     [][]float64{{0}},
				Bias:       []float64{out},
			},
		},
	}
}

// lastValueModel predicts the final element of each window.
type lastValueModel struct {
	lookback int
	calls    atomic.Int32
}

func (m *lastValueModel) Lookback() int { return m.lookback }

func (m *lastValueModel) Predict(ctx context.Context, windows [][]float64) ([]float64, error) {
	m.calls.Add(1)
	out := make([]float64, len(windows))
	for i, w := range windows {
		out[i] = w[len(w)-1]
	}
	return out, nil
}

package forecast

import (
	"context"
	"math"
	"testing"
)

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func TestLSTMCellMatchesKerasEquations(t *testing.T) {
	// one unit, input weights only on the cell candidate, bias on every gate
	a := Artifact{
		Format:   ArtifactFormat,
		Lookback: 2,
		Layers: []LayerArtifact{{
			Type:                "lstm",
			Units:               1,
			Activation:          "tanh",
			RecurrentActivation: "sigmoid",
			Kernel:              [][]float64{{0.5, -0.25, 1.0, 0.75}},
			RecurrentKernel:     [][]float64{{0.1, 0.2, 0.3, 0.4}},
			Bias:                []float64{0.1, 1.0, 0, -0.1},
		}},
	}
	net, err := Build(a)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	xs := []float64{0.2, 0.6}
	h, c := 0.0, 0.0
	for _, x := range xs {
		i := sigmoid(0.5*x + 0.1*h + 0.1)
		f := sigmoid(-0.25*x + 0.2*h + 1.0)
		g := math.Tanh(1.0*x + 0.3*h)
		o := sigmoid(0.75*x + 0.4*h - 0.1)
		c = f*c + i*g
		h = o * math.Tanh(c)
	}

	got, err := net.Predict(context.Background(), [][]float64{xs})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got[0]-h) > 1e-12 {
		t.Fatalf("got %v, want %v", got[0], h)
	}
}

func TestNetworkRejectsWrongWindowLength(t *testing.T) {
	net, err := Build(tinyArtifact(30, 0.5))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := net.Predict(context.Background(), [][]float64{make([]float64, 10)}); err == nil {
		t.Fatalf("expected length error")
	}
}

func TestNetworkHonorsCancellation(t *testing.T) {
	net, _ := Build(tinyArtifact(30, 0.5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := net.Predict(ctx, [][]float64{make([]float64, 30)}); err == nil {
		t.Fatalf("expected context error")
	}
}

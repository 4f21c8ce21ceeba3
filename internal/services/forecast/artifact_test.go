package forecast

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArtifact(t *testing.T, a Artifact) string {
	t.Helper()
	raw, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadModelFromFile(t *testing.T) {
	path := writeArtifact(t, tinyArtifact(30, 0.5))
	net, err := LoadModel(path, WithLookback(30))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if net.Lookback() != 30 {
		t.Fatalf("lookback %d", net.Lookback())
	}
}

func TestLoadModelCustomObjects(t *testing.T) {
	a := tinyArtifact(30, 0.5)
	a.Loss = "directional_mse"
	a.Metrics = []string{"mae"}
	path := writeArtifact(t, a)

	_, err := LoadModel(path)
	if err == nil || !strings.Contains(err.Error(), "directional_mse") {
		t.Fatalf("expected unknown custom object error, got %v", err)
	}

	mse, _ := BuiltinObject("mse")
	if _, err := LoadModel(path, WithCustomObject("directional_mse", mse)); err != nil {
		t.Fatalf("load with registered object: %v", err)
	}
}

func TestBuildRejectsBadArtifacts(t *testing.T) {
	cases := map[string]func(a *Artifact){
		"format":   func(a *Artifact) { a.Format = "keras.h5" },
		"lookback": func(a *Artifact) { a.Lookback = 0 },
		"features": func(a *Artifact) { a.Features = 3 },
		"kernel":   func(a *Artifact) { a.Layers[0].Kernel = [][]float64{{0, 0}} },
		"bias":     func(a *Artifact) { a.Layers[1].Bias = nil },
		"type":     func(a *Artifact) { a.Layers[1].Type = "conv1d" },
		"act":      func(a *Artifact) { a.Layers[1].Activation = "swishy" },
	}
	for name, mutate := range cases {
		a := tinyArtifact(30, 0.5)
		mutate(&a)
		if _, err := Build(a); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Build(tinyArtifact(20, 0.5), WithLookback(30)); err == nil {
		t.Errorf("lookback mismatch accepted")
	}
}

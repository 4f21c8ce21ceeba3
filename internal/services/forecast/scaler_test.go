package forecast

import (
	"math"
	"testing"
)

func TestMinMaxScalerRoundTrip(t *testing.T) {
	vs := []float64{10, 20, 15, 30}
	s := FitMinMax(vs)
	scaled := s.TransformAll(vs)
	if scaled[0] != 0 || scaled[3] != 1 || math.Abs(scaled[2]-0.25) > 1e-12 {
		t.Fatalf("unexpected scaling %v", scaled)
	}
	for i, v := range scaled {
		if math.Abs(s.Inverse(v)-vs[i]) > 1e-9 {
			t.Fatalf("round trip %d: %v", i, s.Inverse(v))
		}
	}
}

func TestMinMaxScalerFlatSeries(t *testing.T) {
	s := FitMinMax([]float64{7, 7, 7})
	for _, v := range s.TransformAll([]float64{7, 7, 7}) {
		if v != 0 {
			t.Fatalf("flat series should scale to 0, got %v", v)
		}
	}
	if s.Inverse(0) != 7 {
		t.Fatalf("inverse of 0 should be 7, got %v", s.Inverse(0))
	}
}

func TestWindows(t *testing.T) {
	series := make([]float64, 35)
	for i := range series {
		series[i] = float64(i)
	}
	ws := Windows(series, 30)
	if len(ws) != 5 {
		t.Fatalf("expected 5 windows, got %d", len(ws))
	}
	for i, w := range ws {
		if len(w) != 30 || w[0] != float64(i) || w[29] != float64(i+29) {
			t.Fatalf("window %d wrong: %v", i, w)
		}
	}
	ws[0][0] = 99
	if series[0] != 0 {
		t.Fatalf("windows must not alias the series")
	}
	if Windows(series[:30], 30) != nil {
		t.Fatalf("exactly lookback values gives no windows")
	}
}

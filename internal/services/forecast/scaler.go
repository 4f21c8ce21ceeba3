package forecast

import "math"

// MinMaxScaler maps a series onto [0, 1] using the min and max of the series it was
// fitted on. A flat series has zero range, which is treated as a range of 1 so that
// every value scales to 0 and inverts back exactly.
type MinMaxScaler struct {
	Min   float64
	Max   float64
	scale float64
}

// FitMinMax derives the scaler from vs. Non-finite values are ignored.
func FitMinMax(vs []float64) MinMaxScaler {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 0
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	return MinMaxScaler{Min: lo, Max: hi, scale: rng}
}

func (s MinMaxScaler) Transform(v float64) float64 {
	return (v - s.Min) / s.scale
}

func (s MinMaxScaler) Inverse(v float64) float64 {
	return v*s.scale + s.Min
}

// TransformAll scales a copy of vs.
func (s MinMaxScaler) TransformAll(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = s.Transform(v)
	}
	return out
}

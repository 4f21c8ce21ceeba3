package forecast

// Windows slices series into overlapping windows of length lookback.
// Window i covers series[i : i+lookback] for i in [0, len-lookback); the window ending
// at the final element is not produced because it has no observed target.
// Windows share no memory with series.
func Windows(series []float64, lookback int) [][]float64 {
	n := len(series) - lookback
	if lookback <= 0 || n <= 0 {
		return nil
	}
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		w := make([]float64, lookback)
		copy(w, series[i:i+lookback])
		out[i] = w
	}
	return out
}

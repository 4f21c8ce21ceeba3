package features

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"

	"CoinScope/internal/domain/models"
)

// MovingAverageWindow is the trailing window used by price trends.
const MovingAverageWindow = 30

// ErrEmptySeries is returned by reductions that have no meaning on zero rows.
var ErrEmptySeries = errors.New("features: empty series")

// MovingAverage computes a trailing simple moving average aligned to closes.
// Positions before window-1 are undefined; so is any position whose window contains a
// non-finite close.
func MovingAverage(closes []float64, window int) []models.Metric {
	out := make([]models.Metric, len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}
	if allFinite(closes) {
		sma := talib.Sma(closes, window)
		for i := window - 1; i < len(closes); i++ {
			out[i] = models.NewMetric(sma[i])
		}
		return out
	}
	// talib keeps a running sum, so one NaN would poison every later position.
	for i := window - 1; i < len(closes); i++ {
		sum := 0.0
		for _, v := range closes[i-window+1 : i+1] {
			sum += v
		}
		out[i] = models.NewMetric(sum / float64(window))
	}
	return out
}

// Volatility is the population standard deviation (divide by N) of closes.
func Volatility(closes []float64) (models.Metric, error) {
	if len(closes) == 0 {
		return models.Undefined(), ErrEmptySeries
	}
	n := float64(len(closes))
	mean := 0.0
	for _, v := range closes {
		mean += v
	}
	mean /= n
	ss := 0.0
	for _, v := range closes {
		d := v - mean
		ss += d * d
	}
	return models.NewMetric(math.Sqrt(ss / n)), nil
}

// SupportResistance returns the minimum low and maximum high across rows.
func SupportResistance(rows []models.OHLC) (support, resistance models.Metric, err error) {
	if len(rows) == 0 {
		return models.Undefined(), models.Undefined(), ErrEmptySeries
	}
	lo, hi := rows[0].Low, rows[0].High
	for _, r := range rows[1:] {
		if r.Low < lo {
			lo = r.Low
		}
		if r.High > hi {
			hi = r.High
		}
	}
	return models.NewMetric(lo), models.NewMetric(hi), nil
}

// Performance is the signed percentage change from the first to the last close.
// A zero first close yields an undefined metric.
func Performance(closes []float64) (models.Metric, error) {
	if len(closes) == 0 {
		return models.Undefined(), ErrEmptySeries
	}
	first, last := closes[0], closes[len(closes)-1]
	if first == 0 {
		return models.Undefined(), nil
	}
	return models.NewMetric((last - first) / first * 100), nil
}

// Last returns the final close as a metric, undefined for an empty series.
func Last(closes []float64) models.Metric {
	if len(closes) == 0 {
		return models.Undefined()
	}
	return models.NewMetric(closes[len(closes)-1])
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

package models

import "time"

// TrendPoint is one row of the price-trend series. MovingAverage is undefined for the
// warm-up rows so the series stays aligned with the fetched timestamps.
type TrendPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Close         float64   `json:"close"`
	MovingAverage Metric    `json:"moving_average"`
}

// PriceTrends is the merged historical series plus an optional forecast.
type PriceTrends struct {
	AssetID   string       `json:"coin_id"`
	Timeframe string       `json:"timeframe"`
	From      time.Time    `json:"from"`
	To        time.Time    `json:"to"`
	Count     int          `json:"count"`
	Series    []TrendPoint `json:"series"`
	Forecast  *Forecast    `json:"forecast,omitempty"`
}

// Forecast holds model output in price units.
// Predictions are one-step-ahead reconstructions aligned to historical windows:
// Predictions[i] is the model's estimate for close[i+Lookback].
// Future is the optional chained rollout beyond the last known close.
type Forecast struct {
	Lookback    int      `json:"lookback"`
	Predictions []Metric `json:"predictions"`
	Future      []Metric `json:"future,omitempty"`
}

// ForecastReport is the forecast-only response.
type ForecastReport struct {
	AssetID   string    `json:"coin_id"`
	Timeframe string    `json:"timeframe"`
	LastClose float64   `json:"last_close"`
	LastAt    time.Time `json:"last_timestamp"`
	Forecast
}

type VolatilityReport struct {
	AssetID    string `json:"coin_id"`
	Timeframe  string `json:"timeframe"`
	Samples    int    `json:"samples"`
	Volatility Metric `json:"volatility"`
}

type SupportResistance struct {
	AssetID    string `json:"coin_id"`
	Timeframe  string `json:"timeframe"`
	Samples    int    `json:"samples"`
	Support    Metric `json:"support"`
	Resistance Metric `json:"resistance"`
}

// ErrorInfo is a sanitized, client-safe error description.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PerformanceEntry is the per-asset outcome of a comparison. Exactly one of
// PerformancePercentage (possibly undefined) or Error is meaningful.
type PerformanceEntry struct {
	AssetID               string     `json:"coin_id"`
	Samples               int        `json:"samples"`
	FirstClose            Metric     `json:"first_close"`
	LastClose             Metric     `json:"last_close"`
	PerformancePercentage Metric     `json:"performance_percentage"`
	Error                 *ErrorInfo `json:"error,omitempty"`
}

type PerformanceComparison struct {
	Timeframe string             `json:"timeframe"`
	Results   []PerformanceEntry `json:"results"`
}

// FeatureSummary is the structured input handed to the text-generation service.
type FeatureSummary struct {
	AssetID               string    `json:"coin_id"`
	Timeframe             string    `json:"timeframe"`
	From                  time.Time `json:"from"`
	To                    time.Time `json:"to"`
	Samples               int       `json:"samples"`
	LastClose             Metric    `json:"last_close"`
	MovingAverage         Metric    `json:"moving_average"`
	Volatility            Metric    `json:"volatility"`
	Support               Metric    `json:"support"`
	Resistance            Metric    `json:"resistance"`
	PerformancePercentage Metric    `json:"performance_percentage"`
}

type Commentary struct {
	AssetID   string         `json:"coin_id"`
	Timeframe string         `json:"timeframe"`
	Summary   FeatureSummary `json:"summary"`
	Text      string         `json:"commentary"`
	Cached    bool           `json:"cached"`
}

package models

import "time"

// OHLC is one open/high/low/close bucket for an asset. Rows are immutable and unique per
// (AssetID, Timestamp); analytics read them in ascending timestamp order.
type OHLC struct {
	AssetID   string    `json:"coin_id"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// Closes extracts the close column preserving row order.
func Closes(rows []OHLC) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Close
	}
	return out
}

// Window is the resolved [Start, End) interval a request analyses. Never persisted.
type Window struct {
	AssetID   string
	Timeframe string
	Start     time.Time
	End       time.Time
}

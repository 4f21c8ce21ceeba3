package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency and reuse.
// Timeframe is resolved by the window resolver rather than a oneof rule so that an
// unknown token surfaces as InvalidTimeframe.

type AssetWindowRequest struct {
	CoinID    string `query:"coin_id" json:"coin_id" validate:"required"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"month"`
}

// TimeframeRequiredRequest backs the legacy *_by_timeframe routes where timeframe is mandatory.
type TimeframeRequiredRequest struct {
	CoinID    string `query:"coin_id" json:"coin_id" validate:"required"`
	Timeframe string `query:"timeframe" json:"timeframe" validate:"required"`
}

type PriceTrendsRequest struct {
	CoinID    string `query:"coin_id" json:"coin_id" validate:"required"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"month"`
	Forecast  bool   `query:"forecast" json:"forecast"`
	Horizon   int    `query:"horizon" json:"horizon" validate:"gte=0,lte=30"`
}

type ForecastRequest struct {
	CoinID    string `query:"coin_id" json:"coin_id" validate:"required"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"month"`
	Horizon   int    `query:"horizon" json:"horizon" validate:"gte=0,lte=30"`
}

type PerformanceComparisonRequest struct {
	CoinIDs   []string `query:"coin_ids" json:"coin_ids"`
	Timeframe string   `query:"timeframe" json:"timeframe" default:"month"`
}

package repository

import (
	"context"
	"time"

	"CoinScope/internal/domain/models"
)

// OHLCStore is read-only access to persisted price history.
type OHLCStore interface {
	// FetchOHLC returns rows for assetID with timestamp >= start, ascending by timestamp.
	// No rows is not an error.
	FetchOHLC(ctx context.Context, assetID string, start time.Time) ([]models.OHLC, error)
	Health(ctx context.Context) error
}

type Metrics interface {
	RecordError(op, kind string)
	RecordLatency(op string, seconds float64)
	RecordLastPrice(assetID string, price float64)
	RecordRows(op string, n int)
}

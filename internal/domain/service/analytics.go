package service

import (
	"context"

	"CoinScope/internal/domain/models"
)

// Model is a loaded sequence regressor. Predict takes a batch of windows, each a
// Lookback()-long sequence of single-feature steps, and returns one scalar per window.
// Implementations must be safe for concurrent use and must not mutate their weights.
type Model interface {
	Lookback() int
	Predict(ctx context.Context, windows [][]float64) ([]float64, error)
}

// ModelProvider hands out the process-wide model, loading it on first use.
type ModelProvider interface {
	Model(ctx context.Context) (Model, error)
	Loaded() bool
}

// CommentaryGenerator turns a feature summary into natural-language text.
type CommentaryGenerator interface {
	Generate(ctx context.Context, summary models.FeatureSummary) (string, error)
}

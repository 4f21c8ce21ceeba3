package forecast

import (
	"context"
	"fmt"
	"math"

	"CoinScope/internal/domain/apperr"
	"CoinScope/internal/domain/models"
	"CoinScope/internal/domain/service"
	applogger "CoinScope/pkg/logger"
)

const (
	// DefaultLookback is the window length the bundled model was trained on.
	DefaultLookback = 30
	// MaxHorizon caps chained future steps.
	MaxHorizon = 30
)

// Engine turns a close series into model predictions in price units.
type Engine struct {
	provider service.ModelProvider
	lookback int
	l        *applogger.Logger
}

func NewEngine(provider service.ModelProvider, lookback int, l *applogger.Logger) *Engine {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Engine{provider: provider, lookback: lookback, l: l}
}

func (e *Engine) Lookback() int { return e.lookback }

// Ready reports whether the model has been loaded.
func (e *Engine) Ready() bool { return e.provider.Loaded() }

// Forecast scales closes by their own min/max, predicts one step ahead for every
// complete historical window in a single batch, and inverts the scaling.
// horizon > 0 additionally chains that many steps past the last close.
func (e *Engine) Forecast(ctx context.Context, closes []float64, horizon int) (models.Forecast, error) {
	if horizon < 0 || horizon > MaxHorizon {
		return models.Forecast{}, apperr.InvalidParameter("horizon", fmt.Sprintf("must be between 0 and %d", MaxHorizon))
	}
	if len(closes) <= e.lookback {
		return models.Forecast{}, apperr.InsufficientHistory(len(closes), e.lookback+1)
	}

	m, err := e.provider.Model(ctx)
	if err != nil {
		return models.Forecast{}, apperr.Internal("forecast model unavailable", err)
	}
	if m.Lookback() != e.lookback {
		return models.Forecast{}, apperr.Internal("forecast model misconfigured",
			fmt.Errorf("model lookback %d, engine lookback %d", m.Lookback(), e.lookback))
	}

	scaler := FitMinMax(closes)
	scaled := scaler.TransformAll(closes)
	windows := Windows(scaled, e.lookback)

	raw, err := m.Predict(ctx, windows)
	if err != nil {
		return models.Forecast{}, apperr.Internal("forecast failed", err)
	}
	if len(raw) != len(windows) {
		return models.Forecast{}, apperr.Internal("forecast failed",
			fmt.Errorf("model returned %d predictions for %d windows", len(raw), len(windows)))
	}

	out := models.Forecast{Lookback: e.lookback, Predictions: make([]models.Metric, len(raw))}
	for i, v := range raw {
		out.Predictions[i] = models.NewMetric(scaler.Inverse(v))
	}

	if horizon > 0 {
		future, err := e.rollout(ctx, m, scaled[len(scaled)-e.lookback:], horizon)
		if err != nil {
			return models.Forecast{}, apperr.Internal("forecast failed", err)
		}
		out.Future = make([]models.Metric, horizon)
		for i, v := range future {
			out.Future[i] = models.NewMetric(scaler.Inverse(v))
		}
	}

	e.l.Debug("forecast computed",
		applogger.Int("closes", len(closes)),
		applogger.Int("windows", len(windows)),
		applogger.Int("horizon", horizon),
	)
	return out, nil
}

// rollout feeds each prediction back as the newest step. It stops at the first
// non-finite prediction; the caller reports the remaining steps as undefined.
func (e *Engine) rollout(ctx context.Context, m service.Model, last []float64, horizon int) ([]float64, error) {
	window := append(make([]float64, 0, len(last)+horizon), last...)
	out := make([]float64, 0, horizon)
	for step := 0; step < horizon; step++ {
		cur := window[len(window)-e.lookback:]
		p, err := m.Predict(ctx, [][]float64{cur})
		if err != nil {
			return nil, err
		}
		if len(p) != 1 || math.IsNaN(p[0]) || math.IsInf(p[0], 0) {
			break
		}
		out = append(out, p[0])
		window = append(window, p[0])
	}
	return out, nil
}

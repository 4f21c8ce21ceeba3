package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"CoinScope/internal/domain/apperr"
	"CoinScope/internal/domain/models"
	domrepo "CoinScope/internal/domain/repository"
	domsvc "CoinScope/internal/domain/service"
	"CoinScope/internal/services/features"
	applogger "CoinScope/pkg/logger"
)

// Forecaster produces model predictions for a close series.
type Forecaster interface {
	Forecast(ctx context.Context, closes []float64, horizon int) (models.Forecast, error)
	Ready() bool
}

// cachedGenerator is implemented by generators that can report cache hits.
type cachedGenerator interface {
	GenerateCached(ctx context.Context, summary models.FeatureSummary) (string, bool, error)
}

// AnalyticsUseCase resolves windows, loads history and assembles analytics responses.
type AnalyticsUseCase struct {
	store       domrepo.OHLCStore
	resolver    *domrepo.WindowResolver
	forecaster  Forecaster
	commentary  domsvc.CommentaryGenerator
	metrics     domrepo.Metrics
	l           *applogger.Logger
	concurrency int
	maxAssets   int
}

type Option func(*AnalyticsUseCase)

// WithCommentary enables the commentary operation.
func WithCommentary(g domsvc.CommentaryGenerator) Option {
	return func(uc *AnalyticsUseCase) { uc.commentary = g }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(uc *AnalyticsUseCase) { uc.metrics = m }
}

func WithLogger(l *applogger.Logger) Option {
	return func(uc *AnalyticsUseCase) { uc.l = l }
}

// WithBatchLimits bounds performance comparison fan-out and request size.
func WithBatchLimits(concurrency, maxAssets int) Option {
	return func(uc *AnalyticsUseCase) {
		uc.concurrency = concurrency
		uc.maxAssets = maxAssets
	}
}

func NewAnalyticsUseCase(store domrepo.OHLCStore, resolver *domrepo.WindowResolver, forecaster Forecaster, opts ...Option) *AnalyticsUseCase {
	uc := &AnalyticsUseCase{
		store:       store,
		resolver:    resolver,
		forecaster:  forecaster,
		l:           applogger.Nop(),
		concurrency: 4,
		maxAssets:   50,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CommentaryEnabled reports whether a generator is configured.
func (uc *AnalyticsUseCase) CommentaryEnabled() bool { return uc.commentary != nil }

// ForecastReady reports whether the forecast model is loaded.
func (uc *AnalyticsUseCase) ForecastReady() bool { return uc.forecaster.Ready() }

// Ping checks the store.
func (uc *AnalyticsUseCase) Ping(ctx context.Context) error { return uc.store.Health(ctx) }

type PriceTrendsParams struct {
	AssetID   string
	Timeframe string
	Forecast  bool
	Horizon   int
}

// PriceTrends returns the close series with its 30-period moving average and, when
// requested, the model forecast over the same closes.
func (uc *AnalyticsUseCase) PriceTrends(ctx context.Context, p PriceTrendsParams) (res *models.PriceTrends, err error) {
	defer uc.observe("price_trends", time.Now(), &err)

	w, rows, err := uc.load(ctx, "price_trends", p.AssetID, p.Timeframe)
	if err != nil {
		return nil, err
	}
	closes := models.Closes(rows)
	ma := features.MovingAverage(closes, features.MovingAverageWindow)

	res = &models.PriceTrends{
		AssetID:   w.AssetID,
		Timeframe: w.Timeframe,
		From:      w.Start,
		To:        w.End,
		Count:     len(rows),
		Series:    make([]models.TrendPoint, len(rows)),
	}
	for i, r := range rows {
		res.Series[i] = models.TrendPoint{Timestamp: r.Timestamp, Close: r.Close, MovingAverage: ma[i]}
	}

	if p.Forecast || p.Horizon > 0 {
		fc, err := uc.forecaster.Forecast(ctx, closes, p.Horizon)
		if err != nil {
			return nil, err
		}
		res.Forecast = &fc
	}
	return res, nil
}

// Volatility returns the population standard deviation of closes in the window.
func (uc *AnalyticsUseCase) Volatility(ctx context.Context, assetID, timeframe string) (res *models.VolatilityReport, err error) {
	defer uc.observe("volatility", time.Now(), &err)

	w, rows, err := uc.load(ctx, "volatility", assetID, timeframe)
	if err != nil {
		return nil, err
	}
	vol, err := features.Volatility(models.Closes(rows))
	if err != nil {
		return nil, apperr.Internal("failed to compute volatility", err)
	}
	return &models.VolatilityReport{
		AssetID:    w.AssetID,
		Timeframe:  w.Timeframe,
		Samples:    len(rows),
		Volatility: vol,
	}, nil
}

// SupportResistance returns the minimum low and maximum high in the window.
func (uc *AnalyticsUseCase) SupportResistance(ctx context.Context, assetID, timeframe string) (res *models.SupportResistance, err error) {
	defer uc.observe("support_resistance", time.Now(), &err)

	w, rows, err := uc.load(ctx, "support_resistance", assetID, timeframe)
	if err != nil {
		return nil, err
	}
	sup, resist, err := features.SupportResistance(rows)
	if err != nil {
		return nil, apperr.Internal("failed to compute support and resistance", err)
	}
	return &models.SupportResistance{
		AssetID:    w.AssetID,
		Timeframe:  w.Timeframe,
		Samples:    len(rows),
		Support:    sup,
		Resistance: resist,
	}, nil
}

// ComparePerformance computes the window performance of each asset independently.
// A failing asset is reported in its own entry; results keep the input order.
func (uc *AnalyticsUseCase) ComparePerformance(ctx context.Context, assetIDs []string, timeframe string) (res *models.PerformanceComparison, err error) {
	defer uc.observe("performance_comparison", time.Now(), &err)

	tf, err := domrepo.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, apperr.MissingParameter("coin_ids")
	}
	if uc.maxAssets > 0 && len(ids) > uc.maxAssets {
		return nil, apperr.InvalidParameter("coin_ids", fmt.Sprintf("at most %d assets per request", uc.maxAssets))
	}

	results := make([]models.PerformanceEntry, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = uc.performanceEntry(gctx, id, string(tf))
			return nil
		})
	}
	_ = g.Wait()

	return &models.PerformanceComparison{Timeframe: string(tf), Results: results}, nil
}

func (uc *AnalyticsUseCase) performanceEntry(ctx context.Context, assetID, timeframe string) models.PerformanceEntry {
	entry := models.PerformanceEntry{AssetID: assetID}
	_, rows, err := uc.load(ctx, "performance_comparison", assetID, timeframe)
	if err != nil {
		code, msg := apperr.Public(err)
		entry.Error = &models.ErrorInfo{Code: code, Message: msg}
		return entry
	}
	closes := models.Closes(rows)
	perf, err := features.Performance(closes)
	if err != nil {
		code, msg := apperr.Public(apperr.Internal("failed to compute performance", err))
		entry.Error = &models.ErrorInfo{Code: code, Message: msg}
		return entry
	}
	entry.Samples = len(rows)
	entry.FirstClose = models.NewMetric(closes[0])
	entry.LastClose = features.Last(closes)
	entry.PerformancePercentage = perf
	return entry
}

// Forecast returns model predictions for the window without the historical series.
func (uc *AnalyticsUseCase) Forecast(ctx context.Context, assetID, timeframe string, horizon int) (res *models.ForecastReport, err error) {
	defer uc.observe("forecast", time.Now(), &err)

	w, rows, err := uc.load(ctx, "forecast", assetID, timeframe)
	if err != nil {
		return nil, err
	}
	fc, err := uc.forecaster.Forecast(ctx, models.Closes(rows), horizon)
	if err != nil {
		return nil, err
	}
	last := rows[len(rows)-1]
	return &models.ForecastReport{
		AssetID:   w.AssetID,
		Timeframe: w.Timeframe,
		LastClose: last.Close,
		LastAt:    last.Timestamp,
		Forecast:  fc,
	}, nil
}

// Summary reduces the window to the scalar features handed to text generation.
func (uc *AnalyticsUseCase) Summary(ctx context.Context, assetID, timeframe string) (res *models.FeatureSummary, err error) {
	defer uc.observe("summary", time.Now(), &err)

	w, rows, err := uc.load(ctx, "summary", assetID, timeframe)
	if err != nil {
		return nil, err
	}
	return summarize(w, rows)
}

// Commentary generates narrative text for the window's feature summary.
func (uc *AnalyticsUseCase) Commentary(ctx context.Context, assetID, timeframe string) (res *models.Commentary, err error) {
	defer uc.observe("commentary", time.Now(), &err)

	if uc.commentary == nil {
		return nil, apperr.Unavailable("commentary is not enabled")
	}
	w, rows, err := uc.load(ctx, "commentary", assetID, timeframe)
	if err != nil {
		return nil, err
	}
	summary, err := summarize(w, rows)
	if err != nil {
		return nil, err
	}

	var text string
	var hit bool
	if cg, ok := uc.commentary.(cachedGenerator); ok {
		text, hit, err = cg.GenerateCached(ctx, *summary)
	} else {
		text, err = uc.commentary.Generate(ctx, *summary)
	}
	if err != nil {
		return nil, apperr.Internal("commentary generation failed", err)
	}
	return &models.Commentary{
		AssetID:   w.AssetID,
		Timeframe: w.Timeframe,
		Summary:   *summary,
		Text:      text,
		Cached:    hit,
	}, nil
}

func summarize(w models.Window, rows []models.OHLC) (*models.FeatureSummary, error) {
	closes := models.Closes(rows)
	vol, err := features.Volatility(closes)
	if err != nil {
		return nil, apperr.Internal("failed to compute volatility", err)
	}
	sup, resist, err := features.SupportResistance(rows)
	if err != nil {
		return nil, apperr.Internal("failed to compute support and resistance", err)
	}
	perf, err := features.Performance(closes)
	if err != nil {
		return nil, apperr.Internal("failed to compute performance", err)
	}
	ma := features.MovingAverage(closes, features.MovingAverageWindow)
	return &models.FeatureSummary{
		AssetID:               w.AssetID,
		Timeframe:             w.Timeframe,
		From:                  w.Start,
		To:                    w.End,
		Samples:               len(rows),
		LastClose:             features.Last(closes),
		MovingAverage:         ma[len(ma)-1],
		Volatility:            vol,
		Support:               sup,
		Resistance:            resist,
		PerformancePercentage: perf,
	}, nil
}

// load resolves the window and fetches its rows; an empty window is NoDataFound.
func (uc *AnalyticsUseCase) load(ctx context.Context, op, assetID, timeframe string) (models.Window, []models.OHLC, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return models.Window{}, nil, apperr.MissingParameter("coin_id")
	}
	w, err := uc.resolver.Resolve(assetID, timeframe)
	if err != nil {
		return models.Window{}, nil, err
	}
	rows, err := uc.store.FetchOHLC(ctx, w.AssetID, w.Start)
	if err != nil {
		uc.l.Error("load history failed",
			applogger.String("op", op),
			applogger.String("coin_id", w.AssetID),
			applogger.String("timeframe", w.Timeframe),
			applogger.Error(err),
		)
		return models.Window{}, nil, apperr.As(err)
	}
	if len(rows) == 0 {
		return models.Window{}, nil, apperr.NoDataFound(w.AssetID, w.Timeframe)
	}
	if uc.metrics != nil {
		uc.metrics.RecordRows(op, len(rows))
		uc.metrics.RecordLastPrice(w.AssetID, rows[len(rows)-1].Close)
	}
	return w, rows, nil
}

func (uc *AnalyticsUseCase) observe(op string, start time.Time, errp *error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RecordLatency(op, time.Since(start).Seconds())
	if errp != nil && *errp != nil {
		uc.metrics.RecordError(op, apperr.KindOf(*errp).String())
	}
}

package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"CoinScope/internal/domain/apperr"
	"CoinScope/internal/domain/models"
	domrepo "CoinScope/internal/domain/repository"
	"CoinScope/internal/services/forecast"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type memStore struct {
	mu   sync.Mutex
	rows map[string][]models.OHLC
	fail map[string]error
}

func (s *memStore) FetchOHLC(ctx context.Context, assetID string, start time.Time) ([]models.OHLC, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[assetID]; err != nil {
		return nil, err
	}
	var out []models.OHLC
	for _, r := range s.rows[assetID] {
		if !r.Timestamp.Before(start) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) Health(ctx context.Context) error { return nil }

// hourly rows ending at testNow, closes following f
func hourly(asset string, n int, f func(i int) float64) []models.OHLC {
	rows := make([]models.OHLC, n)
	for i := range rows {
		c := f(i)
		rows[i] = models.OHLC{
			AssetID:   asset,
			Timestamp: testNow.Add(-time.Duration(n-1-i) * 20 * time.Minute),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
		}
	}
	return rows
}

type echoModel struct{}

func (echoModel) Lookback() int { return 30 }

func (echoModel) Predict(ctx context.Context, windows [][]float64) ([]float64, error) {
	out := make([]float64, len(windows))
	for i, w := range windows {
		out[i] = w[len(w)-1]
	}
	return out, nil
}

func newUseCase(store domrepo.OHLCStore, opts ...Option) *AnalyticsUseCase {
	resolver := domrepo.NewWindowResolver(func() time.Time { return testNow })
	engine := forecast.NewEngine(forecast.NewStaticProvider(echoModel{}), 30, nil)
	return NewAnalyticsUseCase(store, resolver, engine, opts...)
}

func TestPriceTrendsEndToEnd(t *testing.T) {
	store := &memStore{rows: map[string][]models.OHLC{
		"BTC": hourly("BTC", 50, func(i int) float64 { return 60000 + float64(i)*10 }),
	}}
	uc := newUseCase(store)

	res, err := uc.PriceTrends(context.Background(), PriceTrendsParams{AssetID: "BTC", Timeframe: "day"})
	if err != nil {
		t.Fatalf("price trends: %v", err)
	}
	if res.Count != 50 || len(res.Series) != 50 {
		t.Fatalf("expected 50 points, got %d", len(res.Series))
	}
	for i, p := range res.Series {
		if i < 29 && p.MovingAverage.Valid {
			t.Fatalf("point %d should have no moving average", i)
		}
		if i >= 29 && !p.MovingAverage.Valid {
			t.Fatalf("point %d should have a moving average", i)
		}
		if i > 0 && !res.Series[i-1].Timestamp.Before(p.Timestamp) {
			t.Fatalf("series not ascending at %d", i)
		}
	}
	// mean of closes 20..49 is 60000 + 34.5*10
	if got := res.Series[49].MovingAverage.Value; math.Abs(got-60345) > 1e-6 {
		t.Fatalf("moving average %v", got)
	}
	if res.Forecast != nil {
		t.Fatalf("forecast not requested")
	}
	if res.Timeframe != "day" || !res.To.Equal(testNow) {
		t.Fatalf("window metadata %+v", res)
	}
}

func TestPriceTrendsWithForecast(t *testing.T) {
	store := &memStore{rows: map[string][]models.OHLC{
		"BTC": hourly("BTC", 50, func(i int) float64 { return 100 + float64(i) }),
	}}
	uc := newUseCase(store)

	res, err := uc.PriceTrends(context.Background(), PriceTrendsParams{AssetID: "BTC", Timeframe: "day", Forecast: true, Horizon: 2})
	if err != nil {
		t.Fatalf("price trends: %v", err)
	}
	if res.Forecast == nil || len(res.Forecast.Predictions) != 20 || len(res.Forecast.Future) != 2 {
		t.Fatalf("unexpected forecast %+v", res.Forecast)
	}
}

func TestPriceTrendsErrors(t *testing.T) {
	store := &memStore{rows: map[string][]models.OHLC{
		"BTC": hourly("BTC", 10, func(i int) float64 { return 1 }),
	}}
	uc := newUseCase(store)
	ctx := context.Background()

	_, err := uc.PriceTrends(ctx, PriceTrendsParams{AssetID: "BTC", Timeframe: "year"})
	if apperr.KindOf(err) != apperr.KindInvalidTimeframe {
		t.Fatalf("expected InvalidTimeframe, got %v", err)
	}
	_, err = uc.PriceTrends(ctx, PriceTrendsParams{AssetID: "UNKNOWN", Timeframe: "day"})
	if apperr.KindOf(err) != apperr.KindNoDataFound {
		t.Fatalf("expected NoDataFound, got %v", err)
	}
	_, err = uc.PriceTrends(ctx, PriceTrendsParams{AssetID: "BTC", Timeframe: "day", Forecast: true})
	if apperr.KindOf(err) != apperr.KindInsufficientHistory {
		t.Fatalf("expected InsufficientHistory, got %v", err)
	}
	_, err = uc.PriceTrends(ctx, PriceTrendsParams{AssetID: " ", Timeframe: "day"})
	if apperr.KindOf(err) != apperr.KindMissingParameter {
		t.Fatalf("expected MissingParameter, got %v", err)
	}
}

func TestVolatilityAndSupportResistance(t *testing.T) {
	closes := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	store := &memStore{rows: map[string][]models.OHLC{
		"ETH": hourly("ETH", len(closes), func(i int) float64 { return closes[i] }),
	}}
	uc := newUseCase(store)
	ctx := context.Background()

	vol, err := uc.Volatility(ctx, "ETH", "week")
	if err != nil {
		t.Fatalf("volatility: %v", err)
	}
	if math.Abs(vol.Volatility.Value-2) > 1e-9 || vol.Samples != 8 {
		t.Fatalf("unexpected volatility %+v", vol)
	}

	sr, err := uc.SupportResistance(ctx, "ETH", "")
	if err != nil {
		t.Fatalf("support/resistance: %v", err)
	}
	if sr.Support.Value != 1 || sr.Resistance.Value != 10 || sr.Timeframe != "month" {
		t.Fatalf("unexpected support/resistance %+v", sr)
	}
}

func TestComparePerformanceIsolatesFailures(t *testing.T) {
	store := &memStore{
		rows: map[string][]models.OHLC{
			"BTC":  hourly("BTC", 2, func(i int) float64 { return []float64{100, 150}[i] }),
			"ETH":  hourly("ETH", 2, func(i int) float64 { return []float64{100, 100}[i] }),
			"ZERO": hourly("ZERO", 2, func(i int) float64 { return []float64{0, 100}[i] }),
		},
		fail: map[string]error{"BROKEN": apperr.Internal("failed to load price history", errors.New("conn reset by 10.1.2.3"))},
	}
	uc := newUseCase(store, WithBatchLimits(2, 10))

	res, err := uc.ComparePerformance(context.Background(), []string{"BTC", "MISSING", "ETH", "BROKEN", "ZERO"}, "day")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(res.Results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(res.Results))
	}
	order := []string{"BTC", "MISSING", "ETH", "BROKEN", "ZERO"}
	for i, r := range res.Results {
		if r.AssetID != order[i] {
			t.Fatalf("result %d is %s, want %s", i, r.AssetID, order[i])
		}
	}
	if v := res.Results[0].PerformancePercentage; !v.Valid || math.Abs(v.Value-50) > 1e-9 {
		t.Fatalf("BTC performance %+v", v)
	}
	if res.Results[1].Error == nil || res.Results[1].Error.Code != "NO_DATA_FOUND" {
		t.Fatalf("MISSING should carry NoDataFound, got %+v", res.Results[1])
	}
	if v := res.Results[2].PerformancePercentage; !v.Valid || v.Value != 0 {
		t.Fatalf("ETH performance %+v", v)
	}
	if e := res.Results[3].Error; e == nil || e.Code != "INTERNAL" || e.Message != "failed to load price history" {
		t.Fatalf("BROKEN should carry a sanitized internal error, got %+v", e)
	}
	if r := res.Results[4]; r.Error != nil || r.PerformancePercentage.Valid {
		t.Fatalf("ZERO should be undefined without error, got %+v", r)
	}
}

func TestComparePerformanceValidation(t *testing.T) {
	uc := newUseCase(&memStore{}, WithBatchLimits(2, 2))
	ctx := context.Background()

	if _, err := uc.ComparePerformance(ctx, []string{"BTC"}, "year"); apperr.KindOf(err) != apperr.KindInvalidTimeframe {
		t.Fatalf("expected InvalidTimeframe, got %v", err)
	}
	if _, err := uc.ComparePerformance(ctx, []string{" ", ""}, "day"); apperr.KindOf(err) != apperr.KindMissingParameter {
		t.Fatalf("expected MissingParameter, got %v", err)
	}
	if _, err := uc.ComparePerformance(ctx, []string{"A", "B", "C"}, "day"); apperr.KindOf(err) != apperr.KindInvalidParameter {
		t.Fatalf("expected InvalidParameter, got %v", err)
	}
}

type stubGenerator struct{ calls int }

func (g *stubGenerator) Generate(ctx context.Context, s models.FeatureSummary) (string, error) {
	g.calls++
	return s.AssetID + " moved", nil
}

func TestCommentary(t *testing.T) {
	store := &memStore{rows: map[string][]models.OHLC{
		"SOL": hourly("SOL", 40, func(i int) float64 { return 20 + float64(i%5) }),
	}}
	ctx := context.Background()

	if _, err := newUseCase(store).Commentary(ctx, "SOL", "day"); apperr.KindOf(err) != apperr.KindUnavailable {
		t.Fatalf("expected Unavailable without generator, got %v", err)
	}

	gen := &stubGenerator{}
	uc := newUseCase(store, WithCommentary(gen))
	res, err := uc.Commentary(ctx, "SOL", "day")
	if err != nil {
		t.Fatalf("commentary: %v", err)
	}
	if res.Text != "SOL moved" || res.Summary.Samples != 40 || !res.Summary.MovingAverage.Valid {
		t.Fatalf("unexpected commentary %+v", res)
	}
}

func TestForecastReport(t *testing.T) {
	store := &memStore{rows: map[string][]models.OHLC{
		"BTC": hourly("BTC", 40, func(i int) float64 { return 10 + float64(i) }),
	}}
	res, err := newUseCase(store).Forecast(context.Background(), "BTC", "day", 1)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if res.LastClose != 49 || len(res.Predictions) != 10 || len(res.Future) != 1 {
		t.Fatalf("unexpected report %+v", res)
	}
}

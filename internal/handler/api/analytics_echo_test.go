package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"CoinScope/internal/domain/models"
	domrepo "CoinScope/internal/domain/repository"
	"CoinScope/internal/services/forecast"
	"CoinScope/internal/usecase"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	rows    map[string][]models.OHLC
	err     error
	pingErr error
}

func (s *fakeStore) FetchOHLC(ctx context.Context, assetID string, start time.Time) ([]models.OHLC, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.OHLC
	for _, r := range s.rows[assetID] {
		if !r.Timestamp.Before(start) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) Health(ctx context.Context) error { return s.pingErr }

type lastValue struct{}

func (lastValue) Lookback() int { return 30 }

func (lastValue) Predict(ctx context.Context, windows [][]float64) ([]float64, error) {
	out := make([]float64, len(windows))
	for i, w := range windows {
		out[i] = w[len(w)-1]
	}
	return out, nil
}

func series(asset string, n int) []models.OHLC {
	rows := make([]models.OHLC, n)
	for i := range rows {
		c := 100 + float64(i)
		rows[i] = models.OHLC{
			AssetID:   asset,
			Timestamp: testNow.Add(-time.Duration(n-1-i) * 20 * time.Minute),
			Open:      c,
			High:      c + 2,
			Low:       c - 2,
			Close:     c,
		}
	}
	return rows
}

func newTestEcho(store *fakeStore) *echo.Echo {
	resolver := domrepo.NewWindowResolver(func() time.Time { return testNow })
	engine := forecast.NewEngine(forecast.NewStaticProvider(lastValue{}), 30, nil)
	uc := usecase.NewAnalyticsUseCase(store, resolver, engine)

	e := echo.New()
	NewAnalyticsEchoHandler(nil, uc).RegisterRoutes(e)
	NewHealthHandler(nil, uc, true).RegisterRoutes(e)
	return e
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorItem struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Params  map[string]interface{} `json:"params"`
}

func get(t *testing.T, e *echo.Echo, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v (%s)", target, err, rec.Body.String())
	}
	if env.Status != rec.Code {
		t.Fatalf("envelope status %d != http status %d", env.Status, rec.Code)
	}
	return rec, env
}

func firstError(t *testing.T, env envelope) errorItem {
	t.Helper()
	var items []errorItem
	if err := json.Unmarshal(env.Data, &items); err != nil || len(items) == 0 {
		t.Fatalf("expected error list, got %s: %v", env.Data, err)
	}
	return items[0]
}

func TestPriceTrendsSeries(t *testing.T) {
	e := newTestEcho(&fakeStore{rows: map[string][]models.OHLC{"BTC": series("BTC", 50)}})

	rec, env := get(t, e, "/api/price_trends?coin_id=BTC&timeframe=day")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Count  int `json:"count"`
		Series []struct {
			Close         float64  `json:"close"`
			MovingAverage *float64 `json:"moving_average"`
		} `json:"series"`
		Forecast *json.RawMessage `json:"forecast"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if res.Count != 50 || len(res.Series) != 50 {
		t.Fatalf("expected 50 points, got count=%d len=%d", res.Count, len(res.Series))
	}
	for i := 0; i < 29; i++ {
		if res.Series[i].MovingAverage != nil {
			t.Fatalf("point %d should have null moving average", i)
		}
	}
	if res.Series[29].MovingAverage == nil || *res.Series[29].MovingAverage != 114.5 {
		t.Fatalf("unexpected moving average at 29: %v", res.Series[29].MovingAverage)
	}
	if res.Forecast != nil {
		t.Fatalf("forecast not requested")
	}
}

func TestPriceTrendsWithForecast(t *testing.T) {
	e := newTestEcho(&fakeStore{rows: map[string][]models.OHLC{"BTC": series("BTC", 35)}})

	rec, env := get(t, e, "/api/price_trends?coin_id=BTC&timeframe=day&forecast=true&horizon=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Forecast struct {
			Predictions []*float64 `json:"predictions"`
			Future      []*float64 `json:"future"`
		} `json:"forecast"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Forecast.Predictions) != 5 || len(res.Forecast.Future) != 3 {
		t.Fatalf("predictions=%d future=%d", len(res.Forecast.Predictions), len(res.Forecast.Future))
	}
}

func TestErrorClassification(t *testing.T) {
	store := &fakeStore{rows: map[string][]models.OHLC{
		"BTC":   series("BTC", 50),
		"SHORT": series("SHORT", 10),
	}}
	e := newTestEcho(store)

	cases := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"missing coin", "/api/volatility?timeframe=day", http.StatusBadRequest, "MISSING_PARAMETER"},
		{"bad timeframe", "/api/volatility?coin_id=BTC&timeframe=year", http.StatusBadRequest, "INVALID_TIMEFRAME"},
		{"unknown asset", "/api/support_resistance?coin_id=NOPE&timeframe=day", http.StatusNotFound, "NO_DATA_FOUND"},
		{"short history", "/api/forecast?coin_id=SHORT&timeframe=day", http.StatusUnprocessableEntity, "INSUFFICIENT_HISTORY"},
		{"horizon too large", "/api/forecast?coin_id=BTC&horizon=31", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"legacy route needs timeframe", "/api/support_resistance_by_timeframe?coin_id=BTC", http.StatusBadRequest, "MISSING_PARAMETER"},
		{"commentary disabled", "/api/commentary?coin_id=BTC&timeframe=day", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := get(t, e, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tc.status, rec.Body.String())
			}
			if got := firstError(t, env).Code; got != tc.code {
				t.Fatalf("code %s, want %s", got, tc.code)
			}
		})
	}
}

func TestInvalidTimeframeListsOptions(t *testing.T) {
	e := newTestEcho(&fakeStore{})
	_, env := get(t, e, "/api/price_trends?coin_id=BTC&timeframe=year")
	item := firstError(t, env)
	opts, ok := item.Params["options"].([]interface{})
	if !ok || len(opts) != 5 {
		t.Fatalf("expected 5 timeframe options, got %v", item.Params["options"])
	}
}

func TestInternalErrorIsSanitized(t *testing.T) {
	e := newTestEcho(&fakeStore{err: errors.New("dial tcp 10.0.0.5:5432: password=hunter2 rejected")})

	rec, env := get(t, e, "/api/volatility?coin_id=BTC&timeframe=day")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") || strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("driver details leaked: %s", rec.Body.String())
	}
	if item := firstError(t, env); item.Code != "INTERNAL" || item.Message != "internal error" {
		t.Fatalf("unexpected error item %+v", item)
	}
}

func TestPerformanceComparisonIsolatesFailures(t *testing.T) {
	e := newTestEcho(&fakeStore{rows: map[string][]models.OHLC{
		"BTC": series("BTC", 10),
		"ETH": series("ETH", 10),
	}})

	rec, env := get(t, e, "/api/performance_comparison?coin_ids=BTC,NOPE&coin_ids=ETH&timeframe=day")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Results []struct {
			AssetID string     `json:"coin_id"`
			Perf    *float64   `json:"performance_percentage"`
			Error   *errorItem `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res.Results))
	}
	want := []string{"BTC", "NOPE", "ETH"}
	for i, r := range res.Results {
		if r.AssetID != want[i] {
			t.Fatalf("order: got %s at %d, want %s", r.AssetID, i, want[i])
		}
	}
	if res.Results[0].Perf == nil || res.Results[0].Error != nil {
		t.Fatalf("BTC should succeed: %+v", res.Results[0])
	}
	if res.Results[1].Error == nil || res.Results[1].Error.Code != "NO_DATA_FOUND" {
		t.Fatalf("NOPE should carry NO_DATA_FOUND: %+v", res.Results[1])
	}
}

func TestPerformanceComparisonRequiresIDs(t *testing.T) {
	e := newTestEcho(&fakeStore{})
	rec, env := get(t, e, "/api/performance_comparison?timeframe=day")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	if code := firstError(t, env).Code; code != "MISSING_PARAMETER" {
		t.Fatalf("code %s", code)
	}
}

func TestHealthProbes(t *testing.T) {
	store := &fakeStore{}
	e := newTestEcho(store)

	if rec, _ := get(t, e, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz %d", rec.Code)
	}
	if rec, _ := get(t, e, "/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("readyz %d", rec.Code)
	}

	store.pingErr = errors.New("connection refused")
	rec, env := get(t, e, "/readyz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with dead store: %d", rec.Code)
	}
	var checks map[string]string
	if err := json.Unmarshal(env.Data, &checks); err != nil || checks["store"] != "unavailable" {
		t.Fatalf("checks %s: %v", env.Data, err)
	}
}

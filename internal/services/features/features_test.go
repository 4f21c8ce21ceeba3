package features

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"CoinScope/internal/domain/models"
)

const eps = 1e-9

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestMovingAverageWarmupAndValues(t *testing.T) {
	closes := series(50, func(i int) float64 { return 100 + float64(i)*1.5 + math.Sin(float64(i)) })
	ma := MovingAverage(closes, MovingAverageWindow)
	if len(ma) != len(closes) {
		t.Fatalf("length %d != %d", len(ma), len(closes))
	}
	for i := 0; i < 29; i++ {
		if ma[i].Valid {
			t.Fatalf("position %d should be undefined", i)
		}
	}
	for i := 29; i < len(closes); i++ {
		sum := 0.0
		for _, v := range closes[i-29 : i+1] {
			sum += v
		}
		want := sum / 30
		if !ma[i].Valid || math.Abs(ma[i].Value-want) > 1e-6 {
			t.Fatalf("position %d: got %+v want %v", i, ma[i], want)
		}
	}
}

func TestMovingAverageShortSeries(t *testing.T) {
	ma := MovingAverage([]float64{1, 2, 3}, MovingAverageWindow)
	for i, m := range ma {
		if m.Valid {
			t.Fatalf("position %d should be undefined", i)
		}
	}
}

func TestMovingAverageNonFinite(t *testing.T) {
	closes := series(40, func(i int) float64 { return 10 })
	closes[5] = math.NaN()
	ma := MovingAverage(closes, MovingAverageWindow)
	if ma[30].Valid {
		t.Fatalf("window containing NaN should be undefined")
	}
	if !ma[35].Valid || math.Abs(ma[35].Value-10) > eps {
		t.Fatalf("window after NaN should recover, got %+v", ma[35])
	}
}

func TestVolatility(t *testing.T) {
	v, err := Volatility([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if err != nil {
		t.Fatalf("volatility: %v", err)
	}
	if math.Abs(v.Value-2) > eps {
		t.Fatalf("population std should be 2, got %v", v.Value)
	}

	one, err := Volatility([]float64{42})
	if err != nil || !one.Valid || one.Value != 0 {
		t.Fatalf("single row should be 0, got %+v %v", one, err)
	}

	if _, err := Volatility(nil); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestVolatilityPermutationInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	closes := series(64, func(int) float64 { return 1000 * r.Float64() })
	base, _ := Volatility(closes)
	for k := 0; k < 5; k++ {
		shuffled := append([]float64(nil), closes...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, _ := Volatility(shuffled)
		if math.Abs(got.Value-base.Value) > 1e-9 {
			t.Fatalf("permutation changed volatility: %v vs %v", got.Value, base.Value)
		}
	}
}

func TestSupportResistanceBounds(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	now := time.Now()
	rows := make([]models.OHLC, 40)
	for i := range rows {
		low := 50 + r.Float64()*10
		rows[i] = models.OHLC{AssetID: "BTC", Timestamp: now.Add(time.Duration(i) * time.Minute), Low: low, High: low + r.Float64()*5}
	}
	sup, res, err := SupportResistance(rows)
	if err != nil {
		t.Fatalf("support/resistance: %v", err)
	}
	var hitLow, hitHigh bool
	for _, row := range rows {
		if sup.Value > row.Low || res.Value < row.High {
			t.Fatalf("bounds violated by %+v", row)
		}
		hitLow = hitLow || row.Low == sup.Value
		hitHigh = hitHigh || row.High == res.Value
	}
	if !hitLow || !hitHigh {
		t.Fatalf("bounds not attained")
	}

	sup, res, _ = SupportResistance(rows[:1])
	if sup.Value != rows[0].Low || res.Value != rows[0].High {
		t.Fatalf("single row should return its own low/high")
	}
}

func TestPerformance(t *testing.T) {
	cases := []struct {
		closes []float64
		want   models.Metric
	}{
		{[]float64{100, 150}, models.NewMetric(50)},
		{[]float64{100, 100}, models.NewMetric(0)},
		{[]float64{200, 120, 100}, models.NewMetric(-50)},
		{[]float64{0, 100}, models.Undefined()},
	}
	for _, c := range cases {
		got, err := Performance(c.closes)
		if err != nil {
			t.Fatalf("%v: %v", c.closes, err)
		}
		if got.Valid != c.want.Valid || math.Abs(got.Value-c.want.Value) > eps {
			t.Errorf("%v: got %+v want %+v", c.closes, got, c.want)
		}
	}
	if _, err := Performance(nil); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries")
	}
}

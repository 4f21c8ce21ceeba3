package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domrepo "CoinScope/internal/domain/repository"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
	rows        *prometheus.HistogramVec
}

var _ domrepo.Metrics = (*Recorder)(nil)

// New creates a recorder registered on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscope_errors_total",
				Help: "Total number of errors by operation and kind",
			},
			[]string{"operation", "kind"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinscope_last_close",
				Help: "Last close served for an asset",
			},
			[]string{"coin_id"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinscope_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		rows: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinscope_rows_loaded",
				Help:    "Rows loaded from the store per operation",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"operation"},
		),
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(op, kind string) {
	r.errorsTotal.WithLabelValues(op, kind).Inc()
}

// RecordLastPrice records the last close for an asset.
func (r *Recorder) RecordLastPrice(assetID string, price float64) {
	r.lastPrice.WithLabelValues(assetID).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordRows(op string, n int) {
	r.rows.WithLabelValues(op).Observe(float64(n))
}

package models

import (
	"encoding/json"
	"math"
)

// Metric is a derived number that may be undefined (warm-up positions, division by zero,
// degenerate math). An undefined Metric encodes as JSON null.
type Metric struct {
	Value float64
	Valid bool
}

// NewMetric wraps v. NaN and ±Inf collapse to the undefined marker.
func NewMetric(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Valid: true}
}

// Undefined returns the missing marker.
func Undefined() Metric { return Metric{} }

// Float64 returns the value and whether it is defined.
func (m Metric) Float64() (float64, bool) { return m.Value, m.Valid }

// Ptr returns nil for an undefined metric.
func (m Metric) Ptr() *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid || math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = NewMetric(v)
	return nil
}

// Metrics converts raw values, normalizing non-finite entries.
func Metrics(vs []float64) []Metric {
	out := make([]Metric, len(vs))
	for i, v := range vs {
		out[i] = NewMetric(v)
	}
	return out
}

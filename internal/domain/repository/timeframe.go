package repository

import (
	"strings"
	"time"

	"CoinScope/internal/domain/apperr"
	"CoinScope/internal/domain/models"
)

// Timeframe is a named look-back span ending at the current instant.
type Timeframe string

const (
	TFHour   Timeframe = "hour"
	TF4Hours Timeframe = "4hours"
	TFDay    Timeframe = "day"
	TFWeek   Timeframe = "week"
	TFMonth  Timeframe = "month"
)

var timeframeSpans = map[Timeframe]time.Duration{
	TFHour:   time.Hour,
	TF4Hours: 4 * time.Hour,
	TFDay:    24 * time.Hour,
	TFWeek:   7 * 24 * time.Hour,
	TFMonth:  30 * 24 * time.Hour,
}

// Timeframes lists the accepted tokens from shortest to longest span.
func Timeframes() []string {
	return []string{string(TFHour), string(TF4Hours), string(TFDay), string(TFWeek), string(TFMonth)}
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := timeframeSpans[tf]
	return ok
}

// DefaultTimeframe is used when a request carries no timeframe.
func DefaultTimeframe() Timeframe { return TFMonth }

// ParseTimeframe converts a raw token into a Timeframe. An empty token yields the
// default; anything unknown is an InvalidTimeframe error. Matching is case sensitive.
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTimeframe(), nil
	}
	tf := Timeframe(s)
	if !IsValidTimeframe(tf) {
		return "", apperr.InvalidTimeframe(s, Timeframes())
	}
	return tf, nil
}

// Span returns the look-back duration of tf, zero when tf is unknown.
func (tf Timeframe) Span() time.Duration { return timeframeSpans[tf] }

// WindowResolver maps (asset, timeframe) to a concrete time window.
type WindowResolver struct {
	now func() time.Time
}

// NewWindowResolver builds a resolver. A nil clock falls back to time.Now.
func NewWindowResolver(now func() time.Time) *WindowResolver {
	if now == nil {
		now = time.Now
	}
	return &WindowResolver{now: now}
}

// Resolve returns [now-span, now] for the given token.
func (r *WindowResolver) Resolve(assetID, token string) (models.Window, error) {
	tf, err := ParseTimeframe(token)
	if err != nil {
		return models.Window{}, err
	}
	end := r.now().UTC()
	return models.Window{
		AssetID:   assetID,
		Timeframe: string(tf),
		Start:     end.Add(-tf.Span()),
		End:       end,
	}, nil
}

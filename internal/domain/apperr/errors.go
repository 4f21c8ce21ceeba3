// Package apperr defines the typed outcomes analytics operations can fail with.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The zero value is KindInternal so that unclassified
// errors never masquerade as client errors.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidTimeframe
	KindMissingParameter
	KindNoDataFound
	KindInsufficientHistory
	KindUnavailable
	KindInvalidParameter
)

func (k Kind) String() string {
	switch k {
	case KindInvalidTimeframe:
		return "INVALID_TIMEFRAME"
	case KindMissingParameter:
		return "MISSING_PARAMETER"
	case KindNoDataFound:
		return "NO_DATA_FOUND"
	case KindInsufficientHistory:
		return "INSUFFICIENT_HISTORY"
	case KindUnavailable:
		return "SERVICE_UNAVAILABLE"
	case KindInvalidParameter:
		return "INVALID_PARAMETER"
	default:
		return "INTERNAL"
	}
}

// Error is a classified failure. Message is always safe to show to clients; Err keeps
// the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Params  map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: KindNoDataFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func newError(kind Kind, msg string, params map[string]interface{}) *Error {
	return &Error{Kind: kind, Message: msg, Params: params}
}

// InvalidTimeframe reports an unsupported timeframe token.
func InvalidTimeframe(token string, valid []string) *Error {
	return newError(KindInvalidTimeframe,
		fmt.Sprintf("invalid timeframe %q", token),
		map[string]interface{}{"timeframe": token, "options": valid})
}

// MissingParameter reports an absent required request parameter.
func MissingParameter(name string) *Error {
	return newError(KindMissingParameter,
		fmt.Sprintf("%s is required", name),
		map[string]interface{}{"parameter": name})
}

// InvalidParameter reports a present but unacceptable request parameter.
func InvalidParameter(name, reason string) *Error {
	return newError(KindInvalidParameter,
		fmt.Sprintf("%s: %s", name, reason),
		map[string]interface{}{"parameter": name})
}

// NoDataFound reports a query that succeeded but matched no rows.
func NoDataFound(assetID, timeframe string) *Error {
	return newError(KindNoDataFound,
		fmt.Sprintf("no data found for coin_id %q in timeframe %q", assetID, timeframe),
		map[string]interface{}{"coin_id": assetID, "timeframe": timeframe})
}

// InsufficientHistory reports a series too short for the forecast model.
func InsufficientHistory(have, need int) *Error {
	return newError(KindInsufficientHistory,
		fmt.Sprintf("forecast needs at least %d closing prices, got %d", need, have),
		map[string]interface{}{"have": have, "need": need})
}

// Unavailable reports a feature that is disabled or not ready.
func Unavailable(msg string) *Error {
	return newError(KindUnavailable, msg, nil)
}

// Internal wraps an unexpected failure. msg must not contain connection details.
func Internal(msg string, err error) *Error {
	e := newError(KindInternal, msg, nil)
	e.Err = err
	return e
}

// KindOf returns the kind of err, KindInternal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the classified error, wrapping unclassified ones as Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal error", err)
}

// Public returns the client-safe code and message for err.
func Public(err error) (code, message string) {
	e := As(err)
	if e.Message == "" {
		return e.Kind.String(), "internal error"
	}
	return e.Kind.String(), e.Message
}

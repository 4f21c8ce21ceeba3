package api

import (
	"net/http"

	"CoinScope/internal/domain/apperr"
	xhttp "CoinScope/pkg/http"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindInvalidTimeframe:    http.StatusBadRequest,
	apperr.KindMissingParameter:    http.StatusBadRequest,
	apperr.KindInvalidParameter:    http.StatusBadRequest,
	apperr.KindNoDataFound:         http.StatusNotFound,
	apperr.KindInsufficientHistory: http.StatusUnprocessableEntity,
	apperr.KindUnavailable:         http.StatusServiceUnavailable,
	apperr.KindInternal:            http.StatusInternalServerError,
}

// toAppError converts a usecase failure to a transport error. Internal causes are
// kept on Err for logging and never reach the response body.
func toAppError(err error) *xhttp.AppError {
	e := apperr.As(err)
	status, ok := kindStatus[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	code, msg := apperr.Public(e)
	if e.Kind == apperr.KindInternal {
		msg = "internal error"
	}
	appErr := xhttp.NewAppError(code, "", msg, status).WithError(err)
	if len(e.Params) > 0 {
		appErr.WithParams(e.Params)
	}
	return appErr
}

package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"CoinScope/internal/domain/apperr"
	"CoinScope/internal/domain/models"
	svcmetrics "CoinScope/internal/service/metrics"
	"CoinScope/internal/usecase"
	xhttp "CoinScope/pkg/http"
	applogger "CoinScope/pkg/logger"
	"CoinScope/pkg/util"
)

// AnalyticsEchoHandler serves the market analytics endpoints under /api.
type AnalyticsEchoHandler struct {
	logger *applogger.Logger
	uc     *usecase.AnalyticsUseCase
}

func NewAnalyticsEchoHandler(logger *applogger.Logger, uc *usecase.AnalyticsUseCase) *AnalyticsEchoHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	svcmetrics.Register()
	return &AnalyticsEchoHandler{logger: logger, uc: uc}
}

func (h *AnalyticsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/price_trends", h.PriceTrends)
	g.GET("/volatility", h.Volatility)
	g.GET("/support_resistance", h.SupportResistance)
	g.GET("/support_resistance_by_timeframe", h.SupportResistanceByTimeframe)
	g.GET("/performance_comparison", h.PerformanceComparison)
	g.GET("/forecast", h.Forecast)
	g.GET("/commentary", h.Commentary)
}

func (h *AnalyticsEchoHandler) PriceTrends(c echo.Context) error {
	defer observe("price_trends", time.Now())
	req := &models.PriceTrendsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "price_trends", verr)
	}

	res, err := h.uc.PriceTrends(c.Request().Context(), usecase.PriceTrendsParams{
		AssetID:   req.CoinID,
		Timeframe: req.Timeframe,
		Forecast:  req.Forecast,
		Horizon:   req.Horizon,
	})
	if err != nil {
		return h.fail(c, "price_trends", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Volatility(c echo.Context) error {
	defer observe("volatility", time.Now())
	req := &models.AssetWindowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "volatility", verr)
	}

	res, err := h.uc.Volatility(c.Request().Context(), req.CoinID, req.Timeframe)
	if err != nil {
		return h.fail(c, "volatility", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) SupportResistance(c echo.Context) error {
	defer observe("support_resistance", time.Now())
	req := &models.AssetWindowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "support_resistance", verr)
	}
	return h.supportResistance(c, req.CoinID, req.Timeframe)
}

// SupportResistanceByTimeframe is the legacy route; timeframe has no default here.
func (h *AnalyticsEchoHandler) SupportResistanceByTimeframe(c echo.Context) error {
	defer observe("support_resistance", time.Now())
	req := &models.TimeframeRequiredRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "support_resistance", verr)
	}
	return h.supportResistance(c, req.CoinID, req.Timeframe)
}

func (h *AnalyticsEchoHandler) supportResistance(c echo.Context, coinID, timeframe string) error {
	res, err := h.uc.SupportResistance(c.Request().Context(), coinID, timeframe)
	if err != nil {
		return h.fail(c, "support_resistance", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) PerformanceComparison(c echo.Context) error {
	defer observe("performance_comparison", time.Now())
	req := &models.PerformanceComparisonRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "performance_comparison", verr)
	}

	// coin_ids may repeat or carry a comma-separated list
	ids := util.SplitCSV(req.CoinIDs)
	res, err := h.uc.ComparePerformance(c.Request().Context(), ids, req.Timeframe)
	if err != nil {
		return h.fail(c, "performance_comparison", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Forecast(c echo.Context) error {
	defer observe("forecast", time.Now())
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "forecast", verr)
	}

	res, err := h.uc.Forecast(c.Request().Context(), req.CoinID, req.Timeframe, req.Horizon)
	if err != nil {
		return h.fail(c, "forecast", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) Commentary(c echo.Context) error {
	defer observe("commentary", time.Now())
	req := &models.AssetWindowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.invalid(c, "commentary", verr)
	}

	res, err := h.uc.Commentary(c.Request().Context(), req.CoinID, req.Timeframe)
	if err != nil {
		return h.fail(c, "commentary", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsEchoHandler) invalid(c echo.Context, endpoint string, verr interface{}) error {
	kind := apperr.KindInvalidParameter
	if errs, ok := verr.([]xhttp.ValidationError); ok && len(errs) > 0 && errs[0].Code == apperr.KindMissingParameter.String() {
		kind = apperr.KindMissingParameter
	}
	svcmetrics.AnalyticsErrors.WithLabelValues(endpoint, kind.String()).Inc()
	return xhttp.BadRequestResponse(c, verr)
}

func (h *AnalyticsEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	svcmetrics.AnalyticsErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= 500 {
		h.logger.Error("analytics request failed",
			applogger.String("endpoint", endpoint),
			applogger.String("code", appErr.Code),
			applogger.Error(err))
	} else {
		h.logger.Debug("analytics request rejected",
			applogger.String("endpoint", endpoint),
			applogger.String("code", appErr.Code),
			applogger.String("reason", appErr.Message))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func observe(endpoint string, start time.Time) {
	svcmetrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

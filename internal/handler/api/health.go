package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	svcmetrics "CoinScope/internal/service/metrics"
	"CoinScope/internal/usecase"
	xhttp "CoinScope/pkg/http"
	applogger "CoinScope/pkg/logger"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	logger       *applogger.Logger
	uc           *usecase.AnalyticsUseCase
	requireModel bool
	timeout      time.Duration
}

// NewHealthHandler builds the probes. When requireModel is set, readiness also waits
// for the forecast model to be loaded.
func NewHealthHandler(logger *applogger.Logger, uc *usecase.AnalyticsUseCase, requireModel bool) *HealthHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	svcmetrics.Register()
	return &HealthHandler{logger: logger, uc: uc, requireModel: requireModel, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Live)
	e.GET("/readyz", h.Ready)
}

func (h *HealthHandler) Live(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	modelLoaded := h.uc.ForecastReady()
	if modelLoaded {
		svcmetrics.ModelLoaded.Set(1)
	} else {
		svcmetrics.ModelLoaded.Set(0)
	}

	checks := map[string]string{"store": "ok", "model": "ok"}
	ready := true
	if err := h.uc.Ping(ctx); err != nil {
		h.logger.Warn("readiness: store unreachable", applogger.Error(err))
		checks["store"] = "unavailable"
		ready = false
	}
	if !modelLoaded {
		checks["model"] = "not_loaded"
		if h.requireModel {
			ready = false
		}
	}
	if !ready {
		return xhttp.ServiceUnavailableResponse(c, checks)
	}
	return xhttp.SuccessResponse(c, checks)
}

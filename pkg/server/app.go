package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	domsvc "CoinScope/internal/domain/service"
	svcmetrics "CoinScope/internal/service/metrics"
	"CoinScope/internal/service/ratelimit"
	"CoinScope/pkg/config"
	xhttp "CoinScope/pkg/http"
	applogger "CoinScope/pkg/logger"
)

// Maintenance schedules, in robfig/cron descriptor syntax.
const (
	limiterSweepSpec = "@every 1m"
	modelCheckSpec   = "@every 30s"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	models     domsvc.ModelProvider
	limiter    *ratelimit.Limiter
	cron       *cron.Cron
}

// New creates a new App instance with all dependencies. limiter may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	models domsvc.ModelProvider,
	limiter *ratelimit.Limiter,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		models:     models,
		limiter:    limiter,
		cron:       cron.New(),
	}
}

// Run starts the application and blocks until interrupted or the server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Forecast.Preload {
		a.preload(ctx)
	}

	if err := a.registerJobs(ctx); err != nil {
		return err
	}
	a.cron.Start()
	defer func() {
		<-a.cron.Stop().Done()
	}()

	// Start HTTP server
	errCh := a.httpServer.Start()
	a.l.Info("coinscope started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("store", a.cfg.Store.Driver),
		applogger.String("forecast_backend", a.cfg.Forecast.Backend),
		applogger.Bool("commentary", a.cfg.Commentary.Enabled),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case err := <-errCh:
		runErr = err
	}

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// preload loads the forecast model before traffic arrives. A failure is logged; the
// model check job and the first forecast request retry it.
func (a *App) preload(ctx context.Context) {
	if a.models == nil {
		return
	}
	if _, err := a.models.Model(ctx); err != nil {
		a.l.Warn("model preload failed", applogger.Error(err))
		return
	}
	svcmetrics.ModelLoaded.Set(1)
}

// registerJobs schedules background maintenance: idle rate-limit buckets are
// dropped, and with preload enabled a failed model load is retried until it succeeds.
func (a *App) registerJobs(ctx context.Context) error {
	if a.limiter != nil {
		if _, err := a.cron.AddFunc(limiterSweepSpec, a.sweepLimiter); err != nil {
			return fmt.Errorf("register limiter sweep: %w", err)
		}
	}
	if a.models != nil {
		if _, err := a.cron.AddFunc(modelCheckSpec, func() { a.checkModel(ctx) }); err != nil {
			return fmt.Errorf("register model check: %w", err)
		}
	}
	return nil
}

func (a *App) sweepLimiter() {
	if n := a.limiter.Sweep(); n > 0 {
		a.l.Debug("rate limiter swept", applogger.Int("evicted", n), applogger.Int("active", a.limiter.Len()))
	}
}

func (a *App) checkModel(ctx context.Context) {
	if a.models.Loaded() {
		svcmetrics.ModelLoaded.Set(1)
		return
	}
	svcmetrics.ModelLoaded.Set(0)
	if a.cfg.Forecast.Preload && ctx.Err() == nil {
		a.preload(ctx)
	}
}

// shutdown gracefully stops the HTTP server. Infrastructure clients are closed by
// the cleanup returned from dependency injection.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.l.Info("shutdown complete")
	return nil
}

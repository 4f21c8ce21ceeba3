package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	domrepo "CoinScope/internal/domain/repository"
	domsvc "CoinScope/internal/domain/service"
	"CoinScope/internal/handler/api"
	"CoinScope/internal/repository"
	"CoinScope/internal/service/cache"
	"CoinScope/internal/service/ratelimit"
	"CoinScope/internal/services/analytics"
	"CoinScope/internal/services/forecast"
	"CoinScope/internal/usecase"
	"CoinScope/pkg/config"
	"CoinScope/pkg/database"
	xhttp "CoinScope/pkg/http"
	applogger "CoinScope/pkg/logger"
	"CoinScope/pkg/metrics"
	"CoinScope/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("service", "coinscope"), applogger.String("env", cfg.Environment)), nil
}

// ProvideDatabaseClient opens the OHLC store connection pool.
func ProvideDatabaseClient(cfg *config.Config, l *applogger.Logger) (*database.Client, func(), error) {
	dialect, err := database.ParseDialect(cfg.Store.Driver)
	if err != nil {
		return nil, nil, err
	}
	client, err := database.NewClient(
		database.WithDialect(dialect),
		database.WithHost(cfg.Store.Host),
		database.WithPort(cfg.Store.Port),
		database.WithDatabase(cfg.Store.Database),
		database.WithCredentials(cfg.Store.User, cfg.Store.Password),
		database.WithPath(cfg.Store.Path),
		database.WithSSLMode(cfg.Store.SSLMode),
		database.WithMaxConnections(cfg.Store.MaxOpenConns, cfg.Store.MaxIdleConns),
		database.WithConnMaxLifetime(cfg.Store.ConnMaxLifetime),
		database.WithTimeouts(cfg.Store.DialTimeout, cfg.Store.QueryTimeout),
		database.WithHTTP(cfg.Store.UseHTTP),
		database.WithMaxExecutionTime(cfg.Store.MaxExecutionTime),
	)
	if err != nil {
		// the driver error may carry the DSN; keep it out of the message
		l.Error("store connect failed", applogger.String("driver", string(dialect)), applogger.Error(err))
		return nil, nil, fmt.Errorf("%s store: connection failed", dialect)
	}
	l.Info("store connected", applogger.String("driver", string(dialect)), applogger.String("table", cfg.Store.Table))

	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("store close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideOHLCStore creates the SQL store and, when configured, its schema.
func ProvideOHLCStore(cfg *config.Config, client *database.Client, l *applogger.Logger) (*repository.SQLOHLCStore, error) {
	store, err := repository.NewSQLOHLCStore(client, cfg.Store.Table, cfg.Store.QueryTimeout, l)
	if err != nil {
		return nil, err
	}
	if cfg.Store.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, repository.SchemaStatements(client.Dialect(), cfg.Store.Table)); err != nil {
			return nil, fmt.Errorf("store schema: %w", err)
		}
	}
	return store, nil
}

// ProvideMetrics creates the Prometheus recorder. With metrics disabled the
// collectors go to a private registry that is never scraped.
func ProvideMetrics(cfg *config.Config) domrepo.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.New(prometheus.NewRegistry())
	}
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideWindowResolver creates the resolver on the wall clock.
func ProvideWindowResolver() *domrepo.WindowResolver {
	return domrepo.NewWindowResolver(nil)
}

// ProvideModelProvider builds the lazily loaded forecast model for the configured backend.
func ProvideModelProvider(cfg *config.Config, l *applogger.Logger) (domsvc.ModelProvider, error) {
	ml := l.With(applogger.String("component", "forecast"))
	switch cfg.Forecast.Backend {
	case "remote":
		remote := analytics.NewRemoteModel(cfg.Forecast.RemoteURL, cfg.Forecast.ModelName, cfg.Forecast.Lookback, cfg.Forecast.Timeout)
		return forecast.NewLazyProvider(func(ctx context.Context) (domsvc.Model, error) {
			return remote, nil
		}, ml), nil
	default:
		opts := []forecast.LoadOption{forecast.WithLookback(cfg.Forecast.Lookback)}
		// custom_objects maps artifact names onto built-in losses, e.g. custom_mse: mse
		for name, builtin := range cfg.Forecast.CustomObjects {
			fn, ok := forecast.BuiltinObject(builtin)
			if !ok {
				return nil, fmt.Errorf("forecast.custom_objects: %q maps to unknown function %q", name, builtin)
			}
			opts = append(opts, forecast.WithCustomObject(name, fn))
		}
		return forecast.NewFileProvider(cfg.Forecast.ModelPath, ml, opts...), nil
	}
}

// ProvideForecastEngine creates the forecast engine.
func ProvideForecastEngine(cfg *config.Config, provider domsvc.ModelProvider, l *applogger.Logger) *forecast.Engine {
	return forecast.NewEngine(provider, cfg.Forecast.Lookback, l)
}

// ProvideCommentaryCache layers memory over Redis when Redis is enabled, and uses the
// in-process TTL cache alone otherwise.
func ProvideCommentaryCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewTTLCache(cfg.Cache.MaxEntries), func() {}, nil
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	l.Info("redis cache connected", applogger.String("addr", cfg.Cache.Redis.Addr))
	cleanup := func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	return cache.NewLayeredCache(rc, cfg.Cache.MaxEntries, time.Minute), cleanup, nil
}

// ProvideCommentary returns nil when commentary is disabled.
func ProvideCommentary(cfg *config.Config, c cache.BytesCache, l *applogger.Logger) domsvc.CommentaryGenerator {
	if !cfg.Commentary.Enabled {
		return nil
	}
	chat := analytics.NewChatCommentary(analytics.ChatOptions{
		BaseURL:   cfg.Commentary.URL,
		APIKey:    cfg.Commentary.APIKey,
		Model:     cfg.Commentary.Model,
		MaxTokens: cfg.Commentary.MaxTokens,
		Timeout:   cfg.Commentary.Timeout,
		Retries:   cfg.Commentary.Retries,
	})
	return analytics.NewCachedCommentary(chat, c, cfg.Commentary.CacheTTL, l)
}

// ProvideAnalyticsUseCase assembles the analytics use case.
func ProvideAnalyticsUseCase(
	cfg *config.Config,
	store domrepo.OHLCStore,
	resolver *domrepo.WindowResolver,
	forecaster usecase.Forecaster,
	gen domsvc.CommentaryGenerator,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.AnalyticsUseCase {
	opts := []usecase.Option{
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithBatchLimits(cfg.Batch.Concurrency, cfg.Batch.MaxAssets),
	}
	if gen != nil {
		opts = append(opts, usecase.WithCommentary(gen))
	}
	return usecase.NewAnalyticsUseCase(store, resolver, forecaster, opts...)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
}

// ProvideHandlers lists every HTTP handler the server registers.
func ProvideHandlers(cfg *config.Config, l *applogger.Logger, uc *usecase.AnalyticsUseCase) []xhttp.Handler {
	return []xhttp.Handler{
		api.NewAnalyticsEchoHandler(l, uc),
		api.NewHealthHandler(l, uc, cfg.Forecast.Preload),
	}
}

// ProvideHTTPServer creates the echo server from config.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler, limiter *ratelimit.Limiter) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true, cfg.Server.CORSOrigins...),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithRateLimiter(limiter))
	}
	return xhttp.NewServer(l, handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	provider domsvc.ModelProvider,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, srv, provider, limiter)
}

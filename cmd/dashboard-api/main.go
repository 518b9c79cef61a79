// cmd/dashboard-api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"startup-insights/internal/bootstrap"
	"startup-insights/internal/common/config"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/common/observability"
	"startup-insights/internal/coordinator"
	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/httpapi"
	"startup-insights/internal/investor"
	"startup-insights/internal/predictionapi"
	"startup-insights/internal/report"
	"startup-insights/internal/theme"
)

const serviceName = "dashboard-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting dashboard API...", zap.String("environment", cfg.App.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(serviceName)
	defer obs.Shutdown()
	if err := obs.EnableTracing(ctx, serviceName, observability.TracingConfig{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	}); err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}

	backends, err := bootstrap.Open(ctx, cfg, bootstrap.DefaultOptions, log)
	if err != nil {
		zapLog.Fatal("backend initialization failed", zap.Error(err))
	}
	defer backends.Close()

	prediction := predictionapi.NewClient(predictionapi.Config{
		BaseURL: cfg.PredictionAPI.BaseURL,
		Timeout: config.GetDuration(cfg.PredictionAPI.Timeout),
	}, obs, log)

	// --- Investor listing ---
	var investorOpts []investor.Option
	if backends.Redis != nil {
		ttl := time.Duration(cfg.Investor.CacheTTL) * time.Second
		investorOpts = append(investorOpts, investor.WithCache(investor.NewRedisCache(backends.Redis.GetClient(), ttl)))
	}
	if backends.Elastic != nil {
		index := investor.NewElasticIndex(backends.Elastic, cfg.Database.Elasticsearch.Index)
		if err := index.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
		}
		investorOpts = append(investorOpts, investor.WithIndex(index, cfg.Investor.IndexOnFetch))
	}
	if cfg.Investor.UseDebug {
		investorOpts = append(investorOpts, investor.WithDebugEndpoint())
	}
	investorSvc := investor.NewService(prediction, log, investorOpts...)

	// --- Theme ---
	var themeStore *theme.Preference
	if backends.Redis != nil {
		themeStore = theme.NewPreference(backends.Redis.GetClient(), cfg.Theme.Default, log)
	} else {
		themeStore = theme.NewPreference(nil, cfg.Theme.Default, log)
	}
	zapLog.Info("theme initialized", zap.String("theme", string(themeStore.Init(ctx))))

	// --- Sessions ---
	coordOpts := []coordinator.Option{coordinator.WithObservability(obs)}
	if backends.Submissions != nil {
		coordOpts = append(coordOpts, coordinator.WithSettleHook(backends.Submissions.SettleHook()))
	}
	if backends.Publisher != nil {
		coordOpts = append(coordOpts, coordinator.WithSettleHook(bootstrap.PublishHook(backends.Publisher, log)))
	}

	model := fieldmodel.Default()
	sessionTTL := time.Duration(cfg.Server.SessionTTL) * time.Second
	sessions := httpapi.NewSessionStore(model, sessionTTL, func(view *report.ViewModel) *coordinator.Coordinator {
		return coordinator.New(prediction, view, log, coordOpts...)
	}, log)
	go sessions.Run(ctx, time.Minute)

	var limiter *httpapi.RateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = httpapi.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
		defer limiter.Stop()
	}

	checks := make(map[string]httpapi.HealthCheck)
	for name, check := range backends.Checks() {
		checks[name] = check
	}

	deps := httpapi.Deps{
		Sessions:    sessions,
		Model:       model,
		Investor:    investorSvc,
		Theme:       themeStore,
		Limiter:     limiter,
		Checks:      checks,
		Logger:      log,
		CallTimeout: 2 * config.GetDuration(cfg.PredictionAPI.Timeout),
	}
	if backends.Submissions != nil {
		deps.Submissions = backends.Submissions
	}
	api := httpapi.NewServer(deps)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, draining requests...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		api.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		zapLog.Warn("background submissions still running at shutdown")
	}

	if err := obs.Flush(shutdownCtx); err != nil {
		zapLog.Warn("trace flush failed", zap.Error(err))
	}
	zapLog.Info("Dashboard API stopped")
}

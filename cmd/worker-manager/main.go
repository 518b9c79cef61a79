// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"startup-insights/internal/bootstrap"
	"startup-insights/internal/common/camunda"
	"startup-insights/internal/common/config"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/common/observability"
	"startup-insights/internal/fieldmodel"
	"startup-insights/internal/predictionapi"
	"startup-insights/pkg/registry"

	cp "startup-insights/internal/workers/analysis/compare-peers"
	chs "startup-insights/internal/workers/analysis/compute-health-score"
	ra "startup-insights/internal/workers/analysis/record-analysis"
	rp "startup-insights/internal/workers/analysis/request-prediction"
	vsp "startup-insights/internal/workers/analysis/validate-startup-profile"
)

const serviceName = "worker-manager"

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}
	if err := cfg.ValidateForWorkers(); err != nil {
		zap.NewExample().Fatal("invalid worker config", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

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

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = bootstrap.RetryWithBackoff(ctx, func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	backends, err := bootstrap.Open(ctx, cfg, bootstrap.DefaultOptions, log)
	if err != nil {
		zapLog.Fatal("backend initialization failed", zap.Error(err))
	}
	defer backends.Close()

	prediction := predictionapi.NewClient(predictionapi.Config{
		BaseURL: cfg.PredictionAPI.BaseURL,
		Timeout: config.GetDuration(cfg.PredictionAPI.Timeout),
	}, obs, log)

	// --- Register Workers ---
	activities := registry.Analysis()
	configured := make([]string, 0, len(cfg.Workers))
	for taskType := range cfg.Workers {
		configured = append(configured, taskType)
	}
	if unknown := activities.Unknown(configured); len(unknown) > 0 {
		zapLog.Warn("config lists workers that are not part of the analysis process", zap.Strings("taskTypes", unknown))
	}

	workers := camunda.NewRegistry(zeebe.GetClient(), log)
	defer workers.Close()

	workerTimeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	workers.Start(vsp.TaskType, config.GetWorkerConfig(cfg, vsp.TaskType),
		vsp.NewHandler(&vsp.Config{Timeout: workerTimeout(vsp.TaskType), Observability: obs}, fieldmodel.Default(), log).Handle)

	workers.Start(rp.TaskType, config.GetWorkerConfig(cfg, rp.TaskType),
		rp.NewHandler(&rp.Config{Timeout: workerTimeout(rp.TaskType), Observability: obs}, prediction, log).Handle)

	workers.Start(cp.TaskType, config.GetWorkerConfig(cfg, cp.TaskType),
		cp.NewHandler(&cp.Config{Timeout: workerTimeout(cp.TaskType), Observability: obs}, prediction, log).Handle)

	workers.Start(chs.TaskType, config.GetWorkerConfig(cfg, chs.TaskType),
		chs.NewHandler(&chs.Config{Timeout: workerTimeout(chs.TaskType), Observability: obs}, log).Handle)

	var recorder ra.Recorder
	if backends.Submissions != nil {
		recorder = backends.Submissions
	}
	var publisher ra.Publisher
	if backends.Publisher != nil {
		publisher = backends.Publisher
	}
	workers.Start(ra.TaskType, config.GetWorkerConfig(cfg, ra.TaskType),
		ra.NewHandler(&ra.Config{Timeout: workerTimeout(ra.TaskType), Observability: obs}, recorder, publisher, log).Handle)

	zapLog.Info("All workers registered", zap.Strings("running", workers.Running()))

	// --- Health, readiness and metrics ---
	checks := backends.Checks()
	checks["zeebe"] = zeebe.HealthCheck

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": serviceName,
			"workers": workers.Running(),
		})
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": state, "checks": results})
	})

	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: mux, ReadTimeout: 10 * time.Second}
	go func() {
		zapLog.Info("Health server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("health server error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("health server shutdown failed", zap.Error(err))
	}
	workers.Close()
	if err := obs.Flush(shutdownCtx); err != nil {
		zapLog.Warn("trace flush failed", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped")
}

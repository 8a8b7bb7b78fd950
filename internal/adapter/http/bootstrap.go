package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"userdir/internal/adapter/database"
	"userdir/internal/adapter/telemetry"
	"userdir/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// StartServerWithConfig serves the API until ctx is cancelled, then drains
// in-flight requests and closes the store.
func StartServerWithConfig(ctx context.Context, cfg *config.AppConfig, logger *config.Logger) error {
	tel, err := telemetry.NewContainer(ctx, telemetry.ConfigFrom(cfg), logger)
	if err != nil {
		return err
	}

	probe := tel.NewTelemetryProbe(logger)
	tel.AppMetrics.StartSystemMetrics(ctx)

	store, err := database.Open(ctx, cfg.Store, cfg.LogLevel, logger, probe, tel.AppMetrics)
	if err != nil {
		return err
	}
	defer store.Close()

	container := NewContainer(store, cfg, logger, tel.AppMetrics, probe)

	router := SetupRouterWithConfig(container.Handlers(), tel.AppMetrics, tel.PrometheusRegistry, logger, cfg)

	logger.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("kv_driver", cfg.Store.Driver),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed to start", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	return tel.Shutdown(shutdownCtx)
}

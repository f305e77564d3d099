// Package bootstrap handles application initialization and lifecycle management
// for the spotlight service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	inframetrics "github.com/jonesrussell/north-cloud/spotlight/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/spotlight/internal/metrics"
)

// Serve runs the HTTP service until ctx ends or a shutdown signal arrives.
func Serve(ctx context.Context, configPath string) error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: Profiling (opt-in through the environment)
	profiling.StartPprofServer(log)
	profiler, err := profiling.StartPyroscope(cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", infralogger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	// Phase 3: Storage, cache and event stream
	deps, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer deps.Close()

	// Phase 4: Spotlight core
	reg := prometheus.NewRegistry()
	svc := NewCoordinator(cfg, deps, reg, log)
	if err = Init(ctx, cfg, svc, log); err != nil {
		return err
	}

	// Phase 5: HTTP server
	server := SetupHTTPServer(cfg, svc, deps, inframetrics.NewHTTPMetrics(metrics.MetricsNamespace, reg), log)

	if runErr := server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}

package bootstrap

import (
	"context"

	infragin "github.com/jonesrussell/north-cloud/spotlight/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	inframetrics "github.com/jonesrussell/north-cloud/spotlight/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/spotlight/internal/api"
	"github.com/jonesrussell/north-cloud/spotlight/internal/config"
	"github.com/jonesrussell/north-cloud/spotlight/internal/handlers"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

// SetupHTTPServer creates and configures the HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	svc *spotlight.Coordinator,
	deps *Deps,
	httpMetrics *inframetrics.HTTPMetrics,
	log infralogger.Logger,
) *infragin.Server {
	h := handlers.NewHandler(svc, deps.Items, log)

	serverDeps := api.ServerDeps{}
	if deps.DB != nil {
		serverDeps.Database = deps.DB
	}
	if deps.Redis != nil {
		serverDeps.Redis = func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}
	}

	return api.NewServer(cfg, h, api.RouteOptions{
		JWTSecret: cfg.Auth.JWTSecret,
		Metrics:   httpMetrics,
		WriteRate: api.NewWriteLimiter(cfg.Service.WriteRPS, cfg.Service.WriteBurst),
	}, serverDeps, log)
}

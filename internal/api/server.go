package api

import (
	"context"

	"github.com/gin-gonic/gin"

	infracontext "github.com/jonesrussell/north-cloud/spotlight/infrastructure/context"
	infragin "github.com/jonesrussell/north-cloud/spotlight/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/config"
	"github.com/jonesrussell/north-cloud/spotlight/internal/handlers"
)

// Pinger is a dependency probed by /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ServerDeps are the optional dependencies reported by /health.
type ServerDeps struct {
	Database Pinger
	Redis    func(ctx context.Context) error
}

// NewServer builds the HTTP server for cfg.
func NewServer(cfg *config.Config, h *handlers.Handler, routes RouteOptions, deps ServerDeps, log infralogger.Logger) *infragin.Server {
	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, h, routes)
		})

	if deps.Database != nil {
		builder = builder.WithDatabaseHealthCheck(func() error {
			ctx, cancel := infracontext.WithPingTimeout(context.Background())
			defer cancel()
			return deps.Database.PingContext(ctx)
		})
	}
	if deps.Redis != nil {
		builder = builder.WithRedisHealthCheck(func() error {
			ctx, cancel := infracontext.WithPingTimeout(context.Background())
			defer cancel()
			return deps.Redis(ctx)
		})
	}

	return builder.Build()
}

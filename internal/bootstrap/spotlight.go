package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/config"
	"github.com/jonesrussell/north-cloud/spotlight/internal/metrics"
	"github.com/jonesrussell/north-cloud/spotlight/internal/nonce"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

// NewCoordinator assembles the spotlight core. A nil reg skips metrics.
func NewCoordinator(cfg *config.Config, deps *Deps, reg prometheus.Registerer, log infralogger.Logger) *spotlight.Coordinator {
	opts := []spotlight.Option{
		spotlight.WithPageSize(cfg.Spotlight.PageSize),
		spotlight.WithDocsURL(cfg.Spotlight.DocsURL),
		spotlight.WithTokens(nonce.NewManager(cfg.Auth.NonceSecret, cfg.Auth.NonceLifetime)),
		spotlight.WithTracer(otel.Tracer("github.com/jonesrussell/north-cloud/spotlight")),
	}
	if deps.Publisher != nil {
		opts = append(opts, spotlight.WithEventPublisher(deps.Publisher))
	}
	if reg != nil {
		opts = append(opts, spotlight.WithRecorder(metrics.NewRecorder(reg)))
	}

	return spotlight.New(deps.Store, log, opts...)
}

// Init registers the featured group and, when configured, runs the legacy
// flag upgrade.
func Init(ctx context.Context, cfg *config.Config, svc *spotlight.Coordinator, log infralogger.Logger) error {
	if !cfg.Spotlight.UpgradeOnBoot {
		if err := svc.RegisterGroup(ctx); err != nil {
			return fmt.Errorf("failed to register featured group: %w", err)
		}
		log.Info("Spotlight ready; legacy upgrade left to the upgrade command")
		return nil
	}

	if err := svc.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize spotlight: %w", err)
	}
	log.Info("Spotlight ready")
	return nil
}

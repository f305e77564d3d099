package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/spotlight/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/spotlight/internal/cache"
	"github.com/jonesrussell/north-cloud/spotlight/internal/config"
	"github.com/jonesrussell/north-cloud/spotlight/internal/database"
	"github.com/jonesrussell/north-cloud/spotlight/internal/events"
	"github.com/jonesrussell/north-cloud/spotlight/internal/memstore"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/repository"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

// ContentTypeWriter registers content types with the host store.
type ContentTypeWriter interface {
	UpsertContentType(ctx context.Context, ct models.ContentType) error
}

// Deps are the storage-side dependencies shared by the server and the CLI.
type Deps struct {
	// Store is what the coordinator reads and writes, cache included.
	Store spotlight.Store
	// Items resolves item IDs. It bypasses the query cache.
	Items     spotlight.ItemFinder
	Types     ContentTypeWriter
	DB        *sqlx.DB
	Redis     *redis.Client
	Publisher *events.Publisher

	log infralogger.Logger
}

// OpenStore connects the configured store, and Redis when enabled. Redis
// failures only disable the cache and the event stream.
func OpenStore(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*Deps, error) {
	deps := &Deps{log: log}

	var base spotlight.Store
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("Using the in-memory store; data is lost on exit")
		mem := memstore.NewSeeded()
		base, deps.Types = mem, mem
	default:
		db, err := database.Connect(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("database connection: %w", err)
		}
		deps.DB = db
		repo := repository.NewRepository(db, log)
		base, deps.Types = repo, repo
	}
	deps.Items = base
	deps.Store = base

	if cfg.Redis.Enabled {
		client, err := infraredis.Connect(ctx, cfg.Redis.Config)
		if err != nil {
			log.Warn("Redis not available, cache and events disabled", infralogger.Error(err))
		} else {
			deps.Redis = client
			deps.Store = cache.NewStore(base, client, cfg.Redis.CacheTTL, log)
			deps.Publisher = events.NewPublisher(client, log)
			log.Info("Redis connected", infralogger.String("redis_address", cfg.Redis.Address))
		}
	}

	return deps, nil
}

// Close releases every connection.
func (d *Deps) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.log.Error("Failed to close redis", infralogger.Error(err))
		}
	}
	if err := database.Close(d.DB); err != nil {
		d.log.Error("Failed to close database", infralogger.Error(err))
	}
}

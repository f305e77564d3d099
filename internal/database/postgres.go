// Package database opens the Postgres connection and applies the schema.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	infracontext "github.com/jonesrussell/north-cloud/spotlight/infrastructure/context"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/spotlight/internal/config"
)

// connectRetryDelay is the first backoff between connection attempts.
const connectRetryDelay = 500 * time.Millisecond

// Connect opens a pooled connection, retrying while the server starts up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log infralogger.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB

	retryCfg := retry.DefaultConfig()
	retryCfg.InitialDelay = connectRetryDelay

	err := retry.Retry(ctx, retryCfg, func() error {
		conn, openErr := sqlx.Open("postgres", cfg.DSN())
		if openErr != nil {
			return fmt.Errorf("failed to open database: %w", openErr)
		}

		pingCtx, cancel := infracontext.WithPingTimeout(ctx)
		defer cancel()

		if pingErr := conn.PingContext(pingCtx); pingErr != nil {
			_ = conn.Close()
			log.Warn("Database not ready",
				infralogger.String("host", cfg.Host),
				infralogger.Error(pingErr),
			)
			return fmt.Errorf("failed to ping database: %w", pingErr)
		}

		db = conn
		return nil
	})
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("Connected to database",
		infralogger.String("host", cfg.Host),
		infralogger.String("database", cfg.Database),
	)
	return db, nil
}

// Close closes the database connection
func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

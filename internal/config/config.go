// Package config holds the spotlight service configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/spotlight/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/spotlight/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/spotlight/internal/nonce"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

// Default configuration values.
const (
	defaultServiceName     = "spotlight"
	defaultServicePort     = 8095
	defaultDatabaseDriver  = DriverPostgres
	defaultDatabasePort    = 5432
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultRedisAddress    = "localhost:6379"
	defaultCacheTTL        = 5 * time.Minute
	defaultNonceLifetime   = 24 * time.Hour
	defaultPageSize        = 100
	defaultMigrationsPath  = "file://migrations"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the service configuration.
type Config struct {
	Service   ServiceConfig      `yaml:"service"`
	Database  DatabaseConfig     `yaml:"database"`
	Redis     RedisConfig        `yaml:"redis"`
	Auth      AuthConfig         `yaml:"auth"`
	Spotlight SpotlightConfig    `yaml:"spotlight"`
	Logging   infralogger.Config `yaml:"logging"`
}

// ServiceConfig holds HTTP service settings.
type ServiceConfig struct {
	Name        string   `env:"SPOTLIGHT_SERVICE_NAME" yaml:"name"`
	Version     string   `yaml:"version"`
	Port        int      `env:"SPOTLIGHT_PORT"         yaml:"port"`
	Debug       bool     `env:"APP_DEBUG"              yaml:"debug"`
	CORSOrigins []string `env:"CORS_ORIGINS"           yaml:"cors_origins"`
	// WriteRPS caps mutating requests per caller per second. Zero disables the limit.
	WriteRPS   int `env:"SPOTLIGHT_WRITE_RPS" yaml:"write_rps"`
	WriteBurst int `yaml:"write_burst"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver          string        `env:"SPOTLIGHT_DB_DRIVER" yaml:"driver"`
	Host            string        `env:"POSTGRES_HOST"       yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"       yaml:"port"`
	User            string        `env:"POSTGRES_USER"       yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD"   yaml:"password"` //nolint:gosec // G117: DB connection config
	Database        string        `env:"POSTGRES_DB"         yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"    yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH"     yaml:"migrations_path"`
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// RedisConfig holds Redis settings for the query cache and event stream.
type RedisConfig struct {
	infraredis.Config `yaml:",inline"`

	Enabled  bool          `env:"REDIS_ENABLED"   yaml:"enabled"`
	CacheTTL time.Duration `env:"REDIS_CACHE_TTL" yaml:"cache_ttl"`
}

// AuthConfig holds token settings.
type AuthConfig struct {
	JWTSecret     string        `env:"AUTH_JWT_SECRET"     yaml:"jwt_secret"`
	NonceSecret   string        `env:"SPOTLIGHT_NONCE_KEY" yaml:"nonce_secret"`
	NonceLifetime time.Duration `yaml:"nonce_lifetime"`
}

// SpotlightConfig tunes the featured-content behaviour.
type SpotlightConfig struct {
	PageSize      int    `env:"SPOTLIGHT_PAGE_SIZE"    yaml:"page_size"`
	DocsURL       string `env:"SPOTLIGHT_DOCS_URL"     yaml:"docs_url"`
	WidgetCount   int    `yaml:"widget_count"`
	UpgradeOnBoot bool   `env:"SPOTLIGHT_AUTO_UPGRADE" yaml:"upgrade_on_boot"`
}

// Load reads the configuration file at path, applies defaults and validates.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid config: %w", validateErr)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = defaultServiceName
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = spotlight.CurrentVersion
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = defaultServicePort
	}
	if len(cfg.Service.CORSOrigins) == 0 {
		cfg.Service.CORSOrigins = []string{"http://localhost:3000"}
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = defaultDatabaseDriver
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = defaultMigrationsPath
	}

	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = defaultCacheTTL
	}

	if cfg.Auth.NonceLifetime == 0 {
		cfg.Auth.NonceLifetime = defaultNonceLifetime
	}

	if cfg.Spotlight.PageSize == 0 {
		cfg.Spotlight.PageSize = defaultPageSize
	}
	if cfg.Spotlight.DocsURL == "" {
		cfg.Spotlight.DocsURL = spotlight.DefaultDocsURL
	}
	if cfg.Spotlight.WidgetCount == 0 {
		cfg.Spotlight.WidgetCount = spotlight.DefaultWidgetCount
	}

	cfg.Logging.SetDefaults()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("auth.nonce_secret", c.Auth.NonceSecret); err != nil {
		return err
	}
	if c.Auth.NonceLifetime != 0 && c.Auth.NonceLifetime < nonce.MinLifetime {
		return &infraconfig.ValidationError{
			Field:   "auth.nonce_lifetime",
			Message: "must be at least " + nonce.MinLifetime.String(),
		}
	}
	if c.Spotlight.PageSize < 1 {
		return &infraconfig.ValidationError{Field: "spotlight.page_size", Message: "must be positive"}
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if err := infraconfig.ValidateRequired("database.host", c.Database.Host); err != nil {
			return err
		}
		if err := infraconfig.ValidateRequired("database.user", c.Database.User); err != nil {
			return err
		}
		if err := infraconfig.ValidateRequired("database.database", c.Database.Database); err != nil {
			return err
		}
	default:
		return errors.New("database.driver must be postgres or memory")
	}
	return nil
}

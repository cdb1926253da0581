package config

import (
	"fmt"

	pkgconfig "github.com/kupimoda/catalog-importer/pkg/config"
)

// Config holds all configuration for the catalog importer.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Import sources
	SourceFiles []string `env:"IMPORT_SOURCES" envSeparator:","`
	ImagesRoot  string   `env:"IMPORT_IMAGES_ROOT" envDefault:"."`
	AdminEmail  string   `env:"IMPORT_ADMIN_EMAIL" envDefault:"admin@kupimoda.ru"`
	ImagePolicy string   `env:"IMPORT_IMAGE_POLICY" envDefault:"skip"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"catalog"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"catalog_secret"`
	PostgresDB   string `env:"CATALOG_DB_NAME" envDefault:"catalog_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Kafka (empty disables event publishing)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Object storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"s3"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3BaseURL      string `env:"S3_BASE_URL"`

	// Debug server (empty disables it)
	DebugAddr string `env:"DEBUG_ADDR"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load importer config: %w", err)
	}
	if cfg.ImagePolicy != "skip" && cfg.ImagePolicy != "replace" {
		return nil, fmt.Errorf("IMPORT_IMAGE_POLICY must be skip or replace, got %q", cfg.ImagePolicy)
	}
	if cfg.AdminEmail == "" {
		return nil, fmt.Errorf("IMPORT_ADMIN_EMAIL is required")
	}
	if cfg.PostgresHost == "" {
		return nil, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.PostgresUser == "" {
		return nil, fmt.Errorf("POSTGRES_USER is required")
	}
	switch cfg.StorageBackend {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND is s3")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be s3 or memory, got %q", cfg.StorageBackend)
	}
	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

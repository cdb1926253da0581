package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kupimoda/catalog-importer/internal/config"
	"github.com/kupimoda/catalog-importer/internal/event"
	"github.com/kupimoda/catalog-importer/internal/importer"
	"github.com/kupimoda/catalog-importer/internal/repository/postgres"
	"github.com/kupimoda/catalog-importer/internal/storage"
	"github.com/kupimoda/catalog-importer/internal/storage/memory"
	"github.com/kupimoda/catalog-importer/internal/storage/s3"
	"github.com/kupimoda/catalog-importer/migrations"
	"github.com/kupimoda/catalog-importer/pkg/database"
	"github.com/kupimoda/catalog-importer/pkg/health"
	pkgkafka "github.com/kupimoda/catalog-importer/pkg/kafka"
)

// App wires together all dependencies and runs one import batch.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	producer *pkgkafka.Producer
	runner   *importer.Runner
	debug    *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPoolWithLogger(initCtx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Run database migrations.
	if err := database.RunMigrations(initCtx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Object storage backend.
	store, err := newStorage(initCtx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("storage initialized", slog.String("backend", cfg.StorageBackend))

	// Kafka producer, only when brokers are configured.
	var producer *pkgkafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		producer = pkgkafka.NewProducer(kafkaCfg, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka disabled, events will not be published")
	}

	// Build the dependency graph.
	catalogRepo := postgres.NewCatalogRepository(pool)
	refsRepo := postgres.NewRefsRepository(pool)
	uploader := importer.NewUploader(store, cfg.ImagesRoot, logger)
	linker := importer.NewLinker(uploader, logger)
	upserter := importer.NewUpserter(catalogRepo, linker, importer.ImagePolicy(cfg.ImagePolicy), logger)
	eventProducer := event.NewProducer(producer, logger)
	runner := importer.NewRunner(catalogRepo, refsRepo, upserter, eventProducer, logger, cfg.AdminEmail)

	app := &App{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		producer: producer,
		runner:   runner,
	}

	if cfg.DebugAddr != "" {
		app.debug = newDebugServer(cfg.DebugAddr, pool, producer)
	}

	return app, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "memory":
		return memory.New(cfg.S3BaseURL), nil
	case "s3":
		store, err := s3.New(ctx, s3.Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize s3 storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newDebugServer(addr string, pool *pgxpool.Pool, producer *pkgkafka.Producer) *http.Server {
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if producer != nil {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}

	router := chi.NewRouter()
	router.Get("/health/live", healthHandler.LivenessHandler())
	router.Get("/health/ready", healthHandler.ReadinessHandler())
	router.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Run executes the import batch and returns its summary. The debug server,
// when configured, serves health and metrics for the duration of the run.
func (a *App) Run(ctx context.Context) (*importer.Summary, error) {
	if a.debug != nil {
		go func() {
			a.logger.Info("starting debug server", slog.String("addr", a.debug.Addr))
			if err := a.debug.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Error("debug server error", slog.String("error", err.Error()))
			}
		}()
	}

	summary, err := a.runner.Run(ctx, a.cfg.SourceFiles)

	a.shutdown()
	return summary, err
}

func (a *App) shutdown() {
	a.logger.Info("shutting down...")

	if a.debug != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.debug.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("debug server shutdown error", slog.String("error", err.Error()))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	a.pool.Close()

	a.logger.Info("shutdown complete")
}

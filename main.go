package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for the migration runner
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/cache"
	"github.com/collegeroi/roi-engine/pkg/config"
	"github.com/collegeroi/roi-engine/pkg/database"
	"github.com/collegeroi/roi-engine/pkg/handlers"
	"github.com/collegeroi/roi-engine/pkg/logging"
	"github.com/collegeroi/roi-engine/pkg/middleware"
	"github.com/collegeroi/roi-engine/pkg/repositories"
	"github.com/collegeroi/roi-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

// migrationStatementTimeout bounds every statement golang-migrate runs.
// Without it, a store user with missing schema privileges hangs the boot
// while the migration lock is held.
const migrationStatementTimeout = 30 * time.Second

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	store, closeStore, err := buildReferenceStore(ctx, cfg, logger)
	if err != nil {
		// Driver errors can echo the DSN back, password included.
		logger.Fatal("Failed to open reference store",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer closeStore()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	var resultCache *cache.ScenarioCache
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		resultCache = cache.New(redisClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second, logger)
		logger.Info("Scenario result cache enabled",
			zap.String("addr", cfg.Redis.Addr),
			zap.Int("ttl_seconds", cfg.Redis.TTLSeconds))
	} else {
		logger.Info("Scenario result cache disabled (no Redis address configured)")
	}

	scenarioService := services.NewScenarioService(store, cfg.Assumptions, resultCache, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewScenarioHandler(scenarioService, logger).RegisterRoutes(mux)
	handlers.NewReferenceHandler(store, logger).RegisterRoutes(mux)

	handler := middleware.WithRequestID(middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting roi-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Env),
		zap.String("store_driver", cfg.Store.Driver))

	if cfg.TLSCertPath != "" {
		err = http.ListenAndServeTLS(addr, cfg.TLSCertPath, cfg.TLSKeyPath, handler)
	} else {
		err = http.ListenAndServe(addr, handler)
	}
	if err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds the root logger shared by every component. Production JSON
// output by default; the console encoder in development.
func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildReferenceStore opens the configured reference-store backend and returns
// it alongside its close function. The postgres driver runs pending migrations
// before serving; the memory driver loads a YAML snapshot and needs neither a
// database nor migrations.
func buildReferenceStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.ReferenceStore, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		logger.Info("Using in-memory reference store",
			zap.String("seed_path", cfg.Store.SeedPath))
		mem, err := repositories.NewMemoryStore(cfg.Store.SeedPath)
		if err != nil {
			return services.ReferenceStore{}, nil, err
		}
		return services.ReferenceStore{
			Institutions: mem,
			Programs:     mem,
			Regions:      mem,
			Housing:      mem,
			Datasets:     mem,
		}, func() {}, nil

	case "postgres":
		connStr := cfg.Database.ConnectionString()
		logger.Info("Connecting to reference store",
			zap.String("target", logging.SanitizeConnectionString(connStr)))

		db, err := database.NewConnection(ctx, &database.Config{
			URL:            connStr,
			MaxConnections: cfg.Database.MaxConnections,
		})
		if err != nil {
			return services.ReferenceStore{}, nil, err
		}

		if err := runMigrations(cfg, logger); err != nil {
			db.Close()
			return services.ReferenceStore{}, nil, err
		}

		return services.ReferenceStore{
			Institutions: repositories.NewInstitutionRepository(db),
			Programs:     repositories.NewProgramRepository(db),
			Regions:      repositories.NewRegionRepository(db),
			Housing:      repositories.NewHousingRepository(db),
			Datasets:     repositories.NewDatasetRepository(db),
		}, db.Close, nil

	default:
		return services.ReferenceStore{}, nil, fmt.Errorf("unknown store driver %q (want postgres or memory)", cfg.Store.Driver)
	}
}

// runMigrations applies pending schema migrations over a dedicated
// database/sql connection. golang-migrate gets its own connection, not one
// borrowed from the pgx pool: the pool adapter swallows permission errors
// into an indefinite hang, a direct connection fails fast.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	db, err := sql.Open("pgx", cfg.Database.MigrationURL(migrationStatementTimeout))
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	return database.RunMigrations(db, cfg.Store.MigrationsPath, logger)
}

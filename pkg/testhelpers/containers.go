package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/database"
)

// PostgresImage is the stock image used for the reference-store container.
const PostgresImage = "postgres:16-alpine"

// RefStore holds a shared reference-store container with the schema
// migrated, for integration tests against real Postgres.
type RefStore struct {
	Container testcontainers.Container
	DB        *database.DB
	ConnStr   string
}

var (
	sharedRefStore     *RefStore
	sharedRefStoreOnce sync.Once
	sharedRefStoreErr  error
)

// GetRefStore returns a shared Postgres container with the reference schema
// applied. The container is created once and reused across all tests in the
// run; tests own their fixture rows and should clean up what they insert.
func GetRefStore(t *testing.T) *RefStore {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedRefStoreOnce.Do(func() {
		sharedRefStore, sharedRefStoreErr = setupRefStore()
	})

	if sharedRefStoreErr != nil {
		t.Fatalf("Failed to setup reference store: %v", sharedRefStoreErr)
	}

	return sharedRefStore
}

func setupRefStore() (*RefStore, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "roi_engine_test",
			"POSTGRES_USER":     "roi",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://roi:test_password@%s:%s/roi_engine_test?sslmode=disable",
		host, port.Port())

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to reference store: %w", err)
	}

	// Run migrations using database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open sql connection: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, MigrationsDir(), zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &RefStore{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// MigrationsDir locates the migrations directory relative to this source
// file, so integration tests work from any package directory.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// TruncateReferenceData removes all rows from the reference tables. Call it
// before seeding fixtures so tests stay independent of each other.
func TruncateReferenceData(t *testing.T, store *RefStore) {
	t.Helper()

	ctx := context.Background()
	_, err := store.DB.Exec(ctx, `
		TRUNCATE institutions, programs, national_program_stats,
		         regions, housing_rates, dataset_versions, cpi_series
		CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate reference data: %v", err)
	}
}

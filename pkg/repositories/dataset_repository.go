package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegeroi/roi-engine/pkg/database"
)

// DatasetRepository exposes dataset version stamps and the CPI series.
type DatasetRepository interface {
	// GetVersions returns the most recently retrieved version tag per
	// dataset name.
	GetVersions(ctx context.Context) (map[string]string, error)

	// GetInflationMultiplier returns the CPI multiplier for a year, or
	// (nil, nil) when the series has no row for it.
	GetInflationMultiplier(ctx context.Context, year int) (*float64, error)
}

type datasetRepository struct {
	db *database.DB
}

// NewDatasetRepository creates a new DatasetRepository backed by the
// Postgres reference store.
func NewDatasetRepository(db *database.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

var _ DatasetRepository = (*datasetRepository)(nil)

func (r *datasetRepository) GetVersions(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT DISTINCT ON (name) name, version_tag
		FROM dataset_versions
		ORDER BY name, retrieved_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset versions: %w", err)
	}
	defer rows.Close()

	versions := make(map[string]string)
	for rows.Next() {
		var name, tag string
		if err := rows.Scan(&name, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan dataset version: %w", err)
		}
		versions[name] = tag
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dataset versions: %w", err)
	}

	return versions, nil
}

func (r *datasetRepository) GetInflationMultiplier(ctx context.Context, year int) (*float64, error) {
	query := `SELECT multiplier FROM cpi_series WHERE year = $1`

	var multiplier float64
	err := r.db.QueryRow(ctx, query, year).Scan(&multiplier)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get CPI multiplier for %d: %w", year, err)
	}

	return &multiplier, nil
}

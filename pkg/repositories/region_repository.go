package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegeroi/roi-engine/pkg/apperrors"
	"github.com/collegeroi/roi-engine/pkg/database"
	"github.com/collegeroi/roi-engine/pkg/models"
)

// RegionRepository provides read-only access to regional price parity and
// earnings records.
type RegionRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Region, error)
	List(ctx context.Context) ([]*models.Region, error)
}

type regionRepository struct {
	db *database.DB
}

// NewRegionRepository creates a new RegionRepository backed by the Postgres
// reference store.
func NewRegionRepository(db *database.DB) RegionRepository {
	return &regionRepository{db: db}
}

var _ RegionRepository = (*regionRepository)(nil)

func (r *regionRepository) GetByCode(ctx context.Context, code string) (*models.Region, error) {
	query := `
		SELECT code, name, price_parity, median_earnings
		FROM regions
		WHERE code = $1`

	var region models.Region
	err := r.db.QueryRow(ctx, query, code).Scan(
		&region.Code,
		&region.Name,
		&region.PriceParity,
		&region.MedianEarnings,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get region %s: %w", code, err)
	}

	return &region, nil
}

func (r *regionRepository) List(ctx context.Context) ([]*models.Region, error) {
	query := `
		SELECT code, name, price_parity, median_earnings
		FROM regions
		ORDER BY code`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	var regions []*models.Region
	for rows.Next() {
		var region models.Region
		if err := rows.Scan(&region.Code, &region.Name, &region.PriceParity, &region.MedianEarnings); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, &region)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate regions: %w", err)
	}

	return regions, nil
}

package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegeroi/roi-engine/pkg/database"
	"github.com/collegeroi/roi-engine/pkg/models"
)

// HousingRepository resolves monthly rent figures from the fair-market-rent
// tables.
type HousingRepository interface {
	// GetMonthlyRent returns the best rent row for a housing type: an exact
	// match on locationKey wins over the enclosing state row, and among
	// equally specific rows the most recently retrieved dataset vintage
	// wins. Returns (nil, nil) when nothing matches; rent resolution is
	// soft, the caller falls back to the published defaults.
	GetMonthlyRent(ctx context.Context, housingType, locationKey, state string) (*models.HousingRate, error)
}

type housingRepository struct {
	db *database.DB
}

// NewHousingRepository creates a new HousingRepository backed by the
// Postgres reference store.
func NewHousingRepository(db *database.DB) HousingRepository {
	return &housingRepository{db: db}
}

var _ HousingRepository = (*housingRepository)(nil)

func (r *housingRepository) GetMonthlyRent(ctx context.Context, housingType, locationKey, state string) (*models.HousingRate, error) {
	query := `
		SELECT hr.location_key, hr.location_kind, hr.housing_type, hr.monthly_rent, hr.dataset_version
		FROM housing_rates hr
		LEFT JOIN dataset_versions dv
		       ON dv.name = $4 AND dv.version_tag = hr.dataset_version
		WHERE hr.housing_type = $1
		  AND (hr.location_key = $2 OR (hr.location_kind = 'state' AND hr.location_key = $3))
		ORDER BY (hr.location_key = $2) DESC, dv.retrieved_at DESC NULLS LAST
		LIMIT 1`

	var rate models.HousingRate
	err := r.db.QueryRow(ctx, query, housingType, locationKey, state, models.DatasetHUDRents).Scan(
		&rate.LocationKey,
		&rate.LocationKind,
		&rate.HousingType,
		&rate.MonthlyRent,
		&rate.DatasetVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve rent for %s in %s: %w", housingType, locationKey, err)
	}

	return &rate, nil
}

package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegeroi/roi-engine/pkg/apperrors"
	"github.com/collegeroi/roi-engine/pkg/database"
	"github.com/collegeroi/roi-engine/pkg/models"
)

// InstitutionRepository provides read-only access to institution records.
type InstitutionRepository interface {
	GetByUnitID(ctx context.Context, unitID int) (*models.Institution, error)
	Search(ctx context.Context, state, query string, limit int) ([]*models.Institution, error)
}

type institutionRepository struct {
	db *database.DB
}

// NewInstitutionRepository creates a new InstitutionRepository backed by the
// Postgres reference store.
func NewInstitutionRepository(db *database.DB) InstitutionRepository {
	return &institutionRepository{db: db}
}

var _ InstitutionRepository = (*institutionRepository)(nil)

const institutionColumns = `
	unit_id, name, state, city, control_type,
	tuition_in_state, tuition_out_state, graduation_rate,
	avg_net_price, pct_pell, undergrad_enrollment, avg_earnings`

func (r *institutionRepository) GetByUnitID(ctx context.Context, unitID int) (*models.Institution, error) {
	query := `SELECT` + institutionColumns + `
		FROM institutions
		WHERE unit_id = $1`

	inst, err := scanInstitution(r.db.QueryRow(ctx, query, unitID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get institution %d: %w", unitID, err)
	}

	return inst, nil
}

func (r *institutionRepository) Search(ctx context.Context, state, query string, limit int) ([]*models.Institution, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	sql := `SELECT` + institutionColumns + `
		FROM institutions
		WHERE ($1 = '' OR state = $1)
		  AND ($2 = '' OR lower(name) LIKE lower($2) || '%' OR lower(name) LIKE '% ' || lower($2) || '%')
		ORDER BY name
		LIMIT $3`

	rows, err := r.db.Query(ctx, sql, state, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search institutions: %w", err)
	}
	defer rows.Close()

	var institutions []*models.Institution
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan institution: %w", err)
		}
		institutions = append(institutions, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate institutions: %w", err)
	}

	return institutions, nil
}

func scanInstitution(row pgx.Row) (*models.Institution, error) {
	var inst models.Institution
	err := row.Scan(
		&inst.UnitID,
		&inst.Name,
		&inst.State,
		&inst.City,
		&inst.ControlType,
		&inst.TuitionInState,
		&inst.TuitionOutState,
		&inst.GraduationRate,
		&inst.AvgNetPrice,
		&inst.PctPell,
		&inst.UndergradEnrollment,
		&inst.AvgEarnings,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegeroi/roi-engine/pkg/apperrors"
	"github.com/collegeroi/roi-engine/pkg/database"
	"github.com/collegeroi/roi-engine/pkg/models"
)

// ProgramRepository provides read-only access to program records and their
// national aggregates.
type ProgramRepository interface {
	Get(ctx context.Context, unitID int, cipCode string, credentialLevel int) (*models.Program, error)
	ListByInstitution(ctx context.Context, unitID int) ([]*models.Program, error)

	// GetNationalStat returns the national aggregate for a (CIP, credential)
	// pair, or (nil, nil) when no aggregate exists. Soft by design: the
	// national tier is an optional rung of the fallback chain.
	GetNationalStat(ctx context.Context, cipCode string, credentialLevel int) (*models.NationalProgramStat, error)
}

type programRepository struct {
	db *database.DB
}

// NewProgramRepository creates a new ProgramRepository backed by the
// Postgres reference store.
func NewProgramRepository(db *database.DB) ProgramRepository {
	return &programRepository{db: db}
}

var _ ProgramRepository = (*programRepository)(nil)

func (r *programRepository) Get(ctx context.Context, unitID int, cipCode string, credentialLevel int) (*models.Program, error) {
	query := `
		SELECT unit_id, cip_code, name, credential_level,
		       earnings_1yr, earnings_3yr, earnings_5yr, median_debt, completions
		FROM programs
		WHERE unit_id = $1 AND cip_code = $2 AND credential_level = $3`

	prog, err := scanProgram(r.db.QueryRow(ctx, query, unitID, cipCode, credentialLevel))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get program %s at %d: %w", cipCode, unitID, err)
	}

	return prog, nil
}

func (r *programRepository) ListByInstitution(ctx context.Context, unitID int) ([]*models.Program, error) {
	query := `
		SELECT unit_id, cip_code, name, credential_level,
		       earnings_1yr, earnings_3yr, earnings_5yr, median_debt, completions
		FROM programs
		WHERE unit_id = $1
		ORDER BY name, credential_level`

	rows, err := r.db.Query(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs for %d: %w", unitID, err)
	}
	defer rows.Close()

	var programs []*models.Program
	for rows.Next() {
		prog, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, prog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate programs: %w", err)
	}

	return programs, nil
}

func (r *programRepository) GetNationalStat(ctx context.Context, cipCode string, credentialLevel int) (*models.NationalProgramStat, error) {
	query := `
		SELECT cip_code, credential_level,
		       earnings_1yr, earnings_3yr, earnings_5yr, median_debt
		FROM national_program_stats
		WHERE cip_code = $1 AND credential_level = $2`

	var stat models.NationalProgramStat
	err := r.db.QueryRow(ctx, query, cipCode, credentialLevel).Scan(
		&stat.CIPCode,
		&stat.CredentialLevel,
		&stat.Earnings1yr,
		&stat.Earnings3yr,
		&stat.Earnings5yr,
		&stat.MedianDebt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get national stats for %s: %w", cipCode, err)
	}

	return &stat, nil
}

func scanProgram(row pgx.Row) (*models.Program, error) {
	var prog models.Program
	err := row.Scan(
		&prog.UnitID,
		&prog.CIPCode,
		&prog.Name,
		&prog.CredentialLevel,
		&prog.Earnings1yr,
		&prog.Earnings3yr,
		&prog.Earnings5yr,
		&prog.MedianDebt,
		&prog.Completions,
	)
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/apperrors"
	"github.com/collegeroi/roi-engine/pkg/cache"
	"github.com/collegeroi/roi-engine/pkg/config"
	"github.com/collegeroi/roi-engine/pkg/models"
	"github.com/collegeroi/roi-engine/pkg/repositories"
	"github.com/collegeroi/roi-engine/pkg/workerpool"
)

// ScenarioService evaluates household scenarios against the reference store.
type ScenarioService interface {
	Compute(ctx context.Context, req *models.ScenarioRequest) (*models.ScenarioResult, error)
	Compare(ctx context.Context, reqs []models.ScenarioRequest) ([]models.ScenarioOutcome, error)
	DatasetVersions(ctx context.Context) (map[string]string, error)
}

// ReferenceStore bundles the read-only accessors the pipeline consumes. The
// Postgres repositories and the in-memory store both satisfy every field.
type ReferenceStore struct {
	Institutions repositories.InstitutionRepository
	Programs     repositories.ProgramRepository
	Regions      repositories.RegionRepository
	Housing      repositories.HousingRepository
	Datasets     repositories.DatasetRepository
}

type scenarioService struct {
	store ReferenceStore

	cost     *CostModel
	debt     *DebtModel
	earnings *EarningsModel
	kpi      *KPIAggregator

	pool        *workerpool.Pool
	resultCache *cache.ScenarioCache
	assumptions config.Assumptions
	logger      *zap.Logger
}

// NewScenarioService wires the computation pipeline. resultCache may be nil
// (caching disabled).
func NewScenarioService(store ReferenceStore, assumptions config.Assumptions, resultCache *cache.ScenarioCache, logger *zap.Logger) ScenarioService {
	return &scenarioService{
		store:       store,
		cost:        NewCostModel(assumptions, logger),
		debt:        NewDebtModel(assumptions, logger),
		earnings:    NewEarningsModel(assumptions, logger),
		kpi:         NewKPIAggregator(assumptions, logger),
		pool:        workerpool.New(workerpool.Config{MaxConcurrent: assumptions.MaxCompareScenarios}, logger),
		resultCache: resultCache,
		assumptions: assumptions,
		logger:      logger.Named("scenario-service"),
	}
}

var _ ScenarioService = (*scenarioService)(nil)

// Compute runs the full pipeline for one scenario: fetch reference records,
// resolve earnings through the fallback chain, run the cost, debt, and
// earnings models, and assemble the KPI set. Soft data gaps become warnings
// on the result; only validation and missing keyed records are errors.
func (s *scenarioService) Compute(ctx context.Context, req *models.ScenarioRequest) (*models.ScenarioResult, error) {
	if err := ValidateScenario(req); err != nil {
		return nil, err
	}

	if cached, ok := s.resultCache.Get(ctx, req); ok {
		s.logger.Debug("scenario served from cache",
			zap.Int("unit_id", req.UnitID),
			zap.String("cip_code", req.CIPCode))
		return cached, nil
	}

	inst, err := s.store.Institutions.GetByUnitID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("institution %d: %w", req.UnitID, apperrors.ErrNotFound)
		}
		s.logger.Error("failed to fetch institution",
			zap.Int("unit_id", req.UnitID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to fetch institution %d: %w", req.UnitID, err)
	}

	program, err := s.store.Programs.Get(ctx, req.UnitID, req.CIPCode, req.CredentialLevel)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("program %s (level %d) at institution %d: %w",
				req.CIPCode, req.CredentialLevel, req.UnitID, apperrors.ErrNotFound)
		}
		s.logger.Error("failed to fetch program",
			zap.Int("unit_id", req.UnitID),
			zap.String("cip_code", req.CIPCode),
			zap.Error(err))
		return nil, fmt.Errorf("failed to fetch program %s: %w", req.CIPCode, err)
	}

	years, _ := models.CredentialDuration(req.CredentialLevel)

	var warnings []string

	national, err := s.store.Programs.GetNationalStat(ctx, req.CIPCode, req.CredentialLevel)
	if err != nil {
		s.logger.Warn("failed to fetch national program stats",
			zap.String("cip_code", req.CIPCode),
			zap.Error(err))
		warnings = append(warnings, "National program statistics could not be read")
		national = nil
	}

	var dest *models.Region
	if req.RegionCode != nil && *req.RegionCode != "" {
		dest, err = s.store.Regions.GetByCode(ctx, *req.RegionCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("region %q: %w", *req.RegionCode, apperrors.ErrNotFound)
			}
			s.logger.Error("failed to fetch region",
				zap.String("region_code", *req.RegionCode),
				zap.Error(err))
			return nil, fmt.Errorf("failed to fetch region %q: %w", *req.RegionCode, err)
		}
	}

	// The origin parity only matters when an adjustment was requested.
	var origin *models.Region
	if dest != nil {
		origin, err = s.store.Regions.GetByCode(ctx, inst.State)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				s.logger.Warn("failed to fetch origin region",
					zap.String("state", inst.State),
					zap.Error(err))
			}
			origin = nil
		}
	}

	var rate *models.HousingRate
	if req.HousingType != models.HousingNone && req.RentMonthly == nil {
		locationKey := inst.State
		if req.LocationKey != nil && *req.LocationKey != "" {
			locationKey = *req.LocationKey
		}
		rate, err = s.store.Housing.GetMonthlyRent(ctx, req.HousingType, locationKey, inst.State)
		if err != nil {
			s.logger.Warn("rent lookup failed",
				zap.String("location_key", locationKey),
				zap.Error(err))
			warnings = append(warnings, "Rent tables could not be read; using the default rent")
			rate = nil
		}
	}

	resolution := ResolveEarnings(earningsTiers(program, inst, national, s.assumptions.EarningsAnnual))

	costResult := s.cost.Compute(inst, req, rate)
	debtResult := s.debt.Compute(costResult.Annual, req, years)
	earningsResult := s.earnings.Adjust(resolution, dest, origin)

	inflation, inflationWarning := s.inflationRate(ctx)
	if inflationWarning != "" {
		warnings = append(warnings, inflationWarning)
	}

	versions, err := s.store.Datasets.GetVersions(ctx)
	if err != nil {
		s.logger.Warn("failed to read dataset versions", zap.Error(err))
		warnings = append(warnings, "Dataset version stamps unavailable")
		versions = nil
	}

	result := s.kpi.Assemble(KPIInputs{
		Institution:   inst,
		Program:       program,
		Request:       req,
		ProgramYears:  years,
		Cost:          costResult,
		Debt:          debtResult,
		Earnings:      earningsResult,
		InflationRate: inflation,
		Versions:      versions,
		Warnings:      warnings,
	})

	s.resultCache.Set(ctx, req, result)
	s.logger.Debug("scenario computed",
		zap.Int("unit_id", req.UnitID),
		zap.String("cip_code", req.CIPCode),
		zap.Int("warning_count", len(result.Warnings)))
	return result, nil
}

func (s *scenarioService) DatasetVersions(ctx context.Context) (map[string]string, error) {
	versions, err := s.store.Datasets.GetVersions(ctx)
	if err != nil {
		s.logger.Error("failed to read dataset versions", zap.Error(err))
		return nil, fmt.Errorf("failed to read dataset versions: %w", err)
	}
	return versions, nil
}

// inflationRate derives the tuition growth assumption from last year's CPI
// multiplier, falling back to the configured default with a warning.
func (s *scenarioService) inflationRate(ctx context.Context) (float64, string) {
	year := time.Now().Year() - 1
	multiplier, err := s.store.Datasets.GetInflationMultiplier(ctx, year)
	if err != nil || multiplier == nil {
		return s.assumptions.TuitionInflationRate,
			fmt.Sprintf("No CPI data for %d; projecting total cost at %.0f%%/yr", year, s.assumptions.TuitionInflationRate*100)
	}
	return *multiplier - 1, ""
}

// ValidateScenario rejects malformed requests before any computation. The
// models downstream assume these checks have run.
func ValidateScenario(req *models.ScenarioRequest) error {
	if req.UnitID <= 0 {
		return apperrors.NewValidation("unit_id", "a positive institution unit id is required")
	}
	if req.CIPCode == "" {
		return apperrors.NewValidation("cip_code", "a program CIP code is required")
	}
	if _, ok := models.CredentialDuration(req.CredentialLevel); !ok {
		return apperrors.NewValidation("credential_level", "must be 1 (certificate), 2 (associate), 3 (bachelor), 5 (master), or 6 (doctorate)")
	}
	if !models.ValidHousingType(req.HousingType) {
		return apperrors.NewValidation("housing_type", "must be one of none, studio, 1BR, 2BR, 3BR, 4BR")
	}
	if req.Roommates < 0 {
		return apperrors.NewValidation("roommates", "cannot be negative")
	}

	money := []struct {
		field string
		value *float64
	}{
		{"rent_monthly", req.RentMonthly},
		{"utilities_monthly", req.UtilitiesMonthly},
		{"food_monthly", req.FoodMonthly},
		{"transport_monthly", req.TransportMonthly},
		{"misc_monthly", req.MiscMonthly},
		{"books_annual", req.BooksAnnual},
		{"aid_annual", req.AidAnnual},
		{"cash_annual", req.CashAnnual},
	}
	for _, m := range money {
		if m.value != nil && *m.value < 0 {
			return apperrors.NewValidation(m.field, "cannot be negative")
		}
	}

	rates := []struct {
		field string
		value *float64
	}{
		{"loan_apr", req.LoanAPR},
		{"tax_rate", req.TaxRate},
	}
	for _, r := range rates {
		if r.value != nil && (*r.value < 0 || *r.value > 1) {
			return apperrors.NewValidation(r.field, "must be within [0,1]")
		}
	}

	return nil
}

//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/collegeroi/roi-engine/pkg/apperrors"
	"github.com/collegeroi/roi-engine/pkg/models"
	"github.com/collegeroi/roi-engine/pkg/testhelpers"
)

// referenceTestContext holds the shared container plus one repository of each
// kind, all reading the same seeded tables.
type referenceTestContext struct {
	t            *testing.T
	store        *testhelpers.RefStore
	institutions InstitutionRepository
	programs     ProgramRepository
	regions      RegionRepository
	housing      HousingRepository
	datasets     DatasetRepository
}

func setupReferenceTest(t *testing.T) *referenceTestContext {
	store := testhelpers.GetRefStore(t)
	testhelpers.TruncateReferenceData(t, store)
	tc := &referenceTestContext{
		t:            t,
		store:        store,
		institutions: NewInstitutionRepository(store.DB),
		programs:     NewProgramRepository(store.DB),
		regions:      NewRegionRepository(store.DB),
		housing:      NewHousingRepository(store.DB),
		datasets:     NewDatasetRepository(store.DB),
	}
	tc.seedReferenceData()
	return tc
}

func (tc *referenceTestContext) exec(sql string, args ...any) {
	tc.t.Helper()
	if _, err := tc.store.DB.Pool.Exec(context.Background(), sql, args...); err != nil {
		tc.t.Fatalf("failed to seed reference data: %v", err)
	}
}

func (tc *referenceTestContext) seedReferenceData() {
	tc.exec(`
		INSERT INTO institutions (unit_id, name, state, city, control_type, tuition_in_state, tuition_out_state, graduation_rate)
		VALUES
			(110635, 'University of California-Berkeley', 'CA', 'Berkeley', 1, 14226, 44008, 0.93),
			(166027, 'Harvard University', 'MA', 'Cambridge', 2, 57261, 57261, 0.98),
			(204796, 'Ohio State University-Main Campus', 'OH', 'Columbus', 1, 12485, 36722, 0.88)
	`)
	tc.exec(`
		INSERT INTO programs (unit_id, cip_code, name, credential_level, earnings_1yr, earnings_3yr, earnings_5yr, median_debt)
		VALUES
			(110635, '11.07', 'Computer Science', 3, 125000, 150000, 175000, 14000),
			(110635, '42.01', 'Psychology', 3, NULL, NULL, NULL, NULL),
			(204796, '11.07', 'Computer Science', 3, 85000, NULL, NULL, NULL)
	`)
	tc.exec(`
		INSERT INTO national_program_stats (cip_code, credential_level, earnings_1yr, earnings_3yr, earnings_5yr)
		VALUES ('42.01', 3, 42000, 47000, 52000)
	`)
	tc.exec(`
		INSERT INTO regions (code, name, price_parity, median_earnings)
		VALUES
			('CA', 'California', 1.12, 61000),
			('OH', 'Ohio', 0.91, 49000),
			('TX', 'Texas', 0.97, NULL)
	`)
	tc.exec(`
		INSERT INTO dataset_versions (name, version_tag, retrieved_at)
		VALUES
			('hud_safmrs', 'FY2025', '2025-02-01T00:00:00Z'),
			('hud_safmrs', 'FY2026', '2026-02-01T00:00:00Z'),
			('college_scorecard', 'Most Recent Cohorts (2024)', '2024-10-01T00:00:00Z')
	`)
	tc.exec(`
		INSERT INTO housing_rates (location_key, location_kind, housing_type, monthly_rent, dataset_version)
		VALUES
			('94704', 'zip', '1BR', 2350, 'FY2025'),
			('94704', 'zip', '1BR', 2475, 'FY2026'),
			('CA', 'state', '1BR', 1880, 'FY2026'),
			('OH', 'state', '1BR', 940, 'FY2026')
	`)
	tc.exec(`
		INSERT INTO cpi_series (year, cpi_value, multiplier)
		VALUES (2023, 304.7, 1.063), (2024, 313.7, 1.031)
	`)
}

func TestInstitutionRepository_GetByUnitID(t *testing.T) {
	tc := setupReferenceTest(t)
	ctx := context.Background()

	inst, err := tc.institutions.GetByUnitID(ctx, 110635)
	if err != nil {
		t.Fatalf("GetByUnitID returned error: %v", err)
	}
	if inst.Name != "University of California-Berkeley" {
		t.Errorf("unexpected name %q", inst.Name)
	}
	if inst.TuitionInState == nil || *inst.TuitionInState != 14226 {
		t.Errorf("unexpected in-state tuition: %v", inst.TuitionInState)
	}
	if inst.AvgNetPrice != nil {
		t.Errorf("expected nil avg net price, got %v", *inst.AvgNetPrice)
	}

	if _, err := tc.institutions.GetByUnitID(ctx, 999999); err != apperrors.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInstitutionRepository_Search(t *testing.T) {
	tc := setupReferenceTest(t)
	ctx := context.Background()

	byState, err := tc.institutions.Search(ctx, "CA", "", 50)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(byState) != 1 || byState[0].UnitID != 110635 {
		t.Errorf("state filter returned %+v", byState)
	}

	// Prefix match and interior-word match both hit; substring inside a
	// word does not.
	byQuery, err := tc.institutions.Search(ctx, "", "state", 50)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(byQuery) != 1 || byQuery[0].UnitID != 204796 {
		t.Errorf("query filter returned %+v", byQuery)
	}

	all, err := tc.institutions.Search(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 institutions, got %d", len(all))
	}
	if all[0].Name != "Harvard University" {
		t.Errorf("expected name ordering, got %q first", all[0].Name)
	}
}

func TestProgramRepository_GetAndList(t *testing.T) {
	tc := setupReferenceTest(t)
	ctx := context.Background()

	prog, err := tc.programs.Get(ctx, 110635, "11.07", 3)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if prog.Name != "Computer Science" || *prog.Earnings5yr != 175000 {
		t.Errorf("unexpected program: %+v", prog)
	}

	if _, err := tc.programs.Get(ctx, 110635, "11.07", 5); err != apperrors.ErrNotFound {
		t.Errorf("expected ErrNotFound for missing level, got %v", err)
	}

	programs, err := tc.programs.ListByInstitution(ctx, 110635)
	if err != nil {
		t.Fatalf("ListByInstitution returned error: %v", err)
	}
	if len(programs) != 2 || programs[0].Name != "Computer Science" {
		t.Errorf("unexpected listing: %+v", programs)
	}

	stat, err := tc.programs.GetNationalStat(ctx, "42.01", 3)
	if err != nil {
		t.Fatalf("GetNationalStat returned error: %v", err)
	}
	if stat == nil || *stat.Earnings1yr != 42000 {
		t.Errorf("unexpected national stat: %+v", stat)
	}

	missing, err := tc.programs.GetNationalStat(ctx, "14.01", 3)
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) soft miss, got (%+v, %v)", missing, err)
	}
}

func TestRegionRepository(t *testing.T) {
	tc := setupReferenceTest(t)
	ctx := context.Background()

	region, err := tc.regions.GetByCode(ctx, "OH")
	if err != nil {
		t.Fatalf("GetByCode returned error: %v", err)
	}
	if *region.PriceParity != 0.91 {
		t.Errorf("unexpected parity %v", *region.PriceParity)
	}

	if _, err := tc.regions.GetByCode(ctx, "ZZ"); err != apperrors.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	regions, err := tc.regions.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(regions) != 3 || regions[0].Code != "CA" {
		t.Errorf("unexpected region list: %+v", regions)
	}
	if regions[2].MedianEarnings != nil {
		t.Errorf("expected nil median earnings for TX, got %v", *regions[2].MedianEarnings)
	}
}

func TestHousingRepository_TieBreak(t *testing.T) {
	tc := setupReferenceTest(t)
	ctx := context.Background()

	// Exact location key beats the enclosing state row even though both
	// carry the same vintage; among exact rows the newest vintage wins.
	rate, err := tc.housing.GetMonthlyRent(ctx, "1BR", "94704", "CA")
	if err != nil {
		t.Fatalf("GetMonthlyRent returned error: %v", err)
	}
	if rate == nil || rate.MonthlyRent != 2475 || rate.DatasetVersion != "FY2026" {
		t.Errorf("expected exact FY2026 rate 2475, got %+v", rate)
	}

	rate, err = tc.housing.GetMonthlyRent(ctx, "1BR", "90210", "CA")
	if err != nil {
		t.Fatalf("GetMonthlyRent returned error: %v", err)
	}
	if rate == nil || rate.MonthlyRent != 1880 || rate.LocationKind != models.LocationKindState {
		t.Errorf("expected state fallback 1880, got %+v", rate)
	}

	rate, err = tc.housing.GetMonthlyRent(ctx, "2BR", "94704", "CA")
	if err != nil || rate != nil {
		t.Errorf("expected (nil, nil) for missing housing type, got (%+v, %v)", rate, err)
	}
}

func TestDatasetRepository(t *testing.T) {
	tc := setupReferenceTest(t)
	ctx := context.Background()

	versions, err := tc.datasets.GetVersions(ctx)
	if err != nil {
		t.Fatalf("GetVersions returned error: %v", err)
	}
	if versions["hud_safmrs"] != "FY2026" {
		t.Errorf("expected latest HUD vintage FY2026, got %q", versions["hud_safmrs"])
	}
	if versions["college_scorecard"] != "Most Recent Cohorts (2024)" {
		t.Errorf("unexpected scorecard version %q", versions["college_scorecard"])
	}

	mult, err := tc.datasets.GetInflationMultiplier(ctx, 2024)
	if err != nil || mult == nil || *mult != 1.031 {
		t.Errorf("expected multiplier 1.031, got (%v, %v)", mult, err)
	}

	missing, err := tc.datasets.GetInflationMultiplier(ctx, 1999)
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for missing year, got (%v, %v)", missing, err)
	}
}

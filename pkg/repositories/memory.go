package repositories

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/collegeroi/roi-engine/pkg/apperrors"
	"github.com/collegeroi/roi-engine/pkg/models"
)

// MemoryStore is an in-memory implementation of every repository interface,
// loaded once from a YAML snapshot. It exists for local development without
// a Postgres store and for deterministic tests; lookups follow the same
// contracts as the Postgres implementations, including the housing
// tie-break order. The store is immutable after load, so it is safe for
// concurrent readers.
type MemoryStore struct {
	institutions map[int]*models.Institution
	programs     map[programKey]*models.Program
	national     map[nationalKey]*models.NationalProgramStat
	regions      map[string]*models.Region
	housingRates []models.HousingRate
	versions     []models.DatasetVersion
	cpi          map[int]float64
}

type programKey struct {
	unitID          int
	cipCode         string
	credentialLevel int
}

type nationalKey struct {
	cipCode         string
	credentialLevel int
}

var (
	_ InstitutionRepository = (*MemoryStore)(nil)
	_ ProgramRepository     = (*MemoryStore)(nil)
	_ RegionRepository      = (*MemoryStore)(nil)
	_ HousingRepository     = (*MemoryStore)(nil)
	_ DatasetRepository     = (*MemoryStore)(nil)
)

// Seed is the YAML snapshot schema consumed by the memory store.
type Seed struct {
	Institutions []SeedInstitution    `yaml:"institutions"`
	Programs     []SeedProgram        `yaml:"programs"`
	National     []SeedNationalStat   `yaml:"national_program_stats"`
	Regions      []SeedRegion         `yaml:"regions"`
	HousingRates []SeedHousingRate    `yaml:"housing_rates"`
	Datasets     []SeedDatasetVersion `yaml:"dataset_versions"`
	CPI          []SeedCPIYear        `yaml:"cpi_series"`
}

// SeedInstitution mirrors models.Institution with YAML field names.
type SeedInstitution struct {
	UnitID              int      `yaml:"unit_id"`
	Name                string   `yaml:"name"`
	State               string   `yaml:"state"`
	City                string   `yaml:"city"`
	ControlType         int      `yaml:"control_type"`
	TuitionInState      *float64 `yaml:"tuition_in_state"`
	TuitionOutState     *float64 `yaml:"tuition_out_state"`
	GraduationRate      *float64 `yaml:"graduation_rate"`
	AvgNetPrice         *float64 `yaml:"avg_net_price"`
	PctPell             *float64 `yaml:"pct_pell"`
	UndergradEnrollment *int     `yaml:"undergrad_enrollment"`
	AvgEarnings         *float64 `yaml:"avg_earnings"`
}

// SeedProgram mirrors models.Program with YAML field names.
type SeedProgram struct {
	UnitID          int      `yaml:"unit_id"`
	CIPCode         string   `yaml:"cip_code"`
	Name            string   `yaml:"name"`
	CredentialLevel int      `yaml:"credential_level"`
	Earnings1yr     *float64 `yaml:"earnings_1yr"`
	Earnings3yr     *float64 `yaml:"earnings_3yr"`
	Earnings5yr     *float64 `yaml:"earnings_5yr"`
	MedianDebt      *float64 `yaml:"median_debt"`
	Completions     *int     `yaml:"completions"`
}

// SeedNationalStat mirrors models.NationalProgramStat.
type SeedNationalStat struct {
	CIPCode         string   `yaml:"cip_code"`
	CredentialLevel int      `yaml:"credential_level"`
	Earnings1yr     *float64 `yaml:"earnings_1yr"`
	Earnings3yr     *float64 `yaml:"earnings_3yr"`
	Earnings5yr     *float64 `yaml:"earnings_5yr"`
	MedianDebt      *float64 `yaml:"median_debt"`
}

// SeedRegion mirrors models.Region.
type SeedRegion struct {
	Code           string   `yaml:"code"`
	Name           string   `yaml:"name"`
	PriceParity    *float64 `yaml:"price_parity"`
	MedianEarnings *float64 `yaml:"median_earnings"`
}

// SeedHousingRate mirrors models.HousingRate.
type SeedHousingRate struct {
	LocationKey    string  `yaml:"location_key"`
	LocationKind   string  `yaml:"location_kind"`
	HousingType    string  `yaml:"housing_type"`
	MonthlyRent    float64 `yaml:"monthly_rent"`
	DatasetVersion string  `yaml:"dataset_version"`
}

// SeedDatasetVersion mirrors models.DatasetVersion.
type SeedDatasetVersion struct {
	Name        string    `yaml:"name"`
	VersionTag  string    `yaml:"version_tag"`
	RetrievedAt time.Time `yaml:"retrieved_at"`
}

// SeedCPIYear is one row of the CPI series.
type SeedCPIYear struct {
	Year       int     `yaml:"year"`
	Multiplier float64 `yaml:"multiplier"`
}

// NewMemoryStore loads a YAML snapshot from disk.
func NewMemoryStore(seedPath string) (*MemoryStore, error) {
	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", seedPath, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", seedPath, err)
	}

	return NewMemoryStoreFromSeed(&seed), nil
}

// NewMemoryStoreFromSeed builds a memory store from an already-parsed seed.
func NewMemoryStoreFromSeed(seed *Seed) *MemoryStore {
	s := &MemoryStore{
		institutions: make(map[int]*models.Institution),
		programs:     make(map[programKey]*models.Program),
		national:     make(map[nationalKey]*models.NationalProgramStat),
		regions:      make(map[string]*models.Region),
		cpi:          make(map[int]float64),
	}

	for _, si := range seed.Institutions {
		s.institutions[si.UnitID] = &models.Institution{
			UnitID:              si.UnitID,
			Name:                si.Name,
			State:               si.State,
			City:                si.City,
			ControlType:         si.ControlType,
			TuitionInState:      si.TuitionInState,
			TuitionOutState:     si.TuitionOutState,
			GraduationRate:      si.GraduationRate,
			AvgNetPrice:         si.AvgNetPrice,
			PctPell:             si.PctPell,
			UndergradEnrollment: si.UndergradEnrollment,
			AvgEarnings:         si.AvgEarnings,
		}
	}

	for _, sp := range seed.Programs {
		key := programKey{sp.UnitID, sp.CIPCode, sp.CredentialLevel}
		s.programs[key] = &models.Program{
			UnitID:          sp.UnitID,
			CIPCode:         sp.CIPCode,
			Name:            sp.Name,
			CredentialLevel: sp.CredentialLevel,
			Earnings1yr:     sp.Earnings1yr,
			Earnings3yr:     sp.Earnings3yr,
			Earnings5yr:     sp.Earnings5yr,
			MedianDebt:      sp.MedianDebt,
			Completions:     sp.Completions,
		}
	}

	for _, sn := range seed.National {
		key := nationalKey{sn.CIPCode, sn.CredentialLevel}
		s.national[key] = &models.NationalProgramStat{
			CIPCode:         sn.CIPCode,
			CredentialLevel: sn.CredentialLevel,
			Earnings1yr:     sn.Earnings1yr,
			Earnings3yr:     sn.Earnings3yr,
			Earnings5yr:     sn.Earnings5yr,
			MedianDebt:      sn.MedianDebt,
		}
	}

	for _, sr := range seed.Regions {
		s.regions[sr.Code] = &models.Region{
			Code:           sr.Code,
			Name:           sr.Name,
			PriceParity:    sr.PriceParity,
			MedianEarnings: sr.MedianEarnings,
		}
	}

	for _, hr := range seed.HousingRates {
		s.housingRates = append(s.housingRates, models.HousingRate{
			LocationKey:    hr.LocationKey,
			LocationKind:   hr.LocationKind,
			HousingType:    hr.HousingType,
			MonthlyRent:    hr.MonthlyRent,
			DatasetVersion: hr.DatasetVersion,
		})
	}

	for _, dv := range seed.Datasets {
		s.versions = append(s.versions, models.DatasetVersion{
			Name:        dv.Name,
			VersionTag:  dv.VersionTag,
			RetrievedAt: dv.RetrievedAt,
		})
	}

	for _, c := range seed.CPI {
		s.cpi[c.Year] = c.Multiplier
	}

	return s
}

// ============================================================================
// InstitutionRepository
// ============================================================================

func (s *MemoryStore) GetByUnitID(_ context.Context, unitID int) (*models.Institution, error) {
	inst, ok := s.institutions[unitID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return inst, nil
}

func (s *MemoryStore) Search(_ context.Context, state, query string, limit int) ([]*models.Institution, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := strings.ToLower(query)
	var matches []*models.Institution
	for _, inst := range s.institutions {
		if state != "" && inst.State != state {
			continue
		}
		if q != "" && !matchesName(inst.Name, q) {
			continue
		}
		matches = append(matches, inst)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func matchesName(name, lowerQuery string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, lowerQuery) {
		return true
	}
	return strings.Contains(lower, " "+lowerQuery)
}

// ============================================================================
// ProgramRepository
// ============================================================================

func (s *MemoryStore) Get(_ context.Context, unitID int, cipCode string, credentialLevel int) (*models.Program, error) {
	prog, ok := s.programs[programKey{unitID, cipCode, credentialLevel}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return prog, nil
}

func (s *MemoryStore) ListByInstitution(_ context.Context, unitID int) ([]*models.Program, error) {
	var programs []*models.Program
	for _, prog := range s.programs {
		if prog.UnitID == unitID {
			programs = append(programs, prog)
		}
	}
	sort.Slice(programs, func(i, j int) bool {
		if programs[i].Name != programs[j].Name {
			return programs[i].Name < programs[j].Name
		}
		return programs[i].CredentialLevel < programs[j].CredentialLevel
	})
	return programs, nil
}

func (s *MemoryStore) GetNationalStat(_ context.Context, cipCode string, credentialLevel int) (*models.NationalProgramStat, error) {
	stat, ok := s.national[nationalKey{cipCode, credentialLevel}]
	if !ok {
		return nil, nil
	}
	return stat, nil
}

// ============================================================================
// RegionRepository
// ============================================================================

func (s *MemoryStore) GetByCode(_ context.Context, code string) (*models.Region, error) {
	region, ok := s.regions[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return region, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.Region, error) {
	regions := make([]*models.Region, 0, len(s.regions))
	for _, region := range s.regions {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Code < regions[j].Code })
	return regions, nil
}

// ============================================================================
// HousingRepository
// ============================================================================

func (s *MemoryStore) GetMonthlyRent(_ context.Context, housingType, locationKey, state string) (*models.HousingRate, error) {
	var best *models.HousingRate
	var bestExact bool
	var bestRetrieved time.Time

	for i := range s.housingRates {
		rate := &s.housingRates[i]
		if rate.HousingType != housingType {
			continue
		}
		exact := rate.LocationKey == locationKey
		enclosing := rate.LocationKind == models.LocationKindState && rate.LocationKey == state
		if !exact && !enclosing {
			continue
		}

		retrieved := s.retrievedAt(models.DatasetHUDRents, rate.DatasetVersion)
		switch {
		case best == nil,
			exact && !bestExact,
			exact == bestExact && retrieved.After(bestRetrieved):
			best = rate
			bestExact = exact
			bestRetrieved = retrieved
		}
	}

	return best, nil
}

func (s *MemoryStore) retrievedAt(dataset, versionTag string) time.Time {
	for _, v := range s.versions {
		if v.Name == dataset && v.VersionTag == versionTag {
			return v.RetrievedAt
		}
	}
	return time.Time{}
}

// ============================================================================
// DatasetRepository
// ============================================================================

func (s *MemoryStore) GetVersions(_ context.Context) (map[string]string, error) {
	latest := make(map[string]models.DatasetVersion)
	for _, v := range s.versions {
		if cur, ok := latest[v.Name]; !ok || v.RetrievedAt.After(cur.RetrievedAt) {
			latest[v.Name] = v
		}
	}

	versions := make(map[string]string, len(latest))
	for name, v := range latest {
		versions[name] = v.VersionTag
	}
	return versions, nil
}

func (s *MemoryStore) GetInflationMultiplier(_ context.Context, year int) (*float64, error) {
	multiplier, ok := s.cpi[year]
	if !ok {
		return nil, nil
	}
	return &multiplier, nil
}

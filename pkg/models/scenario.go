package models

// ScenarioRequest is one household financial scenario to evaluate. Optional
// numeric fields are pointers: nil means "use the published default", never
// zero. Validation happens at the service boundary before any computation.
type ScenarioRequest struct {
	UnitID          int    `json:"unit_id"`
	CIPCode         string `json:"cip_code"`
	CredentialLevel int    `json:"credential_level"`
	InState         bool   `json:"in_state"`

	HousingType string   `json:"housing_type"`
	Roommates   int      `json:"roommates"`
	RentMonthly *float64 `json:"rent_monthly,omitempty"`
	// LocationKey overrides the rent lookup location (a ZIP or metro key).
	// When nil the institution's state is used.
	LocationKey *string `json:"location_key,omitempty"`

	UtilitiesMonthly *float64 `json:"utilities_monthly,omitempty"`
	FoodMonthly      *float64 `json:"food_monthly,omitempty"`
	TransportMonthly *float64 `json:"transport_monthly,omitempty"`
	MiscMonthly      *float64 `json:"misc_monthly,omitempty"`
	BooksAnnual      *float64 `json:"books_annual,omitempty"`

	AidAnnual  *float64 `json:"aid_annual,omitempty"`
	CashAnnual *float64 `json:"cash_annual,omitempty"`
	LoanAPR    *float64 `json:"loan_apr,omitempty"`
	TaxRate    *float64 `json:"tax_rate,omitempty"`

	RegionCode *string `json:"region_code,omitempty"`
	Label      string  `json:"label,omitempty"`
}

// CostBreakdown itemizes one year of attendance. TrueYearlyCost is always
// the exact sum of the three components.
type CostBreakdown struct {
	TuitionFees    float64 `json:"tuition_fees"`
	HousingAnnual  float64 `json:"housing_annual"`
	OtherAnnual    float64 `json:"other_annual"`
	TrueYearlyCost float64 `json:"true_yearly_cost"`
}

// ScenarioResult is the computed KPI set for one scenario. KPI fields are
// pointers because each degrades to null independently when its inputs are
// unavailable; a null KPI always has a companion warning. Results are
// created fresh per request and never persisted by the engine.
type ScenarioResult struct {
	Label           string `json:"label,omitempty"`
	InstitutionName string `json:"institution_name"`
	ProgramName     string `json:"program_name"`
	CredentialLevel int    `json:"credential_level"`
	ProgramYears    int    `json:"program_years"`

	Cost             CostBreakdown `json:"cost"`
	TotalProgramCost float64       `json:"total_program_cost"`

	NetBorrowingPerYear float64  `json:"net_borrowing_per_year"`
	ExpectedDebtAtGrad  float64  `json:"expected_debt_at_grad"`
	MonthlyPayment      *float64 `json:"monthly_payment,omitempty"`
	PaybackYears        *float64 `json:"payback_years,omitempty"`

	Earnings1yr    *float64   `json:"earnings_1yr,omitempty"`
	Earnings3yr    *float64   `json:"earnings_3yr,omitempty"`
	Earnings5yr    *float64   `json:"earnings_5yr,omitempty"`
	EarningsSource SourceTier `json:"earnings_source"`

	ROI            *float64 `json:"roi,omitempty"`
	DTIYear1       *float64 `json:"dti_year_1,omitempty"`
	GraduationRate *float64 `json:"graduation_rate,omitempty"`
	ComfortIndex   *float64 `json:"comfort_index,omitempty"`

	Warnings        []string          `json:"warnings"`
	DatasetVersions map[string]string `json:"dataset_versions"`
}

// OutcomeError carries a per-scenario hard error inside a comparison result.
type OutcomeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScenarioOutcome is one slot of a comparison: either a result or that
// scenario's own hard error. Slots keep the input order; one scenario's
// failure never empties its siblings.
type ScenarioOutcome struct {
	Result *ScenarioResult `json:"result,omitempty"`
	Error  *OutcomeError   `json:"error,omitempty"`
}

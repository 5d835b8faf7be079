package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/config"
	"github.com/collegeroi/roi-engine/pkg/models"
)

// testAssumptions returns the published defaults the models ship with.
func testAssumptions() config.Assumptions {
	return config.Assumptions{
		UtilitiesMonthly: 150,
		FoodMonthly:      400,
		TransportMonthly: 100,
		MiscMonthly:      200,
		BooksAnnual:      1200,

		TuitionInState:  10000,
		TuitionOutState: 30000,

		Housing: config.HousingDefaults{
			Studio:  850,
			OneBR:   1000,
			TwoBR:   1300,
			ThreeBR: 1600,
			FourBR:  1900,
		},

		EarningsAnnual:           45000,
		EarningsGrowthRate:       0.03,
		BaselineEarningsAnnual:   35000,
		BaselineLivingCostAnnual: 28800,

		LoanAPR:        0.05,
		TaxRate:        0.25,
		LoanTermMonths: 120,

		TuitionInflationRate: 0.03,
		EarningsHorizonYears: 5,
		MaxCompareScenarios:  4,

		Comfort: config.ComfortWeights{
			DTI:              0.40,
			Headroom:         0.30,
			Burden:           0.30,
			BurdenSaturation: 0.20,
		},
	}
}

func testInstitution() *models.Institution {
	return &models.Institution{
		UnitID:          555555,
		Name:            "Test State University",
		State:           "CA",
		City:            "Testville",
		ControlType:     models.ControlPublic,
		TuitionInState:  floatPtr(10000),
		TuitionOutState: floatPtr(30000),
		GraduationRate:  floatPtr(0.62),
	}
}

func TestCostModel_DefaultedScenario(t *testing.T) {
	model := NewCostModel(testAssumptions(), zap.NewNop())
	req := &models.ScenarioRequest{
		UnitID:      555555,
		HousingType: models.HousingNone,
		InState:     true,
	}

	result := model.Compute(testInstitution(), req, nil)

	assert.Equal(t, 10000.0, result.Breakdown.TuitionFees)
	assert.Equal(t, 0.0, result.Breakdown.HousingAnnual)
	// (150+400+100+200)*12 + 1200
	assert.Equal(t, 11400.0, result.Breakdown.OtherAnnual)
	assert.Equal(t, 21400.0, result.Breakdown.TrueYearlyCost)

	require.Len(t, result.Warnings, 5)
	assert.Contains(t, result.Warnings, "Using the default utilities budget of $150/mo")
	assert.Contains(t, result.Warnings, "Using the default food budget of $400/mo")
	assert.Contains(t, result.Warnings, "Using the default transport budget of $100/mo")
	assert.Contains(t, result.Warnings, "Using the default misc budget of $200/mo")
	assert.Contains(t, result.Warnings, "Using the default books budget of $1200/yr")
}

func TestCostModel_OverridesSuppressWarnings(t *testing.T) {
	model := NewCostModel(testAssumptions(), zap.NewNop())
	req := &models.ScenarioRequest{
		UnitID:           555555,
		HousingType:      models.HousingNone,
		InState:          true,
		UtilitiesMonthly: floatPtr(175),
		FoodMonthly:      floatPtr(350),
		TransportMonthly: floatPtr(80),
		MiscMonthly:      floatPtr(120),
		BooksAnnual:      floatPtr(900),
	}

	result := model.Compute(testInstitution(), req, nil)

	// (175+350+80+120)*12 + 900
	assert.Equal(t, 9600.0, result.Breakdown.OtherAnnual)
	assert.Empty(t, result.Warnings)
}

func TestCostModel_Additivity(t *testing.T) {
	model := NewCostModel(testAssumptions(), zap.NewNop())

	tests := []struct {
		name string
		req  *models.ScenarioRequest
		rate *models.HousingRate
	}{
		{
			name: "no housing all defaults",
			req:  &models.ScenarioRequest{HousingType: models.HousingNone, InState: true},
		},
		{
			name: "fractional rent override",
			req: &models.ScenarioRequest{
				HousingType: models.HousingOneBR,
				InState:     true,
				RentMonthly: floatPtr(833.337),
			},
		},
		{
			name: "three-way roommate split of a repeating decimal",
			req: &models.ScenarioRequest{
				HousingType: models.HousingTwoBR,
				Roommates:   2,
			},
			rate: &models.HousingRate{
				LocationKey:  "CA",
				LocationKind: models.LocationKindState,
				HousingType:  models.HousingTwoBR,
				MonthlyRent:  1000,
			},
		},
		{
			name: "fractional expense overrides",
			req: &models.ScenarioRequest{
				HousingType:      models.HousingNone,
				InState:          true,
				UtilitiesMonthly: floatPtr(133.33),
				FoodMonthly:      floatPtr(412.117),
				BooksAnnual:      floatPtr(1033.005),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := model.Compute(testInstitution(), tt.req, tt.rate)
			b := result.Breakdown
			sum := b.TuitionFees + b.HousingAnnual + b.OtherAnnual
			if b.TrueYearlyCost != sum {
				t.Errorf("additivity violated: total %v, component sum %v", b.TrueYearlyCost, sum)
			}
		})
	}
}

func TestCostModel_RentOverrideIsNotSplit(t *testing.T) {
	model := NewCostModel(testAssumptions(), zap.NewNop())
	req := &models.ScenarioRequest{
		HousingType: models.HousingTwoBR,
		InState:     true,
		Roommates:   3,
		RentMonthly: floatPtr(1200),
	}

	result := model.Compute(testInstitution(), req, nil)

	// The override is the household's actual payment.
	assert.Equal(t, 14400.0, result.Breakdown.HousingAnnual)
}

func TestCostModel_ResolvedRentSplitsAcrossRoommates(t *testing.T) {
	model := NewCostModel(testAssumptions(), zap.NewNop())
	req := &models.ScenarioRequest{
		HousingType: models.HousingTwoBR,
		InState:     true,
		Roommates:   1,
	}
	rate := &models.HousingRate{
		LocationKey:  "94704",
		LocationKind: models.LocationKindZIP,
		HousingType:  models.HousingTwoBR,
		MonthlyRent:  2400,
	}

	result := model.Compute(testInstitution(), req, rate)

	// 2400 / 2 roommates-sharing = 1200/mo
	assert.Equal(t, 14400.0, result.Breakdown.HousingAnnual)
	assert.Empty(t, result.Warnings)
}

func TestCostModel_StateFallbackRentWarning(t *testing.T) {
	model := NewCostModel(testAssumptions(), zap.NewNop())
	locationKey := "94704"
	req := &models.ScenarioRequest{
		HousingType: models.HousingOneBR,
		InState:     true,
		LocationKey: &locationKey,
	}
	rate := &models.HousingRate{
		LocationKey:  "CA",
		LocationKind: models.LocationKindState,
		HousingType:  models.HousingOneBR,
		MonthlyRent:  1880,
	}

	result := model.Compute(testInstitution(), req, rate)

	assert.Equal(t, 22560.0, result.Breakdown.HousingAnnual)
	assert.Contains(t, result.Warnings, fmt.Sprintf("No rent data for %q; using the CA state-level rate", locationKey))
}

func TestCostModel_DefaultRentWhenUnresolved(t *testing.T) {
	model := NewCostModel(testAssumptions(), zap.NewNop())
	req := &models.ScenarioRequest{
		HousingType: models.HousingTwoBR,
		InState:     true,
		Roommates:   1,
	}

	result := model.Compute(testInstitution(), req, nil)

	// Default 2BR is $1300/mo, split two ways.
	assert.Equal(t, 7800.0, result.Breakdown.HousingAnnual)
	assert.Contains(t, result.Warnings, "No rent data for this location; using the default of $1300/mo for a 2BR")
}

func TestCostModel_TuitionDefaults(t *testing.T) {
	model := NewCostModel(testAssumptions(), zap.NewNop())
	inst := testInstitution()
	inst.TuitionInState = nil
	inst.TuitionOutState = nil

	inReq := &models.ScenarioRequest{HousingType: models.HousingNone, InState: true}
	inResult := model.Compute(inst, inReq, nil)
	assert.Equal(t, 10000.0, inResult.Breakdown.TuitionFees)
	assert.Contains(t, inResult.Warnings, "In-state tuition unavailable for this institution; using the published default of $10000/yr")

	outReq := &models.ScenarioRequest{HousingType: models.HousingNone, InState: false}
	outResult := model.Compute(inst, outReq, nil)
	assert.Equal(t, 30000.0, outResult.Breakdown.TuitionFees)
	assert.Contains(t, outResult.Warnings, "Out-of-state tuition unavailable for this institution; using the published default of $30000/yr")
}

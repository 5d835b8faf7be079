package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/config"
	"github.com/collegeroi/roi-engine/pkg/models"
)

var twelve = decimal.NewFromInt(12)

// CostModel computes the annual cost of attendance: tuition and fees by
// residency, housing by type/location/roommates, and the recurring expense
// categories. Fields the request leaves nil fall back to the published
// defaults in Assumptions, each substitution recorded as a warning. Inputs
// reach this model already validated; negative figures never get here.
type CostModel struct {
	assumptions config.Assumptions
	logger      *zap.Logger
}

// NewCostModel creates a cost model bound to one immutable assumption set.
func NewCostModel(assumptions config.Assumptions, logger *zap.Logger) *CostModel {
	return &CostModel{
		assumptions: assumptions,
		logger:      logger.Named("cost-model"),
	}
}

// CostResult is the itemized year of attendance. Breakdown carries the
// reported components, each rounded to cents, with TrueYearlyCost their exact
// sum. Annual is the same total kept in decimal for the debt model.
type CostResult struct {
	Breakdown models.CostBreakdown
	Annual    decimal.Decimal
	Warnings  []string
}

// Compute derives the cost breakdown for one scenario. rate is the resolved
// housing row, nil when the rent tables had nothing for the location (or when
// housing is "none" or overridden and no lookup ran).
func (m *CostModel) Compute(inst *models.Institution, req *models.ScenarioRequest, rate *models.HousingRate) *CostResult {
	var warnings []string

	tuition, tuitionWarnings := m.tuitionFees(inst, req.InState)
	warnings = append(warnings, tuitionWarnings...)

	housing, housingWarnings := m.housingAnnual(req, inst, rate)
	warnings = append(warnings, housingWarnings...)

	other, otherWarnings := m.otherAnnual(req)
	warnings = append(warnings, otherWarnings...)

	tf := tuition.Round(2)
	hf := housing.Round(2)
	of := other.Round(2)

	breakdown := models.CostBreakdown{
		TuitionFees:   tf.InexactFloat64(),
		HousingAnnual: hf.InexactFloat64(),
		OtherAnnual:   of.InexactFloat64(),
	}
	// The reported total is the sum of the reported components, so the
	// additivity invariant holds bit-for-bit in the response.
	breakdown.TrueYearlyCost = breakdown.TuitionFees + breakdown.HousingAnnual + breakdown.OtherAnnual

	return &CostResult{
		Breakdown: breakdown,
		Annual:    tf.Add(hf).Add(of),
		Warnings:  warnings,
	}
}

func (m *CostModel) tuitionFees(inst *models.Institution, inState bool) (decimal.Decimal, []string) {
	if t := inst.Tuition(inState); t != nil {
		return decimal.NewFromFloat(*t), nil
	}

	def := m.assumptions.TuitionOutState
	label := "Out-of-state"
	if inState {
		def = m.assumptions.TuitionInState
		label = "In-state"
	}
	m.logger.Debug("tuition figure missing, using default",
		zap.Int("unit_id", inst.UnitID),
		zap.Bool("in_state", inState))
	warning := fmt.Sprintf("%s tuition unavailable for this institution; using the published default of $%.0f/yr", label, def)
	return decimal.NewFromFloat(def), []string{warning}
}

func (m *CostModel) housingAnnual(req *models.ScenarioRequest, inst *models.Institution, rate *models.HousingRate) (decimal.Decimal, []string) {
	if req.HousingType == models.HousingNone {
		return decimal.Zero, nil
	}

	// An explicit rent override states what the household will actually pay,
	// so the roommate split applies only to resolved and default base rents.
	if req.RentMonthly != nil {
		return decimal.NewFromFloat(*req.RentMonthly).Mul(twelve), nil
	}

	var base decimal.Decimal
	var warnings []string
	if rate != nil {
		base = decimal.NewFromFloat(rate.MonthlyRent)
		if rate.LocationKind == models.LocationKindState && req.LocationKey != nil {
			warnings = append(warnings, fmt.Sprintf("No rent data for %q; using the %s state-level rate", *req.LocationKey, inst.State))
		}
	} else {
		def, ok := m.assumptions.Housing.Monthly(req.HousingType)
		if !ok {
			// Unknown types are rejected at the boundary; nothing to price.
			return decimal.Zero, nil
		}
		base = decimal.NewFromFloat(def)
		warnings = append(warnings, fmt.Sprintf("No rent data for this location; using the default of $%.0f/mo for a %s", def, req.HousingType))
	}

	share := decimal.NewFromInt(int64(max(1, req.Roommates+1)))
	return base.Div(share).Mul(twelve), warnings
}

func (m *CostModel) otherAnnual(req *models.ScenarioRequest) (decimal.Decimal, []string) {
	categories := []struct {
		name     string
		override *float64
		def      float64
		monthly  bool
	}{
		{"utilities", req.UtilitiesMonthly, m.assumptions.UtilitiesMonthly, true},
		{"food", req.FoodMonthly, m.assumptions.FoodMonthly, true},
		{"transport", req.TransportMonthly, m.assumptions.TransportMonthly, true},
		{"misc", req.MiscMonthly, m.assumptions.MiscMonthly, true},
		{"books", req.BooksAnnual, m.assumptions.BooksAnnual, false},
	}

	total := decimal.Zero
	var warnings []string
	for _, cat := range categories {
		value := cat.def
		if cat.override != nil {
			value = *cat.override
		} else {
			unit := "yr"
			if cat.monthly {
				unit = "mo"
			}
			warnings = append(warnings, fmt.Sprintf("Using the default %s budget of $%.0f/%s", cat.name, cat.def, unit))
		}

		amount := decimal.NewFromFloat(value)
		if cat.monthly {
			amount = amount.Mul(twelve)
		}
		total = total.Add(amount)
	}

	return total, warnings
}

package services

import (
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/config"
	"github.com/collegeroi/roi-engine/pkg/models"
)

// KPIAggregator composes the model outputs into the final ScenarioResult:
// ROI, first-year DTI, graduation rate, the comfort index, the inflated
// total program cost, and the merged warning list. It never aborts on a
// missing input; every KPI degrades to null on its own.
type KPIAggregator struct {
	assumptions config.Assumptions
	logger      *zap.Logger
}

// NewKPIAggregator creates an aggregator bound to one immutable assumption
// set.
func NewKPIAggregator(assumptions config.Assumptions, logger *zap.Logger) *KPIAggregator {
	return &KPIAggregator{
		assumptions: assumptions,
		logger:      logger.Named("kpi-aggregator"),
	}
}

// KPIInputs is the join point of the pipeline: everything the aggregator
// needs to assemble one result. Warnings carries orchestrator-level notes
// (inflation fallback, version stamp failures) into the merged list.
type KPIInputs struct {
	Institution  *models.Institution
	Program      *models.Program
	Request      *models.ScenarioRequest
	ProgramYears int

	Cost     *CostResult
	Debt     *DebtResult
	Earnings *EarningsResult

	InflationRate float64
	Versions      map[string]string
	Warnings      []string
}

// Assemble builds the ScenarioResult.
func (a *KPIAggregator) Assemble(in KPIInputs) *models.ScenarioResult {
	result := &models.ScenarioResult{
		Label:           in.Request.Label,
		InstitutionName: in.Institution.Name,
		ProgramName:     in.Program.Name,
		CredentialLevel: in.Request.CredentialLevel,
		ProgramYears:    in.ProgramYears,

		Cost:             in.Cost.Breakdown,
		TotalProgramCost: a.totalProgramCost(in.Cost.Annual, in.ProgramYears, in.InflationRate),

		NetBorrowingPerYear: in.Debt.NetBorrowingPerYear,
		ExpectedDebtAtGrad:  in.Debt.DebtAtGrad,
		MonthlyPayment:      in.Debt.MonthlyPayment,
		PaybackYears:        in.Debt.PaybackYears,

		Earnings1yr:    in.Earnings.Year1,
		Earnings3yr:    in.Earnings.Year3,
		Earnings5yr:    in.Earnings.Year5,
		EarningsSource: in.Earnings.Source,

		DatasetVersions: in.Versions,
	}
	if result.DatasetVersions == nil {
		result.DatasetVersions = map[string]string{}
	}

	var kpiWarnings []string

	roi, w := a.roi(in)
	result.ROI = roi
	kpiWarnings = append(kpiWarnings, w...)

	dti, w := a.dtiYear1(in.Debt.DebtAtGrad, in.Earnings.Year1)
	result.DTIYear1 = dti
	kpiWarnings = append(kpiWarnings, w...)

	result.GraduationRate = in.Institution.GraduationRate
	if result.GraduationRate == nil {
		kpiWarnings = append(kpiWarnings, "Graduation rate unavailable for this institution")
	}

	comfort, w := a.comfortIndex(in, dti)
	result.ComfortIndex = comfort
	kpiWarnings = append(kpiWarnings, w...)

	merged := make([]string, 0, len(in.Cost.Warnings)+len(in.Debt.Warnings)+len(in.Earnings.Warnings)+len(in.Warnings)+len(kpiWarnings))
	merged = append(merged, in.Cost.Warnings...)
	merged = append(merged, in.Debt.Warnings...)
	merged = append(merged, in.Earnings.Warnings...)
	merged = append(merged, in.Warnings...)
	merged = append(merged, kpiWarnings...)
	result.Warnings = dedupeWarnings(merged)

	return result
}

// totalProgramCost inflates the constant annual cost across the enrollment
// years: year y costs annual*(1+g)^(y-1). Display-level only; the debt model
// borrows against the constant annual figure.
func (a *KPIAggregator) totalProgramCost(annual decimal.Decimal, years int, inflationRate float64) float64 {
	growth := one.Add(decimal.NewFromFloat(inflationRate))
	total := decimal.Zero
	for y := 1; y <= years; y++ {
		total = total.Add(annual.Mul(growth.Pow(decimal.NewFromInt(int64(y - 1)))))
	}
	return total.Round(2).InexactFloat64()
}

// roi is (cumulative earnings - baseline earnings over the same horizon)
// over (total direct cost + opportunity cost). The cumulative sum is the
// trapezoidal integral of the line through the 1/3/5-year points:
// 1.5*e1 + 2*e3 + 1.5*e5.
func (a *KPIAggregator) roi(in KPIInputs) (*float64, []string) {
	e := in.Earnings
	if e.Year1 == nil || e.Year3 == nil || e.Year5 == nil {
		return nil, []string{"ROI unavailable: one or more earnings points are missing"}
	}

	baseline := a.assumptions.BaselineEarningsAnnual
	horizon := float64(a.assumptions.EarningsHorizonYears)
	cumulative := 1.5*(*e.Year1) + 2*(*e.Year3) + 1.5*(*e.Year5)

	directCost := in.Cost.Breakdown.TrueYearlyCost * float64(in.ProgramYears)
	opportunityCost := baseline * float64(in.ProgramYears)
	denominator := directCost + opportunityCost
	if denominator <= 0 {
		return nil, []string{"ROI unavailable: total investment is zero"}
	}

	return floatPtr(roundTo((cumulative-baseline*horizon)/denominator, 4)), nil
}

func (a *KPIAggregator) dtiYear1(debtAtGrad float64, earnings1 *float64) (*float64, []string) {
	if earnings1 == nil || *earnings1 == 0 {
		return nil, []string{"Debt-to-income unavailable: first-year earnings missing or zero"}
	}
	return floatPtr(roundTo(debtAtGrad / *earnings1, 4)), nil
}

// comfortIndex is the published [0,100] composite: 40% inverse DTI, 30%
// earnings headroom over the regional living cost, 30% debt-service burden
// saturating at 20% of take-home pay. Monotone in the obvious directions:
// higher earnings raise it, more debt lowers it.
func (a *KPIAggregator) comfortIndex(in KPIInputs, dti *float64) (*float64, []string) {
	if in.Earnings.Year1 == nil || dti == nil {
		return nil, []string{"Comfort index unavailable: first-year earnings missing"}
	}

	taxRate := a.assumptions.TaxRate
	if in.Request.TaxRate != nil {
		taxRate = *in.Request.TaxRate
	}
	takeHome := *in.Earnings.Year1 * (1 - taxRate)
	if takeHome <= 0 {
		return nil, []string{"Comfort index unavailable: take-home pay is zero"}
	}

	livingCost := a.assumptions.BaselineLivingCostAnnual * in.Earnings.DestinationParity
	if livingCost <= 0 {
		return nil, []string{"Comfort index unavailable: living-cost baseline is not positive"}
	}

	annualDebtService := 0.0
	if in.Debt.MonthlyPayment != nil {
		annualDebtService = *in.Debt.MonthlyPayment * 12
	}

	weights := a.assumptions.Comfort
	sDTI := 100 * clamp01(1-*dti)
	sHeadroom := 100 * clamp01((takeHome-livingCost)/livingCost)
	sBurden := 100 * clamp01(1-annualDebtService/(weights.BurdenSaturation*takeHome))

	comfort := weights.DTI*sDTI + weights.Headroom*sHeadroom + weights.Burden*sBurden
	comfort = math.Min(100, math.Max(0, comfort))
	return floatPtr(roundTo(comfort, 1)), nil
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// dedupeWarnings drops repeated messages, keeping first-occurrence order.
func dedupeWarnings(warnings []string) []string {
	seen := make(map[string]struct{}, len(warnings))
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

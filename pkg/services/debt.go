package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/config"
	"github.com/collegeroi/roi-engine/pkg/models"
)

var one = decimal.NewFromInt(1)

func floatPtr(v float64) *float64 { return &v }

// DebtModel projects debt at graduation and the amortized payback period.
// Each enrollment year's net borrowing accrues annually-compounded interest
// from the year it is taken until graduation; repayment follows the standard
// fixed-rate schedule over the configured statutory term.
type DebtModel struct {
	assumptions config.Assumptions
	logger      *zap.Logger
}

// NewDebtModel creates a debt model bound to one immutable assumption set.
func NewDebtModel(assumptions config.Assumptions, logger *zap.Logger) *DebtModel {
	return &DebtModel{
		assumptions: assumptions,
		logger:      logger.Named("debt-model"),
	}
}

// DebtResult is the projected borrowing picture. PaybackYears is nil when
// there is no loan, or when the schedule cannot amortize. Figures are rounded
// to cents.
type DebtResult struct {
	NetBorrowingPerYear float64
	DebtAtGrad          float64
	MonthlyPayment      *float64
	PaybackYears        *float64
	Warnings            []string
}

// Compute projects the debt picture for one scenario. annualCost is the cost
// model's decimal total; programYears comes from the credential level.
func (m *DebtModel) Compute(annualCost decimal.Decimal, req *models.ScenarioRequest, programYears int) *DebtResult {
	var warnings []string

	apr := m.assumptions.LoanAPR
	if req.LoanAPR != nil {
		apr = *req.LoanAPR
	}
	if apr < 0 || apr > 1 {
		// The boundary rejects these; guard anyway so a misuse of the model
		// cannot produce a nonsense schedule.
		warnings = append(warnings, fmt.Sprintf("Loan APR %.2f is outside [0,1]; using the default %.2f", apr, m.assumptions.LoanAPR))
		apr = m.assumptions.LoanAPR
	}

	aid := decimal.Zero
	if req.AidAnnual != nil {
		aid = decimal.NewFromFloat(*req.AidAnnual)
	}
	cash := decimal.Zero
	if req.CashAnnual != nil {
		cash = decimal.NewFromFloat(*req.CashAnnual)
	}

	borrowing := annualCost.Sub(aid).Sub(cash)
	if !borrowing.IsPositive() {
		if annualCost.IsPositive() {
			warnings = append(warnings, "Aid and cash cover the full cost of attendance; no borrowing needed")
		}
		borrowing = decimal.Zero
	}

	// Year y of D is borrowed at the start of year y and accrues through
	// graduation at the end of year D, i.e. for D-y+1 years. The exponents
	// run D, D-1, ..., 1.
	growth := one.Add(decimal.NewFromFloat(apr))
	debt := decimal.Zero
	for y := 1; y <= programYears; y++ {
		accruing := int64(programYears - y + 1)
		debt = debt.Add(borrowing.Mul(growth.Pow(decimal.NewFromInt(accruing))))
	}
	debt = debt.Round(2)

	result := &DebtResult{
		NetBorrowingPerYear: borrowing.Round(2).InexactFloat64(),
		DebtAtGrad:          debt.InexactFloat64(),
		Warnings:            warnings,
	}

	if debt.IsZero() {
		// No loan, no payback period.
		return result
	}

	termMonths := int64(m.assumptions.LoanTermMonths)
	termYears := float64(termMonths) / 12

	if apr == 0 {
		// Straight-line: equal payments retire the balance over the term.
		payment := debt.Div(decimal.NewFromInt(termMonths)).Round(2)
		result.MonthlyPayment = floatPtr(payment.InexactFloat64())
		result.PaybackYears = floatPtr(termYears)
		return result
	}

	// M = P*r*(1+r)^n / ((1+r)^n - 1), the fixed-rate amortization payment.
	r := decimal.NewFromFloat(apr).Div(twelve)
	compounded := one.Add(r).Pow(decimal.NewFromInt(termMonths))
	payment := debt.Mul(r).Mul(compounded).Div(compounded.Sub(one))

	if !payment.GreaterThan(debt.Mul(r)) {
		m.logger.Warn("amortization does not terminate",
			zap.Float64("debt", result.DebtAtGrad),
			zap.Float64("apr", apr))
		result.MonthlyPayment = floatPtr(payment.Round(2).InexactFloat64())
		result.Warnings = append(result.Warnings, "Payment at the standard term does not cover accruing interest; payback period is undefined")
		return result
	}

	result.MonthlyPayment = floatPtr(payment.Round(2).InexactFloat64())
	result.PaybackYears = floatPtr(termYears)
	return result
}

// Package models contains domain types for roi-engine.
package models

// Control type codes as published in the institutional dataset.
const (
	ControlPublic           = 1
	ControlPrivateNonprofit = 2
	ControlPrivateForProfit = 3
)

// Institution is an immutable reference record for one campus, keyed by its
// federal unit ID. Loaded at store build time by the ETL collaborator; the
// engine never mutates it.
type Institution struct {
	UnitID              int      `json:"unit_id"`
	Name                string   `json:"name"`
	State               string   `json:"state"`
	City                string   `json:"city,omitempty"`
	ControlType         int      `json:"control_type"`
	TuitionInState      *float64 `json:"tuition_in_state,omitempty"`
	TuitionOutState     *float64 `json:"tuition_out_state,omitempty"`
	GraduationRate      *float64 `json:"graduation_rate,omitempty"` // 0..1 completion rate
	AvgNetPrice         *float64 `json:"avg_net_price,omitempty"`
	PctPell             *float64 `json:"pct_pell,omitempty"`
	UndergradEnrollment *int     `json:"undergrad_enrollment,omitempty"`
	AvgEarnings         *float64 `json:"avg_earnings,omitempty"` // institution-aggregate median earnings
}

// ControlTypeName returns the display name for a control type code.
func ControlTypeName(code int) string {
	switch code {
	case ControlPublic:
		return "Public"
	case ControlPrivateNonprofit:
		return "Private nonprofit"
	case ControlPrivateForProfit:
		return "Private for-profit"
	default:
		return "Unknown"
	}
}

// Tuition returns the tuition figure for the given residency, which may be
// nil when the dataset has no figure for this institution.
func (i *Institution) Tuition(inState bool) *float64 {
	if inState {
		return i.TuitionInState
	}
	return i.TuitionOutState
}

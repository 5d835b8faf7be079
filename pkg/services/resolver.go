package services

import (
	"fmt"

	"github.com/collegeroi/roi-engine/pkg/models"
)

// EarningsTier is one rung of the earnings fallback chain: a source tier plus
// whatever figures that tier carries. A tier with a single median figure
// (institution aggregate, system default) populates Year1 only.
type EarningsTier struct {
	Tier  models.SourceTier
	Year1 *float64
	Year3 *float64
	Year5 *float64
}

// EarningsResolution is the outcome of a fallback walk: the figures from the
// satisfied tier, the tier itself, and the warnings the walk produced. Points
// missing within the satisfied tier stay nil; lower tiers never backfill
// individual points, so provenance is a single tier, not a mixture.
type EarningsResolution struct {
	Year1    *float64
	Year3    *float64
	Year5    *float64
	Source   models.SourceTier
	Warnings []string
}

// ResolveEarnings walks tiers most-specific-first and stops at the first one
// carrying any figure. A warning is emitted when the satisfied tier is less
// specific than the first, and for each horizon the satisfied tier leaves
// unset. When no tier has data the resolution is Unavailable: tier "none",
// all points nil, one warning. Downstream KPIs degrade to null from there;
// nothing fails.
func ResolveEarnings(tiers []EarningsTier) EarningsResolution {
	for i, tier := range tiers {
		if tier.Year1 == nil && tier.Year3 == nil && tier.Year5 == nil {
			continue
		}

		res := EarningsResolution{
			Year1:  tier.Year1,
			Year3:  tier.Year3,
			Year5:  tier.Year5,
			Source: tier.Tier,
		}
		if i > 0 {
			res.Warnings = append(res.Warnings, degradedWarning(tier.Tier))
		}
		// Single-figure tiers get their 3/5-year points projected later; only
		// flag per-horizon suppression at the program tier, where the gaps are
		// real suppressions rather than a coarser source's shape.
		if tier.Tier == models.SourceTierProgram {
			for _, gap := range []struct {
				years int
				value *float64
			}{{1, tier.Year1}, {3, tier.Year3}, {5, tier.Year5}} {
				if gap.value == nil {
					res.Warnings = append(res.Warnings,
						fmt.Sprintf("%d-year earnings are suppressed for this program", gap.years))
				}
			}
		}
		return res
	}

	return EarningsResolution{
		Source:   models.SourceTierNone,
		Warnings: []string{"Earnings are unavailable at the program, institution, and national levels"},
	}
}

func degradedWarning(satisfied models.SourceTier) string {
	switch satisfied {
	case models.SourceTierInstitution:
		return "Program-level earnings unavailable; using the institution-wide average"
	case models.SourceTierNational:
		return "Program-level earnings unavailable; using the national average for this field of study"
	case models.SourceTierDefault:
		return "No earnings data found; using the published default earnings assumption"
	default:
		return fmt.Sprintf("Earnings resolved from the %s tier", satisfied)
	}
}

// earningsTiers assembles the ordered chain for one scenario from the records
// the accessor returned. Nil records contribute empty tiers, which the walk
// skips. The default tier is disabled when the configured figure is zero.
func earningsTiers(program *models.Program, inst *models.Institution, national *models.NationalProgramStat, defaultAnnual float64) []EarningsTier {
	tiers := make([]EarningsTier, 0, 4)

	if program != nil {
		tiers = append(tiers, EarningsTier{
			Tier:  models.SourceTierProgram,
			Year1: program.Earnings1yr,
			Year3: program.Earnings3yr,
			Year5: program.Earnings5yr,
		})
	}
	if inst != nil {
		tiers = append(tiers, EarningsTier{
			Tier:  models.SourceTierInstitution,
			Year1: inst.AvgEarnings,
		})
	}
	if national != nil {
		tiers = append(tiers, EarningsTier{
			Tier:  models.SourceTierNational,
			Year1: national.Earnings1yr,
			Year3: national.Earnings3yr,
			Year5: national.Earnings5yr,
		})
	}
	if defaultAnnual > 0 {
		tiers = append(tiers, EarningsTier{
			Tier:  models.SourceTierDefault,
			Year1: &defaultAnnual,
		})
	}

	return tiers
}

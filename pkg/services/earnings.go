package services

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/collegeroi/roi-engine/pkg/config"
	"github.com/collegeroi/roi-engine/pkg/models"
)

// EarningsModel turns a fallback resolution into the reported 1/3/5-year
// earnings: single-figure tiers get their later points projected at the
// assumed growth rate, and a chosen post-graduation region rescales every
// point by destinationParity/originParity. Each point stays independently
// nullable throughout.
type EarningsModel struct {
	assumptions config.Assumptions
	logger      *zap.Logger
}

// NewEarningsModel creates an earnings model bound to one immutable
// assumption set.
func NewEarningsModel(assumptions config.Assumptions, logger *zap.Logger) *EarningsModel {
	return &EarningsModel{
		assumptions: assumptions,
		logger:      logger.Named("earnings-model"),
	}
}

// EarningsResult is the reported earnings picture. DestinationParity feeds
// the comfort model's living-cost baseline; it is 1.0 when no region was
// chosen or its parity is unknown.
type EarningsResult struct {
	Year1             *float64
	Year3             *float64
	Year5             *float64
	Source            models.SourceTier
	Adjusted          bool
	DestinationParity float64
	Warnings          []string
}

// Adjust applies projection and regional normalization to a resolution.
// dest is the requested post-graduation region (nil when none was chosen);
// origin is the region row for the institution's home state (nil when the
// store has no such row).
func (m *EarningsModel) Adjust(res EarningsResolution, dest, origin *models.Region) *EarningsResult {
	result := &EarningsResult{
		Year1:             res.Year1,
		Year3:             res.Year3,
		Year5:             res.Year5,
		Source:            res.Source,
		DestinationParity: 1.0,
		Warnings:          append([]string(nil), res.Warnings...),
	}

	// A tier that supplied only a median figure gets its 3/5-year points
	// projected; real per-horizon suppression at the program tier stays null.
	if res.Source != models.SourceTierProgram && res.Source != models.SourceTierNone &&
		res.Year1 != nil && res.Year3 == nil && res.Year5 == nil {
		growth := 1 + m.assumptions.EarningsGrowthRate
		result.Year3 = floatPtr(roundTo(*res.Year1*math.Pow(growth, 2), 2))
		result.Year5 = floatPtr(roundTo(*res.Year1*math.Pow(growth, 4), 2))
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("3- and 5-year earnings projected from a single median at %.0f%%/yr assumed growth", m.assumptions.EarningsGrowthRate*100))
	}

	if dest == nil {
		return result
	}
	if dest.PriceParity != nil {
		result.DestinationParity = *dest.PriceParity
	}

	if dest.PriceParity == nil || origin == nil || origin.PriceParity == nil || *origin.PriceParity <= 0 {
		result.Warnings = append(result.Warnings, "Regional price parity unavailable; earnings shown unadjusted")
		return result
	}

	// The ratio reads "what this salary is worth relative to where you
	// studied", not an absolute rescale to national dollars.
	factor := *dest.PriceParity / *origin.PriceParity
	for _, point := range []**float64{&result.Year1, &result.Year3, &result.Year5} {
		if *point != nil {
			*point = floatPtr(roundTo(**point*factor, 2))
		}
	}
	result.Adjusted = true
	m.logger.Debug("applied regional earnings adjustment",
		zap.String("destination", dest.Code),
		zap.String("origin", origin.Code),
		zap.Float64("factor", factor))
	return result
}

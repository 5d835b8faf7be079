package models

// SourceTier records which tier of the fallback chain satisfied a resolved
// field. Tier provenance is a first-class value carried into results, not
// inferred from which code path executed.
type SourceTier string

// Fallback tiers, most to least specific. SourceTierNone marks a field that
// stayed unresolved after the whole chain (Unavailable).
const (
	SourceTierProgram     SourceTier = "program"
	SourceTierInstitution SourceTier = "institution"
	SourceTierNational    SourceTier = "national"
	SourceTierDefault     SourceTier = "default"
	SourceTierNone        SourceTier = "none"
)

// String returns the string representation of a SourceTier.
func (t SourceTier) String() string {
	return string(t)
}

// IsValid returns true if the tier is one of the defined chain tiers.
func (t SourceTier) IsValid() bool {
	switch t {
	case SourceTierProgram, SourceTierInstitution, SourceTierNational, SourceTierDefault, SourceTierNone:
		return true
	default:
		return false
	}
}

// tierRank orders tiers by specificity; lower is more specific.
var tierRank = map[SourceTier]int{
	SourceTierProgram:     0,
	SourceTierInstitution: 1,
	SourceTierNational:    2,
	SourceTierDefault:     3,
	SourceTierNone:        4,
}

// LessSpecificThan reports whether t resolved at a coarser tier than other.
func (t SourceTier) LessSpecificThan(other SourceTier) bool {
	return tierRank[t] > tierRank[other]
}

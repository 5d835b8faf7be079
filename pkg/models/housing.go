package models

// Housing type values accepted in scenario requests. "none" means no housing
// cost is modeled (living at home); the unit sizes map onto the bedroom
// buckets of the published fair-market-rent tables.
const (
	HousingNone    = "none"
	HousingStudio  = "studio"
	HousingOneBR   = "1BR"
	HousingTwoBR   = "2BR"
	HousingThreeBR = "3BR"
	HousingFourBR  = "4BR"
)

// ValidHousingType reports whether t is one of the accepted housing types.
func ValidHousingType(t string) bool {
	switch t {
	case HousingNone, HousingStudio, HousingOneBR, HousingTwoBR, HousingThreeBR, HousingFourBR:
		return true
	default:
		return false
	}
}

// Location kinds for housing rate rows, most to least specific.
const (
	LocationKindZIP   = "zip"
	LocationKindMetro = "metro"
	LocationKindState = "state"
)

// HousingRate is one row of the rent reference table: the monthly
// fair-market rent for a unit size at a location, stamped with the dataset
// version that supplied it.
type HousingRate struct {
	LocationKey    string  `json:"location_key"`
	LocationKind   string  `json:"location_kind"`
	HousingType    string  `json:"housing_type"`
	MonthlyRent    float64 `json:"monthly_rent"`
	DatasetVersion string  `json:"dataset_version"`
}

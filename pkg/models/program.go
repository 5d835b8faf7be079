package models

import "strings"

// Program is a field of study offered at an institution at a specific
// credential level, keyed by (unit ID, CIP code, credential level). Earnings
// and debt figures are nil when the source dataset suppressed them for
// privacy; suppression of one figure is independent of the others.
type Program struct {
	UnitID          int      `json:"unit_id"`
	CIPCode         string   `json:"cip_code"`
	Name            string   `json:"name"`
	CredentialLevel int      `json:"credential_level"`
	Earnings1yr     *float64 `json:"earnings_1yr,omitempty"`
	Earnings3yr     *float64 `json:"earnings_3yr,omitempty"`
	Earnings5yr     *float64 `json:"earnings_5yr,omitempty"`
	MedianDebt      *float64 `json:"median_debt,omitempty"`
	Completions     *int     `json:"completions,omitempty"`
}

// NationalProgramStat aggregates program outcomes across all institutions for
// one (CIP code, credential level) pair. Third tier of the earnings fallback
// chain.
type NationalProgramStat struct {
	CIPCode         string   `json:"cip_code"`
	CredentialLevel int      `json:"credential_level"`
	Earnings1yr     *float64 `json:"earnings_1yr,omitempty"`
	Earnings3yr     *float64 `json:"earnings_3yr,omitempty"`
	Earnings5yr     *float64 `json:"earnings_5yr,omitempty"`
	MedianDebt      *float64 `json:"median_debt,omitempty"`
}

// cipFamilies maps the leading two digits of a CIP code to the published
// program family name.
var cipFamilies = map[string]string{
	"01": "Agriculture",
	"03": "Natural Resources",
	"04": "Architecture",
	"05": "Area/Ethnic Studies",
	"09": "Communication",
	"10": "Communications Technologies",
	"11": "Computer Science",
	"12": "Personal Services",
	"13": "Education",
	"14": "Engineering",
	"15": "Engineering Technologies",
	"16": "Foreign Languages",
	"19": "Family/Consumer Sciences",
	"22": "Legal Professions",
	"23": "English Language",
	"24": "Liberal Arts",
	"25": "Library Science",
	"26": "Biological Sciences",
	"27": "Mathematics",
	"29": "Military Technologies",
	"30": "Multi/Interdisciplinary",
	"31": "Parks/Recreation",
	"38": "Philosophy/Religious",
	"39": "Theology",
	"40": "Physical Sciences",
	"41": "Science Technologies",
	"42": "Psychology",
	"43": "Homeland Security",
	"44": "Public Administration",
	"45": "Social Sciences",
	"46": "Construction Trades",
	"47": "Mechanic/Repair",
	"48": "Precision Production",
	"49": "Transportation",
	"50": "Visual/Performing Arts",
	"51": "Health Professions",
	"52": "Business/Management",
	"54": "History",
}

// CIPFamily returns the program family name for a CIP code ("11.07" ->
// "Computer Science"). Unknown prefixes return "Other".
func CIPFamily(cipCode string) string {
	prefix, _, _ := strings.Cut(cipCode, ".")
	if len(prefix) == 1 {
		prefix = "0" + prefix
	}
	if name, ok := cipFamilies[prefix]; ok {
		return name
	}
	return "Other"
}

package models

import "time"

// Source dataset names as stamped by the ETL pipeline.
const (
	DatasetScorecard   = "college_scorecard"
	DatasetHUDRents    = "hud_safmrs"
	DatasetCPI         = "bls_cpi"
	DatasetPriceParity = "acs_pums"
)

// DatasetVersion records one retrieved vintage of a source dataset.
type DatasetVersion struct {
	Name        string    `json:"name"`
	VersionTag  string    `json:"version_tag"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

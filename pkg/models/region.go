package models

// Region is a geographic price/earnings adjustment unit: a state (postal
// code) or a metro key. PriceParity is the regional price parity index where
// 1.0 is the national average; MedianEarnings is an informational regional
// earnings figure. Either may be nil when the source dataset lacks coverage.
type Region struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	PriceParity    *float64 `json:"price_parity,omitempty"`
	MedianEarnings *float64 `json:"median_earnings,omitempty"`
}

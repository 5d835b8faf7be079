package models

import "testing"

func TestCIPFamily(t *testing.T) {
	tests := []struct {
		cipCode string
		want    string
	}{
		{"11.07", "Computer Science"},
		{"52.02", "Business/Management"},
		{"51.38", "Health Professions"},
		{"14.01", "Engineering"},
		{"1.09", "Agriculture"}, // single-digit prefix normalized
		{"99.99", "Other"},
		{"", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.cipCode, func(t *testing.T) {
			if got := CIPFamily(tt.cipCode); got != tt.want {
				t.Errorf("CIPFamily(%q) = %q, want %q", tt.cipCode, got, tt.want)
			}
		})
	}
}

func TestControlTypeName(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{ControlPublic, "Public"},
		{ControlPrivateNonprofit, "Private nonprofit"},
		{ControlPrivateForProfit, "Private for-profit"},
		{0, "Unknown"},
	}

	for _, tt := range tests {
		if got := ControlTypeName(tt.code); got != tt.want {
			t.Errorf("ControlTypeName(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

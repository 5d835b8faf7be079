// Package jsonutil holds JSON decoding helpers for the request boundary.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleFloat decodes an optional numeric field from a JSON number or a
// numeric string. Spreadsheet exports and some HTTP clients quote their
// numbers; both forms mean the same scenario. Absent fields, null, and the
// empty string all decode to "unset".
type FlexibleFloat struct {
	value *float64
}

// Float wraps a concrete value, mostly for tests and fixtures.
func Float(v float64) FlexibleFloat {
	return FlexibleFloat{value: &v}
}

// Ptr returns the decoded value, or nil when the field was absent, null, or
// empty.
func (f FlexibleFloat) Ptr() *float64 {
	return f.value
}

func (f *FlexibleFloat) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		f.value = nil
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("invalid numeric value %s: %w", trimmed, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			f.value = nil
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric value %q", s)
		}
		f.value = &v
		return nil
	}

	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return fmt.Errorf("invalid numeric value %s", trimmed)
	}
	f.value = &v
	return nil
}

func (f FlexibleFloat) MarshalJSON() ([]byte, error) {
	if f.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.value)
}

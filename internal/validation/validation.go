package validation

import "strings"

// Violations maps field name to a short machine-readable reason.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Required flags blank (or whitespace-only) string fields.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// MinInt flags integer fields below a floor.
func MinInt(field string, val, floor int, v Violations) {
	if val < floor {
		v[field] = "too_small"
	}
}

// NonNegativeFloat flags negative numeric fields.
func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

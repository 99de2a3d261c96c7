// Package rules holds the derived formulas of the sheet: damage dice, basic
// lift and its multiples, carrying capacity, move and dodge. Every function
// is pure; the variant in use is selected by Settings.
package rules

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
)

// DamageProgression selects the thrust/swing table
type DamageProgression string

const (
	BasicSet                DamageProgression = "basic_set"
	ReducedSwing            DamageProgression = "reduced_swing"
	KnowingYourOwnStrength  DamageProgression = "knowing_your_own_strength"
	ThrustEqualsSwingMinus2 DamageProgression = "thrust_equals_swing_minus_2"
)

// ParseDamageProgression reads a progression name; empty means BasicSet
func ParseDamageProgression(s string) (DamageProgression, error) {
	p := DamageProgression(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return BasicSet, nil
	case BasicSet, ReducedSwing, KnowingYourOwnStrength, ThrustEqualsSwingMinus2:
		return p, nil
	}
	return "", fmt.Errorf("unknown damage progression %q", s)
}

// Settings are the rule options a sheet is calculated with
type Settings struct {
	DamageProgression          DamageProgression  `json:"damage_progression" yaml:"damage_progression" validate:"omitempty,oneof=basic_set reduced_swing knowing_your_own_strength thrust_equals_swing_minus_2"`
	WeightUnits                measure.WeightUnit `json:"weight_units" yaml:"weight_units" validate:"omitempty,oneof=lb kg"`
	UseSimpleMetricConversions bool               `json:"use_simple_metric_conversions" yaml:"use_simple_metric_conversions"`
}

// DefaultSettings is the Basic Set in pounds with simple metric conversions
func DefaultSettings() Settings {
	return Settings{
		DamageProgression:          BasicSet,
		WeightUnits:                measure.Pound,
		UseSimpleMetricConversions: true,
	}
}

// Normalize fills empty fields with their defaults
func (s Settings) Normalize() Settings {
	if s.DamageProgression == "" {
		s.DamageProgression = BasicSet
	}
	if !s.WeightUnits.Valid() {
		s.WeightUnits = measure.Pound
	}
	return s
}

// calcUnits is the unit basic lift is worked out in before conversion
func (s Settings) calcUnits() measure.WeightUnit {
	if s.UseSimpleMetricConversions && s.WeightUnits == measure.Kilogram {
		return measure.Kilogram
	}
	return measure.Pound
}

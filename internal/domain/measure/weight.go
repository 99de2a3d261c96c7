package measure

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// WeightUnit is the unit a weight is expressed in
type WeightUnit string

const (
	Pound    WeightUnit = "lb"
	Kilogram WeightUnit = "kg"
)

// kgPerPound is the exact conversion factor
const kgPerPound = 0.45359237

// Valid reports whether the unit is one the engine understands
func (u WeightUnit) Valid() bool {
	return u == Pound || u == Kilogram
}

// ParseWeightUnit accepts lb, lbs, pound(s), kg, kilogram(s)
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lb", "lbs", "pound", "pounds", "#":
		return Pound, nil
	case "kg", "kgs", "kilogram", "kilograms":
		return Kilogram, nil
	}
	return "", fmt.Errorf("unknown weight unit %q", s)
}

// Weight is an amount in a specific unit
type Weight struct {
	Value float64    `json:"value" yaml:"value"`
	Unit  WeightUnit `json:"unit" yaml:"unit"`
}

// Pounds creates a weight in pounds
func Pounds(v float64) Weight {
	return Weight{Value: v, Unit: Pound}
}

// Kilograms creates a weight in kilograms
func Kilograms(v float64) Weight {
	return Weight{Value: v, Unit: Kilogram}
}

// Convert returns w expressed in unit. When simple is set the game's
// 2 lb = 1 kg convention is used instead of the exact factor.
func (w Weight) Convert(unit WeightUnit, simple bool) Weight {
	if w.Unit == "" {
		w.Unit = Pound
	}
	if w.Unit == unit || !unit.Valid() {
		return w
	}
	factor := kgPerPound
	if simple {
		factor = 0.5
	}
	if unit == Kilogram {
		return Weight{Value: w.Value * factor, Unit: Kilogram}
	}
	return Weight{Value: w.Value / factor, Unit: Pound}
}

// Add sums two weights in w's unit
func (w Weight) Add(other Weight, simple bool) Weight {
	other = other.Convert(w.Unit, simple)
	return Weight{Value: w.Value + other.Value, Unit: w.Unit}
}

// Mul scales the weight
func (w Weight) Mul(f float64) Weight {
	return Weight{Value: w.Value * f, Unit: w.Unit}
}

// LessOrEqual compares after converting other into w's unit
func (w Weight) LessOrEqual(other Weight, simple bool) bool {
	other = other.Convert(w.Unit, simple)
	return w.Value <= other.Value+1e-9
}

// String renders the weight like "20 lb" or "12.5 kg"
func (w Weight) String() string {
	unit := w.Unit
	if unit == "" {
		unit = Pound
	}
	return strconv.FormatFloat(TruncateTenths(w.Value), 'f', -1, 64) + " " + string(unit)
}

// TruncateTenths drops everything past the first decimal place
func TruncateTenths(v float64) float64 {
	return math.Trunc(v*10+signedEpsilon(v)) / 10
}

func signedEpsilon(v float64) float64 {
	if v < 0 {
		return -1e-9
	}
	return 1e-9
}

package rules

import (
	"math"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/encumbrance"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
)

// Lift multiples of basic lift
const (
	OneHandedLift            = 2
	TwoHandedLift            = 8
	ShoveAndKnockOver        = 12
	RunningShoveAndKnockOver = 24
	CarryOnBack              = 15
	ShiftSlightly            = 50
)

// BasicLift returns basic lift for st in the settings' weight units. st
// should already include lifting-only bonuses; halveST applies the tired
// penalty, rounding up.
func BasicLift(st int, s Settings, halveST bool) measure.Weight {
	s = s.Normalize()
	return basicLift(st, s, halveST).Convert(s.WeightUnits, s.UseSimpleMetricConversions)
}

func basicLift(st int, s Settings, halveST bool) measure.Weight {
	units := s.calcUnits()
	divisor, multiplier, roundAt := 5.0, 2.0, 10.0
	if units == measure.Kilogram {
		divisor, multiplier, roundAt = 10, 1, 5
	}

	if halveST {
		odd := st%2 != 0
		st /= 2
		if odd {
			st++
		}
	}
	if st < 1 {
		return measure.Weight{Unit: units}
	}

	var v float64
	if s.DamageProgression == KnowingYourOwnStrength {
		diff := 0
		if st > 19 {
			diff = st/10 - 1
			st -= diff * 10
		}
		v = math.Pow(10, float64(st)/10) * multiplier
		if st <= 6 {
			v = math.Round(v*10) / 10
		} else {
			v = math.Round(v)
		}
		v *= math.Pow(10, float64(diff))
	} else {
		v = float64(st*st) / divisor
	}
	if v >= roundAt {
		v = math.Round(v)
	}
	return measure.Weight{Value: measure.TruncateTenths(v), Unit: units}
}

// LiftMultiple scales basic lift by one of the lift multiples
func LiftMultiple(st int, s Settings, halveST bool, multiple int) measure.Weight {
	return BasicLift(st, s, halveST).Mul(float64(multiple))
}

// MaximumCarry is the heaviest load that stays within enc
func MaximumCarry(enc encumbrance.Level, st int, s Settings, halveST bool) measure.Weight {
	s = s.Normalize()
	lift := basicLift(st, s, halveST).Mul(float64(enc.Multiplier()))
	return lift.Convert(s.WeightUnits, s.UseSimpleMetricConversions)
}

// EncumbranceLevel is the lightest level whose maximum carry covers carried
func EncumbranceLevel(carried measure.Weight, st int, s Settings, halveST bool) encumbrance.Level {
	for _, enc := range encumbrance.All() {
		if carried.LessOrEqual(MaximumCarry(enc, st, s, halveST), s.UseSimpleMetricConversions) {
			return enc
		}
	}
	return encumbrance.ExtraHeavy
}

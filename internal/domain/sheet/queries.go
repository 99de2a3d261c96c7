package sheet

import (
	"maps"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/dice"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/attribute"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/bonus"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/encumbrance"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/points"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/rules"
)

// AttributeValue is the resolved value of id, or attribute.UnresolvedDecimal
func (s *Sheet) AttributeValue(id string) float64 {
	s.ensure()
	return s.attrs.Value(id)
}

// AttributeCurrent is the current value of a pool, or the value of any other
// attribute
func (s *Sheet) AttributeCurrent(id string) int {
	s.ensure()
	return s.attrs.Current(id)
}

// AttributeThreshold is the pool state id is currently in, if any
func (s *Sheet) AttributeThreshold(id string) *attribute.PoolThreshold {
	s.ensure()
	return s.attrs.CurrentThreshold(id)
}

// AttributePoints is what id costs at the sheet's current size modifier
func (s *Sheet) AttributePoints(id string) int {
	s.ensure()
	return s.attrs.PointCost(id, s.SizeModifier(s.derived.special), s.sizeAdjustmentApplies(id))
}

// Points is the point spend by category
func (s *Sheet) Points() points.Budget {
	s.ensure()
	return s.derived.budget
}

// SpentPoints is the total spent
func (s *Sheet) SpentPoints() int {
	return s.Points().Spent()
}

// UnspentPoints is what remains of the total
func (s *Sheet) UnspentPoints() int {
	return s.Points().Unspent(s.totalPoints)
}

// WeightCarried is the carried equipment weight. With forSkills set, items
// flagged as ignored for skills are left out.
func (s *Sheet) WeightCarried(forSkills bool) measure.Weight {
	s.ensure()
	if forSkills {
		return s.derived.weightSkills
	}
	return s.derived.weight
}

// WealthCarried is the value of carried equipment
func (s *Sheet) WealthCarried() float64 {
	s.ensure()
	return s.derived.wealth
}

// WealthNotCarried is the value of equipment that is owned but not carried
func (s *Sheet) WealthNotCarried() float64 {
	s.ensure()
	return s.derived.wealthOther
}

// EncumbranceLevel is the level the carried weight puts the character at
func (s *Sheet) EncumbranceLevel(forSkills bool) encumbrance.Level {
	s.ensure()
	if forSkills {
		return s.derived.encSkills
	}
	return s.derived.enc
}

// Move is ground move at enc
func (s *Sheet) Move(enc encumbrance.Level) int {
	s.ensure()
	return s.derived.move[clampLevel(enc)]
}

// Dodge is dodge at enc
func (s *Sheet) Dodge(enc encumbrance.Level) int {
	s.ensure()
	return s.derived.dodge[clampLevel(enc)]
}

// MaximumCarry is the heaviest load still within enc
func (s *Sheet) MaximumCarry(enc encumbrance.Level) measure.Weight {
	s.ensure()
	return s.derived.maxCarry[clampLevel(enc)]
}

// Thrust is thrust damage for ST plus striking-only bonuses
func (s *Sheet) Thrust() dice.Dice {
	s.ensure()
	return s.derived.thrust
}

// Swing is swing damage for ST plus striking-only bonuses
func (s *Sheet) Swing() dice.Dice {
	s.ensure()
	return s.derived.swing
}

// BasicLift is basic lift for ST plus lifting-only bonuses
func (s *Sheet) BasicLift() measure.Weight {
	s.ensure()
	return s.derived.basicLift
}

// OneHandedLift is the most lifted with one hand in two seconds
func (s *Sheet) OneHandedLift() measure.Weight {
	return s.BasicLift().Mul(rules.OneHandedLift)
}

// TwoHandedLift is the most lifted with both hands in four seconds
func (s *Sheet) TwoHandedLift() measure.Weight {
	return s.BasicLift().Mul(rules.TwoHandedLift)
}

// ShoveAndKnockOver is the heaviest object that can be shoved or knocked over
func (s *Sheet) ShoveAndKnockOver() measure.Weight {
	return s.BasicLift().Mul(rules.ShoveAndKnockOver)
}

// RunningShoveAndKnockOver is ShoveAndKnockOver with a running start
func (s *Sheet) RunningShoveAndKnockOver() measure.Weight {
	return s.BasicLift().Mul(rules.RunningShoveAndKnockOver)
}

// CarryOnBack is the most that can be carried on the back
func (s *Sheet) CarryOnBack() measure.Weight {
	return s.BasicLift().Mul(rules.CarryOnBack)
}

// ShiftSlightly is the heaviest object that can be shifted a little
func (s *Sheet) ShiftSlightly() measure.Weight {
	return s.BasicLift().Mul(rules.ShiftSlightly)
}

// Special is the set of non-attribute bonuses from the last pass
func (s *Sheet) Special() attribute.Special {
	s.ensure()
	return s.derived.special
}

// Reactions groups reaction bonuses by situation
func (s *Sheet) Reactions() []bonus.Situational {
	return s.Bonuses().Reactions()
}

// ConditionalModifiers groups conditional modifiers by situation
func (s *Sheet) ConditionalModifiers() []bonus.Situational {
	return s.Bonuses().ConditionalModifiers()
}

// DR is the damage resistance bonus at a hit location keyed by
// specialization, with "all" for unspecialized bonuses
func (s *Sheet) DR(location string) map[string]int {
	return s.Bonuses().DRBonusesFor(location, nil)
}

// Bonuses exposes the aggregator built in the last pass for skill, spell and
// weapon queries
func (s *Sheet) Bonuses() *bonus.Aggregator {
	s.ensure()
	return s.aggregator
}

// Snapshot returns a copy of every derived value keyed by change id
func (s *Sheet) Snapshot() map[string]any {
	s.ensure()
	return maps.Clone(s.snapshot)
}

func clampLevel(enc encumbrance.Level) encumbrance.Level {
	return max(encumbrance.None, min(enc, encumbrance.ExtraHeavy))
}

package sheet

import (
	"strconv"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/dice"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/attribute"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/encumbrance"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/points"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/rules"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/trait"
)

const levelCount = int(encumbrance.ExtraHeavy) + 1

// liftNames are the lift multiples as they appear in change ids
var liftNames = []struct {
	name     string
	multiple int
}{
	{"one_handed", rules.OneHandedLift},
	{"two_handed", rules.TwoHandedLift},
	{"shove", rules.ShoveAndKnockOver},
	{"running_shove", rules.RunningShoveAndKnockOver},
	{"carry_on_back", rules.CarryOnBack},
	{"shift_slightly", rules.ShiftSlightly},
}

type derived struct {
	special attribute.Special

	weight       measure.Weight
	weightSkills measure.Weight
	wealth       float64
	wealthOther  float64

	enc       encumbrance.Level
	encSkills encumbrance.Level
	move      [levelCount]int
	dodge     [levelCount]int
	maxCarry  [levelCount]measure.Weight

	liftST    int
	halveST   bool
	basicLift measure.Weight
	thrust    dice.Dice
	swing     dice.Dice

	budget points.Budget
}

func (s *Sheet) computeDerived(special attribute.Special) derived {
	d := derived{special: special}
	settings := s.settings
	unit, simple := settings.WeightUnits, settings.UseSimpleMetricConversions

	d.weight = measure.Weight{Unit: unit}
	d.weightSkills = measure.Weight{Unit: unit}
	for _, row := range s.store.Rows(trait.CarriedEquipment) {
		d.weight = d.weight.Add(row.ExtendedWeight(false, unit, simple), simple)
		d.weightSkills = d.weightSkills.Add(row.ExtendedWeight(true, unit, simple), simple)
		d.wealth += row.ExtendedValue()
	}
	for _, row := range s.store.Rows(trait.OtherEquipment) {
		d.wealthOther += row.ExtendedValue()
	}

	st := s.attrs.IntValue(feature.ST)
	d.liftST = st + special.LiftingST
	d.halveST = s.attrs.IsThresholdOpMet(attribute.HalveST)
	d.basicLift = rules.BasicLift(d.liftST, settings, d.halveST)
	d.enc = rules.EncumbranceLevel(d.weight, d.liftST, settings, d.halveST)
	d.encSkills = rules.EncumbranceLevel(d.weightSkills, d.liftST, settings, d.halveST)

	basicMove := s.attrs.IntValue(feature.BasicMove)
	basicSpeed := s.attrs.Value(feature.BasicSpeed)
	moveOps := s.attrs.CountThresholdOpMet(attribute.HalveMove)
	dodgeOps := s.attrs.CountThresholdOpMet(attribute.HalveDodge)
	for _, enc := range encumbrance.All() {
		d.move[enc] = rules.Move(basicMove, moveOps, enc)
		d.dodge[enc] = rules.Dodge(basicSpeed, special.Dodge, dodgeOps, enc)
		d.maxCarry[enc] = rules.MaximumCarry(enc, d.liftST, settings, d.halveST)
	}

	strikingST := st + special.StrikingST
	d.thrust = rules.Thrust(strikingST, settings.DamageProgression)
	d.swing = rules.Swing(strikingST, settings.DamageProgression)

	d.budget = points.Calculate(s.store, s.attrs, s.SizeModifier(special), s.sizeAdjustmentApplies)
	return d
}

// SizeModifier combines the profile value with size modifier bonuses
func (s *Sheet) SizeModifier(special attribute.Special) int {
	return s.profile.SizeModifier + special.SizeModifier
}

// sizeAdjustmentApplies skips the ST and HP size discounts when knowing your
// own strength is in use
func (s *Sheet) sizeAdjustmentApplies(id string) bool {
	if s.settings.DamageProgression != rules.KnowingYourOwnStrength {
		return true
	}
	return id != feature.ST && id != feature.HP
}

// buildSnapshot flattens every derived value into change-id keyed form
func (s *Sheet) buildSnapshot() map[string]any {
	d := &s.derived
	snap := make(map[string]any, 64)

	for _, def := range s.attrs.Defs() {
		key := "attr." + def.ID
		if def.Type == attribute.Decimal {
			snap[key] = s.attrs.Value(def.ID)
		} else {
			snap[key] = s.attrs.IntValue(def.ID)
		}
		if def.Type == attribute.Pool {
			snap[key+".current"] = s.attrs.Current(def.ID)
		}
	}

	snap["points.attributes"] = d.budget.Attributes
	snap["points.race"] = d.budget.Race
	snap["points.advantages"] = d.budget.Advantages
	snap["points.disadvantages"] = d.budget.Disadvantages
	snap["points.quirks"] = d.budget.Quirks
	snap["points.skills"] = d.budget.Skills
	snap["points.spells"] = d.budget.Spells
	snap["points.spent"] = d.budget.Spent()
	snap["points.unspent"] = d.budget.Unspent(s.totalPoints)

	snap["weight.carried"] = d.weight
	snap["weight.carried.skills"] = d.weightSkills
	snap["wealth.carried"] = d.wealth
	snap["wealth.not_carried"] = d.wealthOther
	snap["encumbrance"] = d.enc.String()
	snap["encumbrance.skills"] = d.encSkills.String()

	for _, enc := range encumbrance.All() {
		snap["move."+enc.String()] = d.move[enc]
		snap["dodge."+enc.String()] = d.dodge[enc]
		snap["max_carry."+enc.String()] = d.maxCarry[enc]
	}

	snap["damage.thrust"] = d.thrust.String()
	snap["damage.swing"] = d.swing.String()
	snap["lift.basic"] = d.basicLift
	for _, l := range liftNames {
		snap["lift."+l.name] = d.basicLift.Mul(float64(l.multiple))
	}

	snap["bonus.dodge"] = d.special.Dodge
	snap["bonus.parry"] = d.special.Parry
	snap["bonus.block"] = d.special.Block

	for _, lvl := range s.SkillLevels() {
		snap["skill."+lvl.Row.ID+".level"] = lvl.Level
	}
	for _, w := range s.Weapons() {
		snap["weapon."+w.Row.ID+"."+strconv.Itoa(w.Index)+".damage"] = w.Damage.String()
	}
	return snap
}

package sheet

import (
	"github.com/KirkDiggler/gurps-sheet-engine/internal/dice"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/attribute"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/bonus"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/trait"
)

// SkillLevel is a skill or technique resolved against the sheet
type SkillLevel struct {
	Row           *trait.Row
	Attribute     string
	Level         int
	RelativeLevel int
}

// SkillLevel resolves row as the attribute it is based on plus its relative
// level and matching skill bonuses, less the skill encumbrance penalty times
// the row's multiplier. Rows without points, and rows based on an unknown
// attribute, report false. The attribute defaults to dx.
func (s *Sheet) SkillLevel(row *trait.Row) (SkillLevel, bool) {
	if row == nil || (row.Type != trait.Skill && row.Type != trait.Technique) {
		return SkillLevel{}, false
	}
	rsl, ok := s.Bonuses().SkillRelativeLevel(row)
	if !ok {
		return SkillLevel{}, false
	}
	attr := row.Attribute
	if attr == "" {
		attr = feature.DX
	}
	base := s.attrs.IntValue(attr)
	if base == attribute.Unresolved {
		return SkillLevel{}, false
	}
	level := base + rsl + s.EncumbranceLevel(true).Penalty()*row.EncPenaltyMult
	return SkillLevel{Row: row, Attribute: attr, Level: level, RelativeLevel: rsl}, true
}

// SkillLevels resolves every skill and technique with points, in forest order
func (s *Sheet) SkillLevels() []SkillLevel {
	var out []SkillLevel
	trait.Leaves(s.store.Rows(trait.Skills), func(r *trait.Row) {
		if lvl, ok := s.SkillLevel(r); ok {
			out = append(out, lvl)
		}
	})
	return out
}

// WeaponDamage is one attack mode's damage after weapon bonuses
type WeaponDamage struct {
	Row     *trait.Row
	Index   int // Position of Weapon in Row.Weapons
	Weapon  trait.Weapon
	Damage  dice.Dice
	Sources []string
}

// WeaponDamage resolves w on row: thrust or swing for ST plus striking-only
// bonuses, the weapon's own modifier, then damage bonuses for the skill that
// wields it and for the weapon by name. Per-die bonuses scale with the base
// dice.
func (s *Sheet) WeaponDamage(row *trait.Row, w trait.Weapon) WeaponDamage {
	base := s.Thrust()
	if w.Damage == trait.SwingDamage {
		base = s.Swing()
	}
	base = base.Add(w.Modifier)

	agg := s.Bonuses()
	var categories []string
	if row != nil {
		categories = row.Categories
	}
	bySkill := agg.WeaponDamageBonusesFor(w.Skill, w.Specialization, categories, base.Count, nil)
	var byName bonus.Result
	if row != nil {
		byName = agg.NamedWeaponDamageBonusesFor(row.Name, w.Usage, categories, base.Count, nil)
	}

	return WeaponDamage{
		Row:     row,
		Weapon:  w,
		Damage:  base.Add(bySkill.IntegerTotal() + byName.IntegerTotal()),
		Sources: append(bySkill.Sources(), byName.Sources()...),
	}
}

// Weapons resolves every attack mode on equipped carried equipment
func (s *Sheet) Weapons() []WeaponDamage {
	var out []WeaponDamage
	trait.Walk(s.store.Rows(trait.CarriedEquipment), func(r *trait.Row) bool {
		if !r.Equipped || r.Quantity < 1 {
			return false
		}
		for i, w := range r.Weapons {
			wd := s.WeaponDamage(r, w)
			wd.Index = i
			out = append(out, wd)
		}
		return true
	})
	return out
}

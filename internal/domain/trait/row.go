// Package trait holds the character's trait forests: advantages, skills,
// spells, equipment and notes, plus the modifiers attached to them.
package trait

import (
	"math"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
)

// Type tags a row
type Type string

const (
	Advantage        Type = "advantage"
	Skill            Type = "skill"
	Technique        Type = "technique"
	Spell            Type = "spell"
	RitualMagicSpell Type = "ritual_magic_spell"
	Equipment        Type = "equipment"
	Note             Type = "note"
)

// ContainerType describes how a container row groups its children
type ContainerType string

const (
	NotContainer         ContainerType = ""
	Group                ContainerType = "group"
	Race                 ContainerType = "race"
	MetaTrait            ContainerType = "meta_trait"
	AlternativeAbilities ContainerType = "alternative_abilities"
)

// Row is a node in one of the trait forests
type Row struct {
	ID             string
	Type           Type
	Name           string
	Specialization string
	Categories     []string
	Container      ContainerType

	// Advantage fields
	Disabled       bool
	Leveled        bool
	Levels         int
	BasePoints     int
	PointsPerLevel int
	RoundCostDown  bool
	SelfControl    SelfControlRoll
	SelfControlAdj SelfControlAdjustment

	// Skill, technique and spell fields
	Points         int
	RelativeLevel  int // Used as-is when Difficulty is empty
	Attribute      string
	Difficulty     Difficulty
	EncPenaltyMult int
	College        []string
	PowerSource    string

	// Equipment fields
	Equipped               bool
	Quantity               int
	Weight                 measure.Weight
	Value                  float64
	WeightIgnoredForSkills bool
	Weapons                []Weapon

	Features  []feature.Feature
	Modifiers []*Modifier
	Children  []*Row
}

// IsContainer reports whether the row groups children
func (r *Row) IsContainer() bool {
	return r.Container != NotContainer
}

// FeatureLevel is the level used to scale the row's own features
func (r *Row) FeatureLevel() int {
	if r.Type != Advantage || !r.Leveled || r.Levels < 0 {
		return 0
	}
	return r.Levels
}

// EnabledModifiers returns only the modifiers that are switched on
func (r *Row) EnabledModifiers() []*Modifier {
	var out []*Modifier
	for _, m := range r.Modifiers {
		if !m.Disabled {
			out = append(out, m)
		}
	}
	return out
}

// AdjustedPoints is the row's point cost after levels, modifiers and any
// self-control roll. Containers total their children.
func (r *Row) AdjustedPoints() int {
	if r.Disabled {
		return 0
	}
	if r.IsContainer() {
		if r.Container == AlternativeAbilities {
			return r.alternativeAbilitiesPoints()
		}
		points := 0
		for _, child := range r.Children {
			points += child.AdjustedPoints()
		}
		return points
	}
	if r.Type != Advantage {
		return r.Points
	}
	return adjustedPoints(r.BasePoints, r.FeatureLevel(), r.PointsPerLevel, r.SelfControl, r.EnabledModifiers(), r.RoundCostDown)
}

// alternativeAbilitiesPoints charges the most expensive child in full and
// one fifth for the rest
func (r *Row) alternativeAbilitiesPoints() int {
	values := make([]int, 0, len(r.Children))
	best := 0
	for _, child := range r.Children {
		pts := child.AdjustedPoints()
		values = append(values, pts)
		if pts > best {
			best = pts
		}
	}
	points := best
	found := false
	for _, v := range values {
		if !found && v == best {
			found = true
			continue
		}
		points += round(float64(v)*20/100, r.RoundCostDown)
	}
	return points
}

func adjustedPoints(basePoints, levels, pointsPerLevel int, cr SelfControlRoll, modifiers []*Modifier, roundDown bool) int {
	var baseMod, levelMod int
	multiplier := cr.Multiplier()

	for _, m := range modifiers {
		switch m.CostType {
		case CostPoints:
			if m.Affects == LevelsOnly {
				pointsPerLevel += int(m.Cost)
			} else {
				basePoints += int(m.Cost)
			}
		case CostMultiplier:
			multiplier *= m.Cost
		default:
			switch m.Affects {
			case BaseOnly:
				baseMod += int(m.Cost)
			case LevelsOnly:
				levelMod += int(m.Cost)
			default:
				baseMod += int(m.Cost)
				levelMod += int(m.Cost)
			}
		}
	}

	baseMod = max(baseMod, -80)
	levelMod = max(levelMod, -80)
	base := float64(basePoints)
	leveled := float64(pointsPerLevel * levels)

	var total float64
	if baseMod == levelMod {
		total = modify(base+leveled, baseMod)
	} else {
		total = modify(base, baseMod) + modify(leveled, levelMod)
	}
	return round(total*multiplier, roundDown)
}

func modify(points float64, percent int) float64 {
	return points + points*float64(percent)/100
}

func round(v float64, down bool) int {
	if down {
		return int(math.Floor(v))
	}
	return int(math.Ceil(v))
}

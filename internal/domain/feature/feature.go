// Package feature defines the bonus effects traits and trait modifiers carry.
package feature

import (
	"strings"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/criteria"
)

// Well-known attribute and bonus ids
const (
	ST          = "st"
	DX          = "dx"
	IQ          = "iq"
	HT          = "ht"
	Will        = "will"
	FrightCheck = "fright_check"
	Per         = "per"
	Vision      = "vision"
	Hearing     = "hearing"
	TasteSmell  = "taste_smell"
	Touch       = "touch"
	BasicSpeed  = "basic_speed"
	BasicMove   = "basic_move"
	FP          = "fp"
	HP          = "hp"
	Dodge       = "dodge"
	Parry       = "parry"
	Block       = "block"
	SM          = "sm"
)

// Key prefixes for the feature map
const (
	AttributePrefix             = "attr."
	SkillNameKey                = "skill.name"
	WeaponNamedPrefix           = "weapon_named."
	SkillPointsKey              = "skill.points"
	SpellCollegeKey             = "spell.college"
	SpellPowerSourceKey         = "spell.power_source"
	SpellNameKey                = "spell.name"
	SpellPointsPrefix           = "spell.points."
	WeaponDamageKey             = "weapon.damage"
	HitLocationPrefix           = "hit_location."
	ReactionKey                 = "reaction"
	ConditionalKey              = "conditional"
	ContainedWeightReductionKey = "contained_weight_reduction"
)

// LeveledAmount is a bonus magnitude that may scale with a level count
type LeveledAmount struct {
	Amount   float64 `json:"amount" yaml:"amount"`
	PerLevel float64 `json:"per_level,omitempty" yaml:"per_level,omitempty"`
}

// Flat is a LeveledAmount with no per-level component
func Flat(amount float64) LeveledAmount {
	return LeveledAmount{Amount: amount}
}

// Effective returns the amount at the given level
func (a LeveledAmount) Effective(level float64) float64 {
	return a.Amount + a.PerLevel*level
}

// Feature is one of the bonus kinds below. The set is closed.
type Feature interface {
	Kind() Kind
	isFeature()
}

// Kind names a Feature variant
type Kind string

const (
	KindAttributeBonus           Kind = "attribute_bonus"
	KindSkillBonus               Kind = "skill_bonus"
	KindSkillPointBonus          Kind = "skill_point_bonus"
	KindSpellBonus               Kind = "spell_bonus"
	KindSpellPointBonus          Kind = "spell_point_bonus"
	KindWeaponBonus              Kind = "weapon_bonus"
	KindCostReduction            Kind = "cost_reduction"
	KindReactionBonus            Kind = "reaction_bonus"
	KindConditionalModifier      Kind = "conditional_modifier"
	KindDRBonus                  Kind = "dr_bonus"
	KindContainedWeightReduction Kind = "contained_weight_reduction"
)

// Limitation restricts an ST bonus to part of its uses
type Limitation string

const (
	NoLimitation Limitation = ""
	LiftingOnly  Limitation = "lifting_only"
	StrikingOnly Limitation = "striking_only"
	ThrowingOnly Limitation = "throwing_only"
)

// AttributeBonus adds to an attribute or to one of the special bonus ids
// (dodge, parry, block, sm)
type AttributeBonus struct {
	Attribute  string
	Limitation Limitation
	Amount     LeveledAmount
}

// SkillSelection picks what a SkillBonus applies to
type SkillSelection string

const (
	SkillsWithName  SkillSelection = "skills_with_name"
	WeaponsWithName SkillSelection = "weapons_with_name"
)

// SkillBonus adds to skill levels
type SkillBonus struct {
	Selection      SkillSelection
	Name           criteria.String
	Specialization criteria.String
	Categories     criteria.String
	Amount         LeveledAmount
}

// SkillPointBonus adds points to matching skills
type SkillPointBonus struct {
	Name           criteria.String
	Specialization criteria.String
	Categories     criteria.String
	Amount         LeveledAmount
}

// SpellMatch picks what a spell bonus applies to
type SpellMatch string

const (
	AllColleges     SpellMatch = "all_colleges"
	CollegeName     SpellMatch = "college_name"
	PowerSourceName SpellMatch = "power_source_name"
	SpellName       SpellMatch = "spell_name"
)

// SpellBonus adds to spell levels
type SpellBonus struct {
	Match      SpellMatch
	Name       criteria.String
	Categories criteria.String
	Amount     LeveledAmount
}

// SpellPointBonus adds points to matching spells
type SpellPointBonus struct {
	Match      SpellMatch
	Name       criteria.String
	Categories criteria.String
	Amount     LeveledAmount
}

// WeaponSelection picks what a WeaponBonus applies to
type WeaponSelection string

const (
	WithRequiredSkill WeaponSelection = "with_required_skill"
	WithName          WeaponSelection = "with_name"
)

// WeaponBonus adds to weapon damage
type WeaponBonus struct {
	Selection      WeaponSelection
	Name           criteria.String
	Specialization criteria.String
	RelativeLevel  criteria.Numeric
	Categories     criteria.String
	PerDie         bool
	Amount         LeveledAmount
}

// CostReduction lowers an attribute's point cost by a percentage
type CostReduction struct {
	Attribute  string
	Percentage int
}

// ReactionBonus modifies reactions in a situation
type ReactionBonus struct {
	Situation string
	Amount    LeveledAmount
}

// ConditionalModifier is a situational roll modifier
type ConditionalModifier struct {
	Situation string
	Amount    LeveledAmount
}

// DRBonus adds damage resistance at a hit location
type DRBonus struct {
	Location       string
	Specialization string
	Amount         LeveledAmount
}

// ContainedWeightReduction lowers the weight of an equipment container's contents
type ContainedWeightReduction struct {
	Percentage  int
	FixedPounds float64
}

func (AttributeBonus) Kind() Kind           { return KindAttributeBonus }
func (SkillBonus) Kind() Kind               { return KindSkillBonus }
func (SkillPointBonus) Kind() Kind          { return KindSkillPointBonus }
func (SpellBonus) Kind() Kind               { return KindSpellBonus }
func (SpellPointBonus) Kind() Kind          { return KindSpellPointBonus }
func (WeaponBonus) Kind() Kind              { return KindWeaponBonus }
func (CostReduction) Kind() Kind            { return KindCostReduction }
func (ReactionBonus) Kind() Kind            { return KindReactionBonus }
func (ConditionalModifier) Kind() Kind      { return KindConditionalModifier }
func (DRBonus) Kind() Kind                  { return KindDRBonus }
func (ContainedWeightReduction) Kind() Kind { return KindContainedWeightReduction }

func (AttributeBonus) isFeature()           {}
func (SkillBonus) isFeature()               {}
func (SkillPointBonus) isFeature()          {}
func (SpellBonus) isFeature()               {}
func (SpellPointBonus) isFeature()          {}
func (WeaponBonus) isFeature()              {}
func (CostReduction) isFeature()            {}
func (ReactionBonus) isFeature()            {}
func (ConditionalModifier) isFeature()      {}
func (DRBonus) isFeature()                  {}
func (ContainedWeightReduction) isFeature() {}

// AttributeKey is the map key for bonuses to attribute id
func AttributeKey(id string) string {
	return AttributePrefix + strings.ToLower(id)
}

// LimitedAttributeKey is the key for a limited ST bonus
func LimitedAttributeKey(id string, limitation Limitation) string {
	if limitation == NoLimitation {
		return AttributeKey(id)
	}
	return AttributeKey(id) + "." + string(limitation)
}

// Key returns the lower-case feature map key for f
func Key(f Feature) string {
	switch v := f.(type) {
	case AttributeBonus:
		return LimitedAttributeKey(v.Attribute, v.Limitation)
	case CostReduction:
		return AttributeKey(v.Attribute)
	case SkillBonus:
		if v.Selection == WeaponsWithName {
			return WeaponNamedPrefix + SkillNameKey + v.Name.KeySuffix()
		}
		return SkillNameKey + v.Name.KeySuffix()
	case SkillPointBonus:
		return SkillPointsKey + v.Name.KeySuffix()
	case SpellBonus:
		return spellKey(v.Match, v.Name, "spell.")
	case SpellPointBonus:
		return spellKey(v.Match, v.Name, SpellPointsPrefix)
	case WeaponBonus:
		if v.Selection == WithName {
			return WeaponNamedPrefix + "damage" + v.Name.KeySuffix()
		}
		return WeaponDamageKey + v.Name.KeySuffix()
	case DRBonus:
		return HitLocationPrefix + strings.ToLower(v.Location)
	case ReactionBonus:
		return ReactionKey
	case ConditionalModifier:
		return ConditionalKey
	case ContainedWeightReduction:
		return ContainedWeightReductionKey
	}
	return ""
}

func spellKey(match SpellMatch, name criteria.String, prefix string) string {
	switch match {
	case AllColleges:
		return prefix + "college"
	case CollegeName:
		return prefix + "college" + name.KeySuffix()
	case PowerSourceName:
		return prefix + "power_source" + name.KeySuffix()
	default:
		return prefix + "name" + name.KeySuffix()
	}
}

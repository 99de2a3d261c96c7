package attribute

import (
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/bonus"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
)

// BonusSource is the part of the bonus aggregator the resolver reads
type BonusSource interface {
	AttributeBonusFor(key string, tooltip *bonus.Tooltip) float64
	IntegerBonusFor(key string, tooltip *bonus.Tooltip) int
	CostReductionFor(key string) int
}

// Special holds bonuses that are not attributes in their own right
type Special struct {
	Dodge        int `json:"dodge"`
	Parry        int `json:"parry"`
	Block        int `json:"block"`
	LiftingST    int `json:"lifting_st"`
	StrikingST   int `json:"striking_st"`
	ThrowingST   int `json:"throwing_st"`
	SizeModifier int `json:"size_modifier"`
}

// ResolveAll writes each attribute's bonus and cost reduction from src,
// touching only values that differ. It reports whether anything changed.
func ResolveAll(s *Set, src BonusSource) bool {
	changed := false
	for _, d := range s.defs {
		key := feature.AttributeKey(d.ID)
		var b float64
		if d.Type == Decimal {
			b = src.AttributeBonusFor(key, nil)
		} else {
			b = float64(src.IntegerBonusFor(key, nil))
		}
		cr := src.CostReductionFor(key)

		a := s.attrs[d.ID]
		if a.Bonus != b {
			a.Bonus = b
			changed = true
		}
		if a.CostReduction != cr {
			a.CostReduction = cr
			changed = true
		}
	}
	return changed
}

// ResolveSpecial reads the fixed non-attribute bonus keys
func ResolveSpecial(src BonusSource) Special {
	return Special{
		Dodge:        src.IntegerBonusFor(feature.AttributeKey(feature.Dodge), nil),
		Parry:        src.IntegerBonusFor(feature.AttributeKey(feature.Parry), nil),
		Block:        src.IntegerBonusFor(feature.AttributeKey(feature.Block), nil),
		LiftingST:    src.IntegerBonusFor(feature.LimitedAttributeKey(feature.ST, feature.LiftingOnly), nil),
		StrikingST:   src.IntegerBonusFor(feature.LimitedAttributeKey(feature.ST, feature.StrikingOnly), nil),
		ThrowingST:   src.IntegerBonusFor(feature.LimitedAttributeKey(feature.ST, feature.ThrowingOnly), nil),
		SizeModifier: src.IntegerBonusFor(feature.AttributeKey(feature.SM), nil),
	}
}

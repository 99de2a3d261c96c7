package trait

import (
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/criteria"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
)

// SelfControlRoll is the number a character must roll to resist a disadvantage
type SelfControlRoll int

const (
	NoCR SelfControlRoll = 0
	CR6  SelfControlRoll = 6
	CR9  SelfControlRoll = 9
	CR12 SelfControlRoll = 12
	CR15 SelfControlRoll = 15
)

// Multiplier is the cost multiplier for the roll
func (cr SelfControlRoll) Multiplier() float64 {
	switch cr {
	case CR6:
		return 2
	case CR9:
		return 1.5
	case CR15:
		return 0.5
	default:
		return 1
	}
}

// Ordinal is the roll's position in the CR6..CR15 sequence, 0 when absent
func (cr SelfControlRoll) Ordinal() int {
	switch cr {
	case CR6:
		return 1
	case CR9:
		return 2
	case CR12:
		return 3
	case CR15:
		return 4
	default:
		return 0
	}
}

// SelfControlAdjustment is the extra effect a failed roll has
type SelfControlAdjustment string

const (
	NoCRAdjustment            SelfControlAdjustment = "none"
	ActionPenalty             SelfControlAdjustment = "action_penalty"
	ReactionPenalty           SelfControlAdjustment = "reaction_penalty"
	FrightCheckPenalty        SelfControlAdjustment = "fright_check_penalty"
	FrightCheckBonus          SelfControlAdjustment = "fright_check_bonus"
	MinorCostOfLivingIncrease SelfControlAdjustment = "minor_cost_of_living_increase"
	MajorCostOfLivingIncrease SelfControlAdjustment = "major_cost_of_living_increase"
)

// SelfControlFeatures returns the bonuses the row's self-control roll adds
func (r *Row) SelfControlFeatures() []feature.Feature {
	if r.SelfControl == NoCR || r.SelfControlAdj != MajorCostOfLivingIncrease {
		return nil
	}
	return []feature.Feature{
		feature.SkillBonus{
			Selection: feature.SkillsWithName,
			Name:      criteria.IsString("Merchant"),
			Amount:    feature.Flat(float64(r.SelfControl.Ordinal() - 4)),
		},
	}
}

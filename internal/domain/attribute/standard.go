package attribute

import (
	"strconv"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
)

var allOps = []ThresholdOp{HalveMove, HalveDodge, HalveST}

var moveAndDodge = []ThresholdOp{HalveMove, HalveDodge}

func from(ids ...string) Base {
	return Base{Sum: ids}
}

// StandardDefs returns the Basic Set attributes and the FP and HP pools
func StandardDefs() []Def {
	return []Def{
		{ID: feature.ST, Name: "Strength", Type: Integer, Base: Base{Constant: 10}, CostPerPoint: 10, CostAdjPercentPerSM: 10},
		{ID: feature.DX, Name: "Dexterity", Type: Integer, Base: Base{Constant: 10}, CostPerPoint: 20},
		{ID: feature.IQ, Name: "Intelligence", Type: Integer, Base: Base{Constant: 10}, CostPerPoint: 20},
		{ID: feature.HT, Name: "Health", Type: Integer, Base: Base{Constant: 10}, CostPerPoint: 10},
		{ID: feature.Will, Name: "Will", Type: Integer, Base: from(feature.IQ), CostPerPoint: 5},
		{ID: feature.FrightCheck, Name: "Fright Check", Type: Integer, Base: from(feature.Will), CostPerPoint: 2},
		{ID: feature.Per, Name: "Perception", Type: Integer, Base: from(feature.IQ), CostPerPoint: 5},
		{ID: feature.Vision, Name: "Vision", Type: Integer, Base: from(feature.Per), CostPerPoint: 2},
		{ID: feature.Hearing, Name: "Hearing", Type: Integer, Base: from(feature.Per), CostPerPoint: 2},
		{ID: feature.TasteSmell, Name: "Taste & Smell", Type: Integer, Base: from(feature.Per), CostPerPoint: 2},
		{ID: feature.Touch, Name: "Touch", Type: Integer, Base: from(feature.Per), CostPerPoint: 2},
		{ID: feature.BasicSpeed, Name: "Basic Speed", Type: Decimal, Base: Base{Sum: []string{feature.DX, feature.HT}, Divisor: 4}, CostPerPoint: 20},
		{ID: feature.BasicMove, Name: "Basic Move", Type: Integer, Base: Base{Sum: []string{feature.BasicSpeed}, Floor: true}, CostPerPoint: 5},
		{ID: feature.FP, Name: "Fatigue Points", Type: Pool, Base: from(feature.HT), CostPerPoint: 3, Thresholds: fatigueThresholds()},
		{ID: feature.HP, Name: "Hit Points", Type: Pool, Base: from(feature.ST), CostPerPoint: 2, CostAdjPercentPerSM: 10, SizeCost: SizeCostScaled, Thresholds: hitPointThresholds()},
	}
}

func fatigueThresholds() []PoolThreshold {
	return []PoolThreshold{
		{State: "Unconscious", Multiplier: -1, Divisor: 1, Ops: allOps},
		{State: "Collapse", Multiplier: 0, Divisor: 1, Ops: allOps},
		{State: "Tired", Multiplier: 1, Divisor: 3, Addition: -1, NonNegative: true, Ops: allOps},
		{State: "Tiring", Multiplier: 1, Divisor: 1, Addition: -1},
		{State: "Rested", Multiplier: 1, Divisor: 1},
	}
}

func hitPointThresholds() []PoolThreshold {
	out := []PoolThreshold{
		{State: "Dead", Multiplier: -5, Divisor: 1, Ops: moveAndDodge},
	}
	for i := -4; i < 0; i++ {
		out = append(out, PoolThreshold{
			State:      "Dying #" + strconv.Itoa(-i),
			Multiplier: i,
			Divisor:    1,
			Ops:        moveAndDodge,
		})
	}
	return append(out,
		PoolThreshold{State: "Collapse", Multiplier: 0, Divisor: 1, Ops: moveAndDodge},
		PoolThreshold{State: "Reeling", Multiplier: 1, Divisor: 3, Addition: -1, NonNegative: true, Ops: moveAndDodge},
		PoolThreshold{State: "Wounded", Multiplier: 1, Divisor: 1, Addition: -1},
		PoolThreshold{State: "Healthy", Multiplier: 1, Divisor: 1},
	)
}

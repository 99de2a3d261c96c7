package trait

import "github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"

// CostType is how a modifier changes its row's point cost
type CostType string

const (
	CostPercentage CostType = "percentage"
	CostPoints     CostType = "points"
	CostMultiplier CostType = "multiplier"
)

// Affects limits which part of the cost a modifier applies to
type Affects string

const (
	AffectsTotal Affects = "total"
	BaseOnly     Affects = "base_only"
	LevelsOnly   Affects = "levels_only"
)

// Modifier is an enhancement, limitation or equipment modifier attached to a row
type Modifier struct {
	ID       string
	Name     string
	Disabled bool
	Levels   int
	CostType CostType
	Affects  Affects
	Cost     float64
	Features []feature.Feature
}

// FeatureLevel is the level used for the modifier's features
func (m *Modifier) FeatureLevel() int {
	return max(m.Levels, 0)
}

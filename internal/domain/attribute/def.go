// Package attribute resolves primary, secondary and pool attributes from
// their definitions, adjustments and the bonuses in a feature map.
package attribute

import (
	"math"
)

// Sentinels returned for ids that are not defined
const (
	Unresolved        = math.MinInt32
	UnresolvedDecimal = -math.MaxFloat64
)

// Type is how an attribute's value is stored and displayed
type Type string

const (
	Integer Type = "integer"
	Decimal Type = "decimal"
	Pool    Type = "pool"
)

// Base is the value an attribute has before adjustment and bonuses: the
// constant plus the values of the listed attributes, divided and optionally
// floored
type Base struct {
	Constant float64  `json:"constant,omitempty" yaml:"constant,omitempty"`
	Sum      []string `json:"sum,omitempty" yaml:"sum,omitempty"`
	Divisor  float64  `json:"divisor,omitempty" yaml:"divisor,omitempty"`
	Floor    bool     `json:"floor,omitempty" yaml:"floor,omitempty"`
}

// SizeCost is how a positive size modifier discounts an attribute's cost
type SizeCost string

const (
	// SizeCostReduction folds the discount into the cost reduction, which
	// only lowers positive costs and rounds up
	SizeCostReduction SizeCost = ""
	// SizeCostScaled scales any cost, negative ones included, by the discount
	// and rounds to the nearest point
	SizeCostScaled SizeCost = "scaled"
)

// Def describes one attribute
type Def struct {
	ID                  string          `json:"id" yaml:"id"`
	Name                string          `json:"name" yaml:"name"`
	Type                Type            `json:"type" yaml:"type"`
	Base                Base            `json:"base" yaml:"base"`
	CostPerPoint        int             `json:"cost_per_point" yaml:"cost_per_point"`
	CostAdjPercentPerSM int             `json:"cost_adj_percent_per_sm,omitempty" yaml:"cost_adj_percent_per_sm,omitempty"`
	SizeCost            SizeCost        `json:"size_cost,omitempty" yaml:"size_cost,omitempty"`
	Thresholds          []PoolThreshold `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// ThresholdOp is an effect that applies while a pool sits in a threshold
type ThresholdOp string

const (
	HalveMove  ThresholdOp = "halve_move"
	HalveDodge ThresholdOp = "halve_dodge"
	HalveST    ThresholdOp = "halve_st"
)

// PoolThreshold is one row of a pool's state table
type PoolThreshold struct {
	State       string        `json:"state" yaml:"state"`
	Multiplier  int           `json:"multiplier" yaml:"multiplier"`
	Divisor     int           `json:"divisor" yaml:"divisor"`
	Addition    int           `json:"addition,omitempty" yaml:"addition,omitempty"`
	NonNegative bool          `json:"non_negative,omitempty" yaml:"non_negative,omitempty"`
	Ops         []ThresholdOp `json:"ops,omitempty" yaml:"ops,omitempty"`
}

// Threshold is the highest current value that still counts as this state.
// NonNegative thresholds never drop below zero.
func (p PoolThreshold) Threshold(maximum int) int {
	div := p.Divisor
	if div == 0 {
		div = 1
	}
	t := int(math.Ceil(float64(maximum*p.Multiplier)/float64(div))) + p.Addition
	if p.NonNegative && t < 0 {
		return 0
	}
	return t
}

// Has reports whether op is active in this state
func (p PoolThreshold) Has(op ThresholdOp) bool {
	for _, o := range p.Ops {
		if o == op {
			return true
		}
	}
	return false
}

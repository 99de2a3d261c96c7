package attribute

import (
	"math"
	"strings"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/bonus"
)

// Attribute is the per-character state of one attribute
type Attribute struct {
	ID            string  `json:"id" yaml:"id"`
	Adj           float64 `json:"adj" yaml:"adj"`
	Damage        int     `json:"damage,omitempty" yaml:"damage,omitempty"`
	Bonus         float64 `json:"-" yaml:"-"`
	CostReduction int     `json:"-" yaml:"-"`
}

// Set holds a character's attributes in definition order
type Set struct {
	defs  []Def
	index map[string]int
	attrs map[string]*Attribute
}

// NewSet creates a set with one zero-adjusted attribute per definition.
// Later definitions with a duplicate id are ignored.
func NewSet(defs []Def) *Set {
	s := &Set{
		index: make(map[string]int, len(defs)),
		attrs: make(map[string]*Attribute, len(defs)),
	}
	for _, d := range defs {
		id := strings.ToLower(d.ID)
		if _, dup := s.index[id]; dup || id == "" {
			continue
		}
		d.ID = id
		s.index[id] = len(s.defs)
		s.defs = append(s.defs, d)
		s.attrs[id] = &Attribute{ID: id}
	}
	return s
}

// Defs returns the definitions in order
func (s *Set) Defs() []Def {
	return s.defs
}

// IDs returns the attribute ids in definition order
func (s *Set) IDs() []string {
	ids := make([]string, len(s.defs))
	for i, d := range s.defs {
		ids[i] = d.ID
	}
	return ids
}

// Def returns the definition for id
func (s *Set) Def(id string) (Def, bool) {
	i, ok := s.index[strings.ToLower(id)]
	if !ok {
		return Def{}, false
	}
	return s.defs[i], true
}

// Attribute returns the state for id, or nil when undefined
func (s *Set) Attribute(id string) *Attribute {
	return s.attrs[strings.ToLower(id)]
}

// SetAdj changes an attribute's adjustment, reporting whether it changed
func (s *Set) SetAdj(id string, adj float64) bool {
	a := s.Attribute(id)
	if a == nil || a.Adj == adj {
		return false
	}
	a.Adj = adj
	return true
}

// SetDamage changes the damage taken by a pool, reporting whether it changed
func (s *Set) SetDamage(id string, damage int) bool {
	a := s.Attribute(id)
	if a == nil || a.Damage == damage {
		return false
	}
	a.Damage = damage
	return true
}

// BaseValue is the attribute's value before its own adjustment and bonus
func (s *Set) BaseValue(id string) float64 {
	id = strings.ToLower(id)
	if _, ok := s.index[id]; !ok {
		return UnresolvedDecimal
	}
	return s.baseValue(id, map[string]bool{id: true})
}

func (s *Set) baseValue(id string, visiting map[string]bool) float64 {
	def := s.defs[s.index[id]]
	v := def.Base.Constant
	for _, ref := range def.Base.Sum {
		ref = strings.ToLower(ref)
		if _, ok := s.index[ref]; !ok || visiting[ref] {
			continue
		}
		visiting[ref] = true
		v += s.value(ref, visiting)
		delete(visiting, ref)
	}
	if def.Base.Divisor != 0 {
		v /= def.Base.Divisor
	}
	if def.Base.Floor {
		v = math.Floor(v)
	}
	return v
}

func (s *Set) value(id string, visiting map[string]bool) float64 {
	def := s.defs[s.index[id]]
	a := s.attrs[id]
	v := s.baseValue(id, visiting) + a.Adj + a.Bonus
	if def.Type != Decimal {
		v = math.Trunc(v)
	}
	return v
}

// Value is base + adjustment + bonus; integer and pool attributes truncate.
// Unknown ids return UnresolvedDecimal.
func (s *Set) Value(id string) float64 {
	id = strings.ToLower(id)
	if _, ok := s.index[id]; !ok {
		return UnresolvedDecimal
	}
	return s.value(id, map[string]bool{id: true})
}

// IntValue is Value as an int. Unknown ids return Unresolved.
func (s *Set) IntValue(id string) int {
	v := s.Value(id)
	if v == UnresolvedDecimal {
		return Unresolved
	}
	return int(v)
}

// Maximum is the full value of a pool
func (s *Set) Maximum(id string) int {
	return s.IntValue(id)
}

// Current is the pool's maximum less damage; other attributes return their value
func (s *Set) Current(id string) int {
	v := s.IntValue(id)
	if v == Unresolved {
		return v
	}
	return v - s.Attribute(id).Damage
}

// CurrentThreshold is the first state, in table order, whose threshold the
// current value does not exceed
func (s *Set) CurrentThreshold(id string) *PoolThreshold {
	def, ok := s.Def(id)
	if !ok || len(def.Thresholds) == 0 {
		return nil
	}
	maximum := s.Maximum(id)
	current := s.Current(id)
	for i := range def.Thresholds {
		if current <= def.Thresholds[i].Threshold(maximum) {
			return &def.Thresholds[i]
		}
	}
	return nil
}

// IsThresholdOpMet reports whether any pool currently applies op
func (s *Set) IsThresholdOpMet(op ThresholdOp) bool {
	return s.CountThresholdOpMet(op) > 0
}

// CountThresholdOpMet counts the pools currently applying op
func (s *Set) CountThresholdOpMet(op ThresholdOp) int {
	count := 0
	for _, d := range s.defs {
		if t := s.CurrentThreshold(d.ID); t != nil && t.Has(op) {
			count++
		}
	}
	return count
}

// PointCost is the cost of the attribute's adjustment after cost reductions.
// Positive size modifiers add CostAdjPercentPerSM per point when
// sizeAdjApplies is set, applied the way the def's SizeCost says.
func (s *Set) PointCost(id string, sm int, sizeAdjApplies bool) int {
	def, ok := s.Def(id)
	if !ok {
		return 0
	}
	a := s.Attribute(id)
	cost := int(math.Floor(float64(def.CostPerPoint) * a.Adj))

	reduction := a.CostReduction
	if sizeAdjApplies && sm > 0 && def.CostAdjPercentPerSM > 0 {
		reduction += sm * def.CostAdjPercentPerSM
	}
	reduction = bonus.ClampCostReduction(reduction)
	if reduction == 0 {
		return cost
	}
	if def.SizeCost == SizeCostScaled {
		return scaleCost(cost, reduction)
	}
	if cost > 0 {
		cost = (99 + cost*(100-reduction)) / 100
	}
	return cost
}

// scaleCost applies a percentage discount to cost, rounding to the nearest
// point. An exact half rounds up for positive costs and toward zero for
// negative ones.
func scaleCost(cost, reduction int) int {
	scaled := cost * (100 - reduction)
	rem := scaled % 100
	scaled /= 100
	if rem*2 >= 100 {
		scaled++
	} else if rem*2 < -100 {
		scaled--
	}
	return scaled
}

package trait

import (
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
)

// ExtendedWeight is the weight of quantity copies of the row plus its
// contents, in unit. With forSkills set, rows flagged as ignored for skills
// contribute nothing of their own.
func (r *Row) ExtendedWeight(forSkills bool, unit measure.WeightUnit, simple bool) measure.Weight {
	total := measure.Weight{Unit: unit}
	if r.Quantity <= 0 {
		return total
	}
	if !(forSkills && r.WeightIgnoredForSkills) {
		total = total.Add(r.Weight, simple)
	}

	contained := measure.Weight{Unit: unit}
	for _, child := range r.Children {
		contained = contained.Add(child.ExtendedWeight(forSkills, unit, simple), simple)
	}
	if contained.Value > 0 {
		contained = r.reduceContained(contained, simple)
	}
	total = total.Add(contained, simple)
	return total.Mul(float64(r.Quantity))
}

func (r *Row) reduceContained(contained measure.Weight, simple bool) measure.Weight {
	percentage := 0
	fixed := measure.Weight{Unit: contained.Unit}
	for _, f := range r.containerFeatures() {
		cwr, ok := f.(feature.ContainedWeightReduction)
		if !ok {
			continue
		}
		percentage += cwr.Percentage
		fixed = fixed.Add(measure.Pounds(cwr.FixedPounds), simple)
	}
	if percentage >= 100 {
		return measure.Weight{Unit: contained.Unit}
	}
	if percentage > 0 {
		contained = contained.Mul(float64(100-percentage) / 100)
	}
	contained.Value -= fixed.Value
	if contained.Value < 0 {
		contained.Value = 0
	}
	return contained
}

func (r *Row) containerFeatures() []feature.Feature {
	features := append([]feature.Feature(nil), r.Features...)
	for _, m := range r.EnabledModifiers() {
		features = append(features, m.Features...)
	}
	return features
}

// ExtendedValue is the value of quantity copies of the row plus its contents
func (r *Row) ExtendedValue() float64 {
	if r.Quantity <= 0 {
		return 0
	}
	value := r.Value
	for _, child := range r.Children {
		value += child.ExtendedValue()
	}
	return value * float64(r.Quantity)
}

// Package points totals the character points spent across a sheet
package points

import (
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/attribute"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/trait"
)

// Budget is the point spend broken down by category
type Budget struct {
	Attributes    int `json:"attributes"`
	Race          int `json:"race"`
	Advantages    int `json:"advantages"`
	Disadvantages int `json:"disadvantages"`
	Quirks        int `json:"quirks"`
	Skills        int `json:"skills"`
	Spells        int `json:"spells"`
}

// Spent is the sum of every category
func (b Budget) Spent() int {
	return b.Attributes + b.Race + b.Advantages + b.Disadvantages + b.Quirks + b.Skills + b.Spells
}

// Unspent is what remains of total
func (b Budget) Unspent(total int) int {
	return total - b.Spent()
}

// SizeAdjustment reports whether the size modifier cost adjustment applies to
// an attribute id
type SizeAdjustment func(id string) bool

// Calculate walks the store and the attribute set
func Calculate(store *trait.Store, attrs *attribute.Set, sm int, sizeAdjApplies SizeAdjustment) Budget {
	var b Budget
	if attrs != nil {
		for _, id := range attrs.IDs() {
			applies := sizeAdjApplies == nil || sizeAdjApplies(id)
			b.Attributes += attrs.PointCost(id, sm, applies)
		}
	}
	if store == nil {
		return b
	}

	for _, row := range store.Rows(trait.Advantages) {
		b.addAdvantage(row)
	}
	trait.Leaves(store.Rows(trait.Skills), func(r *trait.Row) {
		b.Skills += r.Points
	})
	trait.Leaves(store.Rows(trait.Spells), func(r *trait.Row) {
		b.Spells += r.Points
	})
	return b
}

func (b *Budget) addAdvantage(r *trait.Row) {
	switch r.Container {
	case trait.Group:
		if r.Disabled {
			return
		}
		for _, child := range r.Children {
			b.addAdvantage(child)
		}
		return
	case trait.Race:
		b.Race += r.AdjustedPoints()
		return
	}

	pts := r.AdjustedPoints()
	switch {
	case pts > 0:
		b.Advantages += pts
	case pts < -1:
		b.Disadvantages += pts
	case pts == -1:
		b.Quirks--
	}
}

// Package encumbrance defines the carried-weight severity tiers
package encumbrance

import (
	"fmt"
)

// Level is an encumbrance tier; its ordinal is the move/dodge penalty magnitude
type Level int

const (
	None Level = iota
	Light
	Medium
	Heavy
	ExtraHeavy
)

var names = [...]string{"none", "light", "medium", "heavy", "extra_heavy"}

var multipliers = [...]int{1, 2, 3, 6, 10}

// All returns the levels in ascending severity
func All() []Level {
	return []Level{None, Light, Medium, Heavy, ExtraHeavy}
}

// Multiplier is the factor applied to basic lift for this level's maximum carry
func (l Level) Multiplier() int {
	if l < None || l > ExtraHeavy {
		return multipliers[ExtraHeavy]
	}
	return multipliers[l]
}

// Penalty is the negated ordinal
func (l Level) Penalty() int {
	return -int(l)
}

// String returns the snake_case key used in change ids
func (l Level) String() string {
	if l < None || l > ExtraHeavy {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return names[l]
}

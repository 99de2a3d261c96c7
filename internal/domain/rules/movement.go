package rules

import (
	"math"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/encumbrance"
)

// halve divides v by 2 for one active op and by 4 for two or more, rounding up
func halve(v, ops int) int {
	if ops <= 0 {
		return v
	}
	divisor := 2 * min(ops, 2)
	plusOne := v%divisor != 0
	v /= divisor
	if plusOne {
		v++
	}
	return v
}

// Move is ground move at enc. halveOps is the number of pools currently
// halving move.
func Move(basicMove, halveOps int, enc encumbrance.Level) int {
	initial := halve(max(basicMove, 0), halveOps)
	move := initial * (10 + 2*enc.Penalty()) / 10
	if move < 1 {
		if initial > 0 {
			return 1
		}
		return 0
	}
	return move
}

// Dodge is 3 + bonus + floor(basic speed) at enc, never below 1
func Dodge(basicSpeed float64, dodgeBonus, halveOps int, enc encumbrance.Level) int {
	dodge := halve(3+dodgeBonus+int(math.Floor(basicSpeed)), halveOps)
	return max(dodge+enc.Penalty(), 1)
}

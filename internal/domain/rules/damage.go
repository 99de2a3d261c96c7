package rules

import "github.com/KirkDiggler/gurps-sheet-engine/internal/dice"

// Thrust returns basic thrusting damage for st
func Thrust(st int, p DamageProgression) dice.Dice {
	switch p {
	case ThrustEqualsSwingMinus2:
		return Swing(st, BasicSet).Add(-2)
	case ReducedSwing:
		if st < 19 {
			return dice.New(1, -(6 - (st-1)/2))
		}
		adds := (st-10)/2 - 2
		if (st-10)%2 == 1 {
			adds++
		}
		return normalizeAdds(adds)
	case KnowingYourOwnStrength:
		if st < 12 {
			return dice.New(1, st-12)
		}
		return dice.New((st-7)/4, (st+1)%4-1)
	}

	if st < 19 {
		return dice.New(1, -(6 - (st-1)/2))
	}
	v := st - 11
	if st > 50 {
		v--
		if st > 79 {
			v -= 1 + (st-80)/5
		}
	}
	return dice.New(v/8+1, v%8/2-1)
}

// Swing returns basic swinging damage for st
func Swing(st int, p DamageProgression) dice.Dice {
	switch p {
	case ReducedSwing:
		if st < 10 {
			return dice.New(1, -(5 - (st-1)/2))
		}
		return normalizeAdds((st - 10) / 2)
	case KnowingYourOwnStrength:
		if st < 10 {
			return dice.New(1, st-10)
		}
		return dice.New((st-5)/4, (st-1)%4-1)
	}

	if st < 10 {
		return dice.New(1, -(5 - (st-1)/2))
	}
	if st < 28 {
		v := st - 9
		return dice.New(v/4+1, v%4-1)
	}
	v := st
	if st > 40 {
		v -= (st - 40) / 5
	}
	if st > 59 {
		v++
	}
	v += 9
	return dice.New(v/8+1, v%8/2-1)
}

// normalizeAdds turns a flat add into dice: every 7 adds is 2d, every 4 is
// 1d, and +3 becomes another die at -1
func normalizeAdds(adds int) dice.Dice {
	count := 1
	count += 2 * (adds / 7)
	adds %= 7
	count += adds / 4
	adds %= 4
	if adds == 3 {
		count++
		adds = -1
	}
	return dice.New(count, adds)
}

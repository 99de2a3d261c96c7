package trait

// Difficulty is a skill's difficulty rating
type Difficulty string

const (
	Easy     Difficulty = "E"
	Average  Difficulty = "A"
	Hard     Difficulty = "H"
	VeryHard Difficulty = "VH"
	Wildcard Difficulty = "W"
)

// BaseRelativeLevel is the relative level a single point buys
func (d Difficulty) BaseRelativeLevel() int {
	switch d {
	case Average:
		return -1
	case Hard:
		return -2
	case VeryHard, Wildcard:
		return -3
	default:
		return 0
	}
}

// SkillRelativeLevel is the level the row's points buy relative to its
// attribute, before bonuses. Rows without points report false. Rows with no
// difficulty return RelativeLevel unchanged.
func (r *Row) SkillRelativeLevel() (int, bool) {
	if r.IsContainer() || r.Points <= 0 {
		return 0, false
	}
	if r.Difficulty == "" {
		return r.RelativeLevel, true
	}

	points := r.Points
	if r.Difficulty == Wildcard {
		points /= 3
		if points <= 0 {
			return 0, false
		}
	}
	level := r.Difficulty.BaseRelativeLevel()
	switch {
	case points == 1:
	case points < 4:
		level++
	default:
		level += 1 + points/4
	}
	return level, true
}

// DamageBase is the strength-based damage a weapon attack builds on
type DamageBase string

const (
	ThrustDamage DamageBase = "thr"
	SwingDamage  DamageBase = "sw"
)

// Weapon is one attack mode of an equipment row
type Weapon struct {
	Usage          string
	Damage         DamageBase
	Modifier       int
	Skill          string
	Specialization string
}

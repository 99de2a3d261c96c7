package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSides is the die size used by every damage progression
const DefaultSides = 6

// Dice is an immutable dice expression such as 2d+1 or 3d6x2
type Dice struct {
	Count      int `json:"count" yaml:"count"`
	Sides      int `json:"sides" yaml:"sides"`
	Modifier   int `json:"modifier" yaml:"modifier"`
	Multiplier int `json:"multiplier" yaml:"multiplier"`
}

// New creates count d6 with the given per-roll modifier
func New(count, modifier int) Dice {
	return Dice{
		Count:      count,
		Sides:      DefaultSides,
		Modifier:   modifier,
		Multiplier: 1,
	}
}

// Add returns a copy with the modifier adjusted by delta
func (d Dice) Add(delta int) Dice {
	d.Modifier += delta
	return d
}

// String renders the expression the way character sheets print it; d6 is
// written as a bare "d"
func (d Dice) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(d.Count))
	sb.WriteByte('d')
	if d.Sides != DefaultSides && d.Sides != 0 {
		sb.WriteString(strconv.Itoa(d.Sides))
	}
	if d.Modifier > 0 {
		sb.WriteByte('+')
		sb.WriteString(strconv.Itoa(d.Modifier))
	} else if d.Modifier < 0 {
		sb.WriteString(strconv.Itoa(d.Modifier))
	}
	if d.Multiplier != 1 && d.Multiplier != 0 {
		sb.WriteByte('x')
		sb.WriteString(strconv.Itoa(d.Multiplier))
	}
	return sb.String()
}

// Parse reads expressions like "2d", "1d-1", "3d6+2" and "2dx3"
func Parse(text string) (Dice, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	idx := strings.IndexByte(s, 'd')
	if idx <= 0 {
		return Dice{}, fmt.Errorf("invalid dice string %q", text)
	}

	count, err := strconv.Atoi(s[:idx])
	if err != nil || count < 0 {
		return Dice{}, fmt.Errorf("invalid dice count in %q", text)
	}
	d := Dice{Count: count, Sides: DefaultSides, Multiplier: 1}
	rest := s[idx+1:]

	if x := strings.IndexByte(rest, 'x'); x >= 0 {
		mult, err := strconv.Atoi(rest[x+1:])
		if err != nil {
			return Dice{}, fmt.Errorf("invalid dice multiplier in %q", text)
		}
		d.Multiplier = mult
		rest = rest[:x]
	}

	if m := strings.IndexAny(rest, "+-"); m >= 0 {
		mod, err := strconv.Atoi(rest[m:])
		if err != nil {
			return Dice{}, fmt.Errorf("invalid dice modifier in %q", text)
		}
		d.Modifier = mod
		rest = rest[:m]
	}

	if rest != "" {
		sides, err := strconv.Atoi(rest)
		if err != nil || sides < 1 {
			return Dice{}, fmt.Errorf("invalid dice sides in %q", text)
		}
		d.Sides = sides
	}

	return d, nil
}

// RollResult is the outcome of rolling a Dice expression
type RollResult struct {
	Total  int
	Rolls  []int
	Bonus  int
	Count  int
	Sides  int
	Scaled int
}

// Roll rolls d with the supplied roller. GURPS damage never drops below zero
// before the multiplier is applied.
func Roll(roller Roller, d Dice) (*RollResult, error) {
	if roller == nil {
		return nil, errors.New("roller is required")
	}
	if d.Count == 0 {
		total := max(d.Modifier, 0)
		return &RollResult{Total: total, Bonus: d.Modifier, Scaled: total * multiplier(d)}, nil
	}

	sides := d.Sides
	if sides == 0 {
		sides = DefaultSides
	}
	faces, err := roller.Faces(d.Count, sides)
	if err != nil {
		return nil, fmt.Errorf("failed to roll %s: %w", d, err)
	}
	if len(faces) != d.Count {
		return nil, fmt.Errorf("failed to roll %s: got %d faces", d, len(faces))
	}

	total := d.Modifier
	for _, f := range faces {
		if f < 1 || f > sides {
			return nil, fmt.Errorf("failed to roll %s: face %d out of range", d, f)
		}
		total += f
	}
	total = max(total, 0)
	return &RollResult{
		Total:  total,
		Rolls:  faces,
		Bonus:  d.Modifier,
		Count:  d.Count,
		Sides:  sides,
		Scaled: total * multiplier(d),
	}, nil
}

func multiplier(d Dice) int {
	if d.Multiplier == 0 {
		return 1
	}
	return d.Multiplier
}

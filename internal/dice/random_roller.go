package dice

import (
	"errors"
	"math/rand"
)

type randomRoller struct{}

// NewRandomRoller creates a Roller backed by math/rand
func NewRandomRoller() Roller {
	return &randomRoller{}
}

func (r *randomRoller) Faces(count, sides int) ([]int, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	faces := make([]int, count)
	for i := range faces {
		faces[i] = rand.Intn(sides) + 1
	}
	return faces, nil
}

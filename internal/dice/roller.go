package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

// Roller produces raw die faces. Modifiers, the zero floor and multipliers
// are applied by Roll.
type Roller interface {
	// Faces rolls count dice of the given sides, each in [1, sides]
	Faces(count, sides int) ([]int, error)
}

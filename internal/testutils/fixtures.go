package testutils

import (
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/criteria"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/sheetdoc"
)

// Pounds returns a weight pointer for document fixtures
func Pounds(v float64) *measure.Weight {
	w := measure.Pounds(v)
	return &w
}

// CreateTestDocument creates a bare sheet document with default attributes
func CreateTestDocument(id, ownerID, name string) *sheetdoc.Document {
	return &sheetdoc.Document{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		TotalPoints: 150,
	}
}

// CreateTestFighter creates a 150 point fighter with a lifting bonus, a
// broadsword skill and weapon, and a disabled shield row for toggle tests
func CreateTestFighter(id, ownerID string) *sheetdoc.Document {
	doc := CreateTestDocument(id, ownerID, "Sir Corwin")
	doc.Attributes = []sheetdoc.AttributeData{
		{ID: "st", Adj: 3},
		{ID: "dx", Adj: 2},
	}
	doc.Advantages = []sheetdoc.RowData{
		{
			ID:         "adv-combat-reflexes",
			Type:       "advantage",
			Name:       "Combat Reflexes",
			BasePoints: 15,
			Features: []sheetdoc.FeatureData{
				{Type: "attribute_bonus", Attribute: "dodge", Amount: 1},
			},
		},
		{
			ID:             "adv-lifting-st",
			Type:           "advantage",
			Name:           "Lifting ST",
			Leveled:        true,
			Levels:         2,
			PointsPerLevel: 3,
			Features: []sheetdoc.FeatureData{
				{Type: "attribute_bonus", Attribute: "st", Limitation: "lifting_only", PerLevel: 1},
			},
		},
	}
	doc.Skills = []sheetdoc.RowData{
		{
			ID:         "sk-broadsword",
			Type:       "skill",
			Name:       "Broadsword",
			Attribute:  "dx",
			Difficulty: "A",
			Points:     8,
		},
	}
	doc.CarriedEquipment = []sheetdoc.RowData{
		{
			ID:       "eq-broadsword",
			Type:     "equipment",
			Name:     "Broadsword",
			Equipped: true,
			Quantity: 1,
			Value:    500,
			Weight:   Pounds(3),
			Weapons: []sheetdoc.WeaponData{
				{Usage: "Swung", Damage: "sw", Modifier: 1, Skill: "Broadsword"},
				{Usage: "Thrust", Damage: "thr", Modifier: 1, Skill: "Broadsword"},
			},
			Features: []sheetdoc.FeatureData{
				{
					Type:          "weapon_bonus",
					Name:          criteria.String{Compare: criteria.Is, Qualifier: "Broadsword"},
					RelativeLevel: criteria.Numeric{Compare: criteria.AtLeast, Qualifier: 2},
					Amount:        1,
				},
			},
		},
		{
			ID:       "eq-rations",
			Type:     "equipment",
			Name:     "Rations",
			Equipped: true,
			Quantity: 4,
			Value:    2,
			Weight:   Pounds(0.5),
		},
		{
			ID:       "eq-shield",
			Type:     "equipment",
			Name:     "Medium Shield",
			Quantity: 1,
			Value:    60,
			Weight:   Pounds(15),
			Features: []sheetdoc.FeatureData{
				{Type: "attribute_bonus", Attribute: "block", Amount: 2},
			},
		},
	}
	return doc
}

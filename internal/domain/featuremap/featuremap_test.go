package featuremap

import (
	"testing"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/criteria"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/trait"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stBonus(amount, perLevel float64) feature.Feature {
	return feature.AttributeBonus{Attribute: feature.ST, Amount: feature.LeveledAmount{Amount: amount, PerLevel: perLevel}}
}

func newStore(t *testing.T) *trait.Store {
	t.Helper()
	return trait.NewStore(&trait.StoreConfig{UUIDGenerator: uuid.NewSequenceGenerator("id")})
}

func TestBuild_Advantages(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Add(trait.Advantages, "", &trait.Row{
		ID:       "lifting",
		Type:     trait.Advantage,
		Name:     "Lifting ST",
		Leveled:  true,
		Levels:   3,
		Features: []feature.Feature{stBonus(0, 1)},
		Modifiers: []*trait.Modifier{
			{ID: "on", Levels: 2, Features: []feature.Feature{stBonus(0, 1)}},
			{ID: "off", Disabled: true, Features: []feature.Feature{stBonus(10, 0)}},
		},
	}))
	require.NoError(t, store.Add(trait.Advantages, "", &trait.Row{
		ID:       "disabled",
		Type:     trait.Advantage,
		Disabled: true,
		Features: []feature.Feature{stBonus(5, 0)},
	}))

	m, changed := Build(store, nil)
	assert.True(t, changed)

	entries := m.Lookup("ATTR.ST")
	require.Len(t, entries, 2)
	assert.Equal(t, 3.0, entries[0].Level)
	assert.Equal(t, "lifting", entries[0].Source.RowID)
	assert.Empty(t, entries[0].Source.ModifierID)
	assert.Equal(t, 2.0, entries[1].Level)
	assert.Equal(t, "on", entries[1].Source.ModifierID)
}

func TestBuild_DisabledContainerExcludesSubtree(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Add(trait.Advantages, "", &trait.Row{
		ID:        "grp",
		Type:      trait.Advantage,
		Container: trait.Group,
		Disabled:  true,
		Children: []*trait.Row{
			{ID: "child", Type: trait.Advantage, Features: []feature.Feature{stBonus(1, 0)}},
		},
	}))

	m, _ := Build(store, nil)
	assert.Empty(t, m.Lookup("attr.st"))
	assert.Zero(t, m.Len())
}

func TestBuild_SelfControlRollBonus(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Add(trait.Advantages, "", &trait.Row{
		ID:             "greed",
		Type:           trait.Advantage,
		Name:           "Greed",
		SelfControl:    trait.CR12,
		SelfControlAdj: trait.MajorCostOfLivingIncrease,
	}))

	m, _ := Build(store, nil)
	entries := m.Lookup("skill.name/merchant")
	require.Len(t, entries, 1)
	assert.Equal(t, 0.0, entries[0].Level)
	assert.Equal(t, "Greed", entries[0].Source.RowName)
}

func TestBuild_Equipment(t *testing.T) {
	store := newStore(t)
	dr := feature.DRBonus{Location: "torso", Amount: feature.Flat(2)}
	require.NoError(t, store.Add(trait.CarriedEquipment, "", &trait.Row{
		ID:        "pack",
		Type:      trait.Equipment,
		Container: trait.Group,
		Quantity:  1,
		Children: []*trait.Row{
			{ID: "vest", Type: trait.Equipment, Equipped: true, Quantity: 1, Features: []feature.Feature{dr},
				Modifiers: []*trait.Modifier{{ID: "fine", Levels: 4, Features: []feature.Feature{dr}}}},
			{ID: "spare", Type: trait.Equipment, Equipped: true, Quantity: 0, Features: []feature.Feature{dr}},
		},
	}))
	require.NoError(t, store.Add(trait.OtherEquipment, "", &trait.Row{
		ID: "stored", Type: trait.Equipment, Equipped: true, Quantity: 1, Features: []feature.Feature{dr},
	}))

	m, _ := Build(store, nil)
	entries := m.Lookup("hit_location.torso")
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "vest", e.Source.RowID)
		assert.Equal(t, 0.0, e.Level)
	}
}

func TestBuild_SkillsAndSpells(t *testing.T) {
	store := newStore(t)
	bonus := feature.SkillBonus{Name: criteria.IsString("Stealth"), Amount: feature.LeveledAmount{Amount: 1, PerLevel: 1}}
	require.NoError(t, store.Add(trait.Skills, "", &trait.Row{ID: "tech", Type: trait.Technique, Features: []feature.Feature{bonus}}))
	require.NoError(t, store.Add(trait.Spells, "", &trait.Row{ID: "spell", Type: trait.Spell, Features: []feature.Feature{bonus}}))

	m, _ := Build(store, nil)
	entries := m.Lookup("skill.name/stealth")
	require.Len(t, entries, 2)
	assert.Equal(t, "tech", entries[0].Source.RowID)
	assert.Equal(t, "spell", entries[1].Source.RowID)
	assert.Equal(t, []string{"skill.name/stealth"}, m.Keys())
}

func TestBuild_LevelChangeAcrossPasses(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Add(trait.Advantages, "", &trait.Row{
		ID: "a", Type: trait.Advantage, Leveled: true, Levels: 2, Features: []feature.Feature{stBonus(0, 1)},
	}))
	require.NoError(t, store.Add(trait.Advantages, "", &trait.Row{
		ID: "b", Type: trait.Advantage, Leveled: true, Levels: 5, Features: []feature.Feature{stBonus(0, 1)},
	}))

	first, changed := Build(store, nil)
	assert.True(t, changed)

	second, changed := Build(store, first)
	assert.False(t, changed, "rebuild without mutation reports no level change")

	require.NoError(t, store.SetLevels("a", 4))
	third, changed := Build(store, second)
	assert.True(t, changed)

	entries := third.Lookup("attr.st")
	require.Len(t, entries, 2)
	assert.Equal(t, 4.0, entries[0].Level)
	assert.Equal(t, 5.0, entries[1].Level, "levels never leak between rows")
}

func TestMap_NilSafe(t *testing.T) {
	var m *Map
	assert.Nil(t, m.Lookup("attr.st"))
	assert.Nil(t, m.Keys())
	assert.Zero(t, m.Len())

	empty, changed := Build(nil, nil)
	assert.False(t, changed)
	assert.Zero(t, empty.Len())
}

package sheet_test

import (
	"errors"
	"testing"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/dice"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/criteria"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/encumbrance"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/rules"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/sheet"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/trait"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/events"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/uuid"
	"github.com/stretchr/testify/suite"
)

type fakeRecorder struct {
	passes  []int
	changes int
}

func (f *fakeRecorder) PassCompleted(iterations int) { f.passes = append(f.passes, iterations) }
func (f *fakeRecorder) ChangesEmitted(n int)         { f.changes += n }

type SheetTestSuite struct {
	suite.Suite
	sheet    *sheet.Sheet
	recorder *fakeRecorder
}

func (s *SheetTestSuite) SetupTest() {
	s.recorder = &fakeRecorder{}
	s.sheet = sheet.New(&sheet.Config{
		ID:          "sheet-1",
		TotalPoints: 150,
		Settings:    rules.DefaultSettings(),
		Store:       trait.NewStore(&trait.StoreConfig{UUIDGenerator: uuid.NewSequenceGenerator("row")}),
		Recorder:    s.recorder,
	})
}

func (s *SheetTestSuite) addStrong() {
	s.Require().NoError(s.sheet.Store().Add(trait.Advantages, "", &trait.Row{
		ID:         "strong",
		Type:       trait.Advantage,
		Name:       "Strong",
		BasePoints: 10,
		Features: []feature.Feature{
			feature.AttributeBonus{Attribute: feature.ST, Amount: feature.LeveledAmount{Amount: 2}},
		},
	}))
}

func (s *SheetTestSuite) addPack(weight float64) {
	s.Require().NoError(s.sheet.Store().Add(trait.CarriedEquipment, "", &trait.Row{
		ID:       "pack",
		Type:     trait.Equipment,
		Name:     "Pack",
		Equipped: true,
		Quantity: 1,
		Weight:   measure.Pounds(weight),
	}))
}

func byID(changes []events.Change) map[string]events.Change {
	out := make(map[string]events.Change, len(changes))
	for _, c := range changes {
		out[c.ID] = c
	}
	return out
}

func (s *SheetTestSuite) TestDefaults() {
	s.Equal(sheet.Clean, s.sheet.State())
	s.Equal(10.0, s.sheet.AttributeValue(feature.ST))
	s.Equal(5.0, s.sheet.AttributeValue(feature.BasicSpeed))
	s.Equal(dice.New(1, -2), s.sheet.Thrust())
	s.Equal(dice.New(1, 0), s.sheet.Swing())
	s.Equal(measure.Pounds(20), s.sheet.BasicLift())
	s.Equal(measure.Pounds(40), s.sheet.OneHandedLift())
	s.Equal(measure.Pounds(20), s.sheet.MaximumCarry(encumbrance.None))
	s.Equal(measure.Pounds(40), s.sheet.MaximumCarry(encumbrance.Light))
	s.Equal(5, s.sheet.Move(encumbrance.None))
	s.Equal(4, s.sheet.Move(encumbrance.Light))
	s.Equal(8, s.sheet.Dodge(encumbrance.None))
	s.Equal(7, s.sheet.Dodge(encumbrance.Light))
	s.Equal(0, s.sheet.SpentPoints())
	s.Equal(150, s.sheet.UnspentPoints())
	s.Empty(s.recorder.passes, "the initial pass is not a recalculation")
}

func (s *SheetTestSuite) TestMutationEmitsOnlyChangedValues() {
	var seen []events.Change
	s.sheet.Bus().Subscribe(events.Wildcard, &events.ListenerFunc{Name: "ui", Callback: func(c events.Change) error {
		seen = append(seen, c)
		return nil
	}})

	s.addStrong()
	s.Equal(sheet.Dirty, s.sheet.State())

	changes := s.sheet.Recalculate()
	s.Equal(sheet.Clean, s.sheet.State())
	s.Equal(changes, seen)

	got := byID(changes)
	s.Equal(events.Change{ID: "attr.st", Old: 10, New: 12}, got["attr.st"])
	s.Equal(events.Change{ID: "attr.hp.current", Old: 10, New: 12}, got["attr.hp.current"])
	s.Equal(events.Change{ID: "damage.thrust", Old: "1d-2", New: "1d-1"}, got["damage.thrust"])
	s.Equal(events.Change{ID: "damage.swing", Old: "1d", New: "1d+2"}, got["damage.swing"])
	s.Equal(events.Change{ID: "points.advantages", Old: 0, New: 10}, got["points.advantages"])
	s.Equal(events.Change{ID: "points.unspent", Old: 150, New: 140}, got["points.unspent"])
	s.Contains(got, "lift.basic")
	s.NotContains(got, "attr.dx")
	s.NotContains(got, "encumbrance")

	s.Equal([]int{1}, s.recorder.passes)
	s.Equal(len(changes), s.recorder.changes)
}

func (s *SheetTestSuite) TestRecalculateIsIdempotent() {
	s.addStrong()
	s.NotEmpty(s.sheet.Recalculate())

	calls := 0
	s.sheet.Bus().Subscribe(events.Wildcard, &events.ListenerFunc{Name: "ui", Callback: func(events.Change) error {
		calls++
		return nil
	}})

	s.Nil(s.sheet.Recalculate(), "clean sheets do not recalculate")
	s.sheet.MarkDirty()
	s.Empty(s.sheet.Recalculate())
	s.Zero(calls)
}

func (s *SheetTestSuite) TestQueriesRecalculateWhenDirty() {
	s.addStrong()
	s.Equal(12.0, s.sheet.AttributeValue(feature.ST))
	s.Equal(sheet.Clean, s.sheet.State())
}

func (s *SheetTestSuite) TestCarriedWeightAndWealth() {
	store := s.sheet.Store()
	s.addPack(30)
	s.Require().NoError(store.Add(trait.CarriedEquipment, "", &trait.Row{
		ID:                     "armor",
		Type:                   trait.Equipment,
		Equipped:               true,
		Quantity:               1,
		Weight:                 measure.Pounds(20),
		WeightIgnoredForSkills: true,
		Value:                  100,
	}))
	s.Require().NoError(store.Add(trait.OtherEquipment, "", &trait.Row{
		ID:       "chest",
		Type:     trait.Equipment,
		Quantity: 2,
		Value:    25,
	}))

	s.Equal(50.0, s.sheet.WeightCarried(false).Value)
	s.Equal(30.0, s.sheet.WeightCarried(true).Value)
	s.Equal(100.0, s.sheet.WealthCarried())
	s.Equal(50.0, s.sheet.WealthNotCarried())
	s.Equal(encumbrance.Medium, s.sheet.EncumbranceLevel(false))
	s.Equal(encumbrance.Light, s.sheet.EncumbranceLevel(true))
}

func (s *SheetTestSuite) TestEncumbranceBoundaryIsInclusive() {
	s.addPack(60)
	s.Equal(encumbrance.Medium, s.sheet.EncumbranceLevel(false))
}

func (s *SheetTestSuite) TestPoolThresholds() {
	s.sheet.SetDamage(feature.HP, 7)
	s.Equal(3, s.sheet.AttributeCurrent(feature.HP))
	s.Equal("Reeling", s.sheet.AttributeThreshold(feature.HP).State)
	s.Equal(3, s.sheet.Move(encumbrance.None))
	s.Equal(4, s.sheet.Dodge(encumbrance.None))
	s.Equal(measure.Pounds(20), s.sheet.BasicLift())

	s.sheet.SetDamage(feature.HP, 0)
	s.sheet.SetDamage(feature.FP, 8)
	s.Equal("Tired", s.sheet.AttributeThreshold(feature.FP).State)
	s.Equal(measure.Pounds(5), s.sheet.BasicLift())
}

func (s *SheetTestSuite) TestListenerMutationsAreCoalesced() {
	bumped := false
	s.sheet.Bus().Subscribe("encumbrance", &events.ListenerFunc{Name: "auto-st", Callback: func(events.Change) error {
		if !bumped {
			bumped = true
			s.sheet.SetAttributeAdj(feature.ST, 5)
		}
		return nil
	}})

	s.addPack(30)
	changes := s.sheet.Recalculate()

	var enc []events.Change
	for _, c := range changes {
		if c.ID == "encumbrance" {
			enc = append(enc, c)
		}
	}
	s.Equal([]events.Change{
		{ID: "encumbrance", Old: "none", New: "light"},
		{ID: "encumbrance", Old: "light", New: "none"},
	}, enc)
	s.Equal([]int{2}, s.recorder.passes)
	s.Equal(sheet.Clean, s.sheet.State())
	s.Equal(15.0, s.sheet.AttributeValue(feature.ST))
}

func (s *SheetTestSuite) TestRunawayListenerHitsPassCap() {
	n := 0
	s.sheet.Bus().Subscribe("attr.st", &events.ListenerFunc{Name: "runaway", Callback: func(events.Change) error {
		n++
		s.sheet.SetAttributeAdj(feature.ST, float64(n))
		return nil
	}})

	s.sheet.SetAttributeAdj(feature.ST, 20)
	s.sheet.Recalculate()
	s.Equal([]int{sheet.MaxPassIterations}, s.recorder.passes)
	s.Equal(sheet.Dirty, s.sheet.State())

	s.sheet.Bus().Unsubscribe("attr.st", "runaway")
	s.sheet.Recalculate()
	s.Equal(sheet.Clean, s.sheet.State())
}

func (s *SheetTestSuite) TestListenerErrorsDoNotAbortPass() {
	s.sheet.Bus().Subscribe(events.Wildcard, &events.ListenerFunc{Name: "broken", Callback: func(events.Change) error {
		return errors.New("render failed")
	}})

	s.addStrong()
	s.NotEmpty(s.sheet.Recalculate())
	s.Equal(sheet.Clean, s.sheet.State())
}

func (s *SheetTestSuite) TestSettingsAndProfile() {
	s.sheet.SetAttributeAdj(feature.ST, 2)
	s.sheet.SetProfile(sheet.Profile{SizeModifier: 1})
	s.Equal(18, s.sheet.Points().Attributes, "size modifier discounts ST")

	s.sheet.SetSettings(rules.Settings{DamageProgression: rules.KnowingYourOwnStrength})
	s.Equal(20, s.sheet.Points().Attributes, "no ST size discount under knowing your own strength")
	s.Equal(measure.Pound, s.sheet.Settings().WeightUnits)
}

func (s *SheetTestSuite) TestHitPointSizeCost() {
	s.sheet.SetAttributeAdj(feature.HP, 5)
	s.sheet.SetProfile(sheet.Profile{SizeModifier: 2})
	s.Equal(8, s.sheet.AttributePoints(feature.HP))

	s.sheet.SetAttributeAdj(feature.HP, -2)
	s.Equal(-3, s.sheet.AttributePoints(feature.HP))

	settings := rules.DefaultSettings()
	settings.DamageProgression = rules.KnowingYourOwnStrength
	s.sheet.SetSettings(settings)
	s.sheet.SetAttributeAdj(feature.HP, 5)
	s.Equal(10, s.sheet.AttributePoints(feature.HP), "no HP size discount under knowing your own strength")
	s.Equal(10, s.sheet.Points().Attributes)
}

func (s *SheetTestSuite) TestSnapshotIsACopy() {
	snap := s.sheet.Snapshot()
	s.Equal(10, snap["attr.st"])
	s.Equal(5.0, snap["attr.basic_speed"])
	s.Equal("none", snap["encumbrance"])
	snap["attr.st"] = 99
	s.Equal(10, s.sheet.Snapshot()["attr.st"])
}

func (s *SheetTestSuite) TestReactionsAndDR() {
	s.Require().NoError(s.sheet.Store().Add(trait.Advantages, "", &trait.Row{
		Type: trait.Advantage,
		Name: "Appearance",
		Features: []feature.Feature{
			feature.ReactionBonus{Situation: "from others", Amount: feature.LeveledAmount{Amount: 2}},
			feature.DRBonus{Location: "torso", Amount: feature.LeveledAmount{Amount: 3}},
		},
	}))

	reactions := s.sheet.Reactions()
	s.Require().Len(reactions, 1)
	s.Equal(2, reactions[0].Amount)
	s.Equal(map[string]int{"all": 3}, s.sheet.DR("torso"))
}

func (s *SheetTestSuite) addSkill(row *trait.Row) *trait.Row {
	row.Type = trait.Skill
	s.Require().NoError(s.sheet.Store().Add(trait.Skills, "", row))
	return row
}

func (s *SheetTestSuite) TestSkillLevel() {
	s.sheet.SetAttributeAdj(feature.DX, 2)
	s.sheet.SetAttributeAdj(feature.IQ, 1)

	tests := []struct {
		name  string
		row   *trait.Row
		level int
		rsl   int
		ok    bool
	}{
		{name: "average at 4 points", row: &trait.Row{Name: "Broadsword", Difficulty: trait.Average, Points: 4}, level: 13, rsl: 1, ok: true},
		{name: "easy at 1 point", row: &trait.Row{Name: "Climbing", Difficulty: trait.Easy, Points: 1}, level: 12, rsl: 0, ok: true},
		{name: "hard at 2 points", row: &trait.Row{Name: "Tactics", Attribute: feature.IQ, Difficulty: trait.Hard, Points: 2}, level: 10, rsl: -1, ok: true},
		{name: "very hard at 12 points", row: &trait.Row{Name: "Physics", Attribute: feature.IQ, Difficulty: trait.VeryHard, Points: 12}, level: 12, rsl: 1, ok: true},
		{name: "wildcard at 6 points", row: &trait.Row{Name: "Sword!", Difficulty: trait.Wildcard, Points: 6}, level: 10, rsl: -2, ok: true},
		{name: "wildcard under 3 points", row: &trait.Row{Name: "Gun!", Difficulty: trait.Wildcard, Points: 2}},
		{name: "stored relative level", row: &trait.Row{Name: "Riding", Points: 2, RelativeLevel: 3}, level: 15, rsl: 3, ok: true},
		{name: "no points", row: &trait.Row{Name: "Swimming", Difficulty: trait.Easy}},
		{name: "unknown attribute", row: &trait.Row{Name: "Sorcery", Attribute: "mana", Difficulty: trait.Hard, Points: 4}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			row := s.addSkill(tt.row)
			got, ok := s.sheet.SkillLevel(row)
			s.Equal(tt.ok, ok)
			s.Equal(tt.level, got.Level)
			s.Equal(tt.rsl, got.RelativeLevel)
		})
	}
	s.Len(s.sheet.SkillLevels(), 6)
}

func (s *SheetTestSuite) TestSkillLevel_EncumbranceAndBonuses() {
	s.Require().NoError(s.sheet.Store().Add(trait.Advantages, "", &trait.Row{
		Type:     trait.Advantage,
		Name:     "Natural Climber",
		Features: []feature.Feature{feature.SkillBonus{Name: criteria.IsString("Climbing"), Amount: feature.Flat(1)}},
	}))
	climbing := s.addSkill(&trait.Row{Name: "Climbing", Difficulty: trait.Average, Points: 2, EncPenaltyMult: 1})

	got, ok := s.sheet.SkillLevel(climbing)
	s.Require().True(ok)
	s.Equal(11, got.Level)
	s.Equal(1, got.RelativeLevel)
	s.Equal(11, s.sheet.Snapshot()["skill."+climbing.ID+".level"])

	// 50 lb against a 20 lb basic lift is medium encumbrance
	s.addPack(50)
	got, _ = s.sheet.SkillLevel(climbing)
	s.Equal(9, got.Level)
	s.Equal(1, got.RelativeLevel)
}

func (s *SheetTestSuite) TestWeapons() {
	s.sheet.SetAttributeAdj(feature.ST, 3)
	s.addSkill(&trait.Row{Name: "Broadsword", Difficulty: trait.Average, Points: 8})
	s.Require().NoError(s.sheet.Store().Add(trait.Advantages, "", &trait.Row{
		Type: trait.Advantage,
		Name: "Weapon Master",
		Features: []feature.Feature{feature.WeaponBonus{
			Name:          criteria.IsString("Broadsword"),
			RelativeLevel: criteria.Numeric{Compare: criteria.AtLeast, Qualifier: 2},
			PerDie:        true,
			Amount:        feature.LeveledAmount{PerLevel: 1},
		}},
	}))
	s.Require().NoError(s.sheet.Store().Add(trait.CarriedEquipment, "", &trait.Row{
		ID:       "sword",
		Type:     trait.Equipment,
		Name:     "Fine Broadsword",
		Equipped: true,
		Quantity: 1,
		Weapons: []trait.Weapon{
			{Usage: "Swung", Damage: trait.SwingDamage, Modifier: 1, Skill: "Broadsword"},
			{Usage: "Thrust", Damage: trait.ThrustDamage, Modifier: 1, Skill: "Broadsword"},
		},
		Features: []feature.Feature{
			feature.WeaponBonus{Selection: feature.WithName, Name: criteria.IsString("Fine Broadsword"), Specialization: criteria.IsString("swung"), Amount: feature.Flat(1)},
		},
	}))

	weapons := s.sheet.Weapons()
	s.Require().Len(weapons, 2)

	// swing 2d-1, +1 weapon, +2 per die, +1 named
	s.Equal(dice.New(2, 3), weapons[0].Damage)
	s.Equal([]string{"Weapon Master", "Fine Broadsword"}, weapons[0].Sources)
	// thrust 1d, +1 weapon, +1 per die
	s.Equal(dice.New(1, 2), weapons[1].Damage)
	s.Equal(1, weapons[1].Index)
	s.Equal("1d+2", s.sheet.Snapshot()["weapon.sword.1.damage"])

	s.Require().NoError(s.sheet.Store().SetEquipped("sword", false))
	s.Empty(s.sheet.Weapons())
}

func TestSheetSuite(t *testing.T) {
	suite.Run(t, new(SheetTestSuite))
}

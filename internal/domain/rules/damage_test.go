package rules

import (
	"testing"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type damageRow struct {
	st     int
	thrust string
	swing  string
}

// Boundary tables reproduce the integer arithmetic of each progression
var damageTables = map[DamageProgression][]damageRow{
	BasicSet: {
		{1, "1d-6", "1d-5"},
		{9, "1d-2", "1d-1"},
		{10, "1d-2", "1d"},
		{11, "1d-1", "1d+1"},
		{12, "1d-1", "1d+2"},
		{13, "1d", "2d-1"},
		{19, "2d-1", "3d+1"},
		{20, "2d-1", "3d+2"},
		{27, "3d-1", "5d+1"},
		{28, "3d-1", "5d+1"},
		{40, "4d+1", "7d-1"},
		{41, "4d+2", "7d"},
		{50, "5d+2", "8d-1"},
		{51, "5d+2", "8d"},
		{59, "6d+2", "9d-1"},
		{60, "7d-1", "9d"},
		{79, "9d", "11d"},
		{80, "9d", "11d"},
		{81, "9d+1", "11d"},
		{100, "11d", "13d"},
	},
	ReducedSwing: {
		{1, "1d-6", "1d-5"},
		{9, "1d-2", "1d-1"},
		{10, "1d-2", "1d"},
		{11, "1d-1", "1d"},
		{12, "1d-1", "1d+1"},
		{13, "1d", "1d+1"},
		{19, "2d-1", "2d"},
		{20, "2d-1", "2d+1"},
		{27, "3d", "3d+1"},
		{28, "3d", "3d+2"},
		{40, "4d+2", "5d+1"},
		{41, "5d", "5d+1"},
		{50, "6d", "6d+2"},
		{51, "6d+1", "6d+2"},
		{59, "7d+2", "8d-1"},
		{60, "7d+2", "8d"},
		{79, "10d+1", "10d+2"},
		{80, "10d+1", "11d"},
		{81, "10d+2", "11d"},
		{100, "13d+1", "14d-1"},
	},
	KnowingYourOwnStrength: {
		{1, "1d-11", "1d-9"},
		{9, "1d-3", "1d-1"},
		{10, "1d-2", "1d"},
		{11, "1d-1", "1d+1"},
		{12, "1d", "1d+2"},
		{13, "1d+1", "2d-1"},
		{19, "3d-1", "3d+1"},
		{20, "3d", "3d+2"},
		{27, "5d-1", "5d+1"},
		{28, "5d", "5d+2"},
		{40, "8d", "8d+2"},
		{41, "8d+1", "9d-1"},
		{50, "10d+2", "11d"},
		{51, "11d-1", "11d+1"},
		{59, "13d-1", "13d+1"},
		{60, "13d", "13d+2"},
		{79, "18d-1", "18d+1"},
		{80, "18d", "18d+2"},
		{81, "18d+1", "19d-1"},
		{100, "23d", "23d+2"},
	},
	ThrustEqualsSwingMinus2: {
		{1, "1d-7", "1d-5"},
		{9, "1d-3", "1d-1"},
		{10, "1d-2", "1d"},
		{11, "1d-1", "1d+1"},
		{12, "1d", "1d+2"},
		{13, "2d-3", "2d-1"},
		{19, "3d-1", "3d+1"},
		{20, "3d", "3d+2"},
		{27, "5d-1", "5d+1"},
		{28, "5d-1", "5d+1"},
		{40, "7d-3", "7d-1"},
		{41, "7d-2", "7d"},
		{50, "8d-3", "8d-1"},
		{51, "8d-2", "8d"},
		{59, "9d-3", "9d-1"},
		{60, "9d-2", "9d"},
		{79, "11d-2", "11d"},
		{80, "11d-2", "11d"},
		{81, "11d-2", "11d"},
		{100, "13d-2", "13d"},
	},
}

func TestDamageTables(t *testing.T) {
	for progression, rows := range damageTables {
		t.Run(string(progression), func(t *testing.T) {
			for _, row := range rows {
				assert.Equal(t, row.thrust, Thrust(row.st, progression).String(), "thrust at ST %d", row.st)
				assert.Equal(t, row.swing, Swing(row.st, progression).String(), "swing at ST %d", row.st)
			}
		})
	}
}

func TestDamage_BasicSetScenarios(t *testing.T) {
	assert.Equal(t, dice.New(1, -1), Thrust(11, BasicSet))
	assert.Equal(t, dice.New(1, 1), Swing(11, BasicSet))
	assert.Equal(t, dice.New(1, 0), Thrust(13, BasicSet))
	assert.Equal(t, dice.New(2, -1), Swing(13, BasicSet))
	assert.Equal(t, dice.New(2, -1), Thrust(20, BasicSet))
	assert.Equal(t, dice.New(3, 2), Swing(20, BasicSet))
}

// average is the mean roll of the dice, used to check that damage never
// drops as strength rises
func average(d dice.Dice) float64 {
	return float64(d.Count)*3.5 + float64(d.Modifier)
}

func TestDamage_NonDecreasing(t *testing.T) {
	for _, p := range []DamageProgression{BasicSet, ReducedSwing, KnowingYourOwnStrength, ThrustEqualsSwingMinus2} {
		prevThrust, prevSwing := average(Thrust(1, p)), average(Swing(1, p))
		for st := 2; st <= 120; st++ {
			th, sw := average(Thrust(st, p)), average(Swing(st, p))
			require.GreaterOrEqual(t, th, prevThrust-0.5, "%s thrust at ST %d", p, st)
			require.GreaterOrEqual(t, sw, prevSwing-0.5, "%s swing at ST %d", p, st)
			prevThrust, prevSwing = th, sw
		}
	}
}

func TestParseDamageProgression(t *testing.T) {
	p, err := ParseDamageProgression("")
	require.NoError(t, err)
	assert.Equal(t, BasicSet, p)

	p, err = ParseDamageProgression(" Reduced_Swing ")
	require.NoError(t, err)
	assert.Equal(t, ReducedSwing, p)

	_, err = ParseDamageProgression("house_rules")
	assert.Error(t, err)
}

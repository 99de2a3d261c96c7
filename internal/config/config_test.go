package config_test

import (
	"os"
	"testing"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/config"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/rules"
	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "REDIS_URL", "SHEET_DAMAGE_PROGRESSION", "SHEET_WEIGHT_UNITS", "SHEET_SIMPLE_METRIC")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Redis.URL)

	settings, err := cfg.RuleSettings()
	require.NoError(t, err)
	assert.Equal(t, rules.DefaultSettings(), settings)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("SHEET_DAMAGE_PROGRESSION", "knowing_your_own_strength")
	t.Setenv("SHEET_WEIGHT_UNITS", "kg")
	t.Setenv("SHEET_SIMPLE_METRIC", "false")
	t.Setenv("SHEET_METRICS_ADDR", ":9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Redis.URL)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	settings, err := cfg.RuleSettings()
	require.NoError(t, err)
	assert.Equal(t, rules.Settings{
		DamageProgression:          rules.KnowingYourOwnStrength,
		WeightUnits:                measure.Kilogram,
		UseSimpleMetricConversions: false,
	}, settings)
}

func TestLoad_InvalidValues(t *testing.T) {
	unsetenv(t, "SHEET_WEIGHT_UNITS", "SHEET_SIMPLE_METRIC")
	t.Setenv("SHEET_DAMAGE_PROGRESSION", "heroic")
	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, sheeterr.IsInvalidArgument(err))
	assert.Equal(t, "SHEET_DAMAGE_PROGRESSION", sheeterr.GetMeta(err)[sheeterr.MetaField])

	t.Setenv("SHEET_DAMAGE_PROGRESSION", "basic_set")
	t.Setenv("SHEET_WEIGHT_UNITS", "stone")
	_, err = config.Load()
	require.Error(t, err)
	assert.True(t, sheeterr.IsInvalidArgument(err))

	t.Setenv("SHEET_WEIGHT_UNITS", "lb")
	t.Setenv("SHEET_SIMPLE_METRIC", "maybe")
	_, err = config.Load()
	assert.Error(t, err)
}

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

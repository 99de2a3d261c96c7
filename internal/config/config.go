// Package config reads the sheet engine's environment configuration
package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/rules"
	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
)

// Config holds all configuration for the application
type Config struct {
	Redis   RedisConfig
	Rules   RulesConfig
	Metrics MetricsConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// URL is optional; sheets are kept in memory when it is empty
	URL string `env:"REDIS_URL"`
}

// RulesConfig holds the default rule settings for new sheets
type RulesConfig struct {
	DamageProgression string `env:"SHEET_DAMAGE_PROGRESSION" envDefault:"basic_set"`
	WeightUnits       string `env:"SHEET_WEIGHT_UNITS"       envDefault:"lb"`
	SimpleMetric      bool   `env:"SHEET_SIMPLE_METRIC"      envDefault:"true"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Addr string `env:"SHEET_METRICS_ADDR"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, sheeterr.Wrap(err, "failed to parse environment")
	}
	if _, err := cfg.RuleSettings(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RuleSettings converts the rules section into a rules.Settings value
func (c *Config) RuleSettings() (rules.Settings, error) {
	progression, err := rules.ParseDamageProgression(c.Rules.DamageProgression)
	if err != nil {
		return rules.Settings{}, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, "invalid SHEET_DAMAGE_PROGRESSION").
			WithMeta(sheeterr.MetaField, "SHEET_DAMAGE_PROGRESSION")
	}

	units := measure.Pound
	if c.Rules.WeightUnits != "" {
		units, err = measure.ParseWeightUnit(c.Rules.WeightUnits)
		if err != nil {
			return rules.Settings{}, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, "invalid SHEET_WEIGHT_UNITS").
				WithMeta(sheeterr.MetaField, "SHEET_WEIGHT_UNITS")
		}
	}

	return rules.Settings{
		DamageProgression:          progression,
		WeightUnits:                units,
		UseSimpleMetricConversions: c.Rules.SimpleMetric,
	}, nil
}

// Package sheetdoc reads and writes character sheets as YAML or JSON
// documents and converts them to and from live sheets.
package sheetdoc

import (
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/criteria"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
)

// Format is a document encoding
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatFromPath picks the format from a file extension, defaulting to YAML
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

var validate = validator.New()

// Document is the serialized form of a sheet
type Document struct {
	ID           string          `json:"id,omitempty" yaml:"id,omitempty"`
	OwnerID      string          `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	Name         string          `json:"name" yaml:"name" validate:"required"`
	TotalPoints  int             `json:"total_points" yaml:"total_points" validate:"gte=0"`
	SizeModifier int             `json:"size_modifier,omitempty" yaml:"size_modifier,omitempty"`
	Settings     *SettingsData   `json:"settings,omitempty" yaml:"settings,omitempty"`
	Attributes   []AttributeData `json:"attributes,omitempty" yaml:"attributes,omitempty" validate:"dive"`

	Advantages       []RowData `json:"advantages,omitempty" yaml:"advantages,omitempty" validate:"dive"`
	Skills           []RowData `json:"skills,omitempty" yaml:"skills,omitempty" validate:"dive"`
	Spells           []RowData `json:"spells,omitempty" yaml:"spells,omitempty" validate:"dive"`
	CarriedEquipment []RowData `json:"carried_equipment,omitempty" yaml:"carried_equipment,omitempty" validate:"dive"`
	OtherEquipment   []RowData `json:"other_equipment,omitempty" yaml:"other_equipment,omitempty" validate:"dive"`
	Notes            []RowData `json:"notes,omitempty" yaml:"notes,omitempty" validate:"dive"`
}

// SettingsData overrides the configured rule settings field by field
type SettingsData struct {
	DamageProgression          string `json:"damage_progression,omitempty" yaml:"damage_progression,omitempty" validate:"omitempty,oneof=basic_set reduced_swing knowing_your_own_strength thrust_equals_swing_minus_2"`
	WeightUnits                string `json:"weight_units,omitempty" yaml:"weight_units,omitempty" validate:"omitempty,oneof=lb kg"`
	UseSimpleMetricConversions *bool  `json:"use_simple_metric_conversions,omitempty" yaml:"use_simple_metric_conversions,omitempty"`
}

// AttributeData is the bought adjustment and damage for one attribute
type AttributeData struct {
	ID     string  `json:"id" yaml:"id" validate:"required"`
	Adj    float64 `json:"adj,omitempty" yaml:"adj,omitempty"`
	Damage int     `json:"damage,omitempty" yaml:"damage,omitempty" validate:"gte=0"`
}

// RowData is one trait row and its subtree
type RowData struct {
	ID             string   `json:"id,omitempty" yaml:"id,omitempty"`
	Type           string   `json:"type" yaml:"type" validate:"required,oneof=advantage skill technique spell ritual_magic_spell equipment note"`
	Name           string   `json:"name,omitempty" yaml:"name,omitempty"`
	Specialization string   `json:"specialization,omitempty" yaml:"specialization,omitempty"`
	Categories     []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Container      string   `json:"container,omitempty" yaml:"container,omitempty" validate:"omitempty,oneof=group race meta_trait alternative_abilities"`

	Disabled       bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Leveled        bool   `json:"leveled,omitempty" yaml:"leveled,omitempty"`
	Levels         int    `json:"levels,omitempty" yaml:"levels,omitempty"`
	BasePoints     int    `json:"base_points,omitempty" yaml:"base_points,omitempty"`
	PointsPerLevel int    `json:"points_per_level,omitempty" yaml:"points_per_level,omitempty"`
	RoundCostDown  bool   `json:"round_cost_down,omitempty" yaml:"round_cost_down,omitempty"`
	SelfControl    int    `json:"self_control,omitempty" yaml:"self_control,omitempty" validate:"oneof=0 6 9 12 15"`
	SelfControlAdj string `json:"self_control_adj,omitempty" yaml:"self_control_adj,omitempty"`

	Points         int      `json:"points,omitempty" yaml:"points,omitempty"`
	RelativeLevel  int      `json:"relative_level,omitempty" yaml:"relative_level,omitempty"`
	Attribute      string   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Difficulty     string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty" validate:"omitempty,oneof=E A H VH W"`
	EncPenaltyMult int      `json:"encumbrance_penalty_multiplier,omitempty" yaml:"encumbrance_penalty_multiplier,omitempty" validate:"gte=0,lte=9"`
	College        []string `json:"college,omitempty" yaml:"college,omitempty"`
	PowerSource    string   `json:"power_source,omitempty" yaml:"power_source,omitempty"`

	Equipped               bool            `json:"equipped,omitempty" yaml:"equipped,omitempty"`
	Quantity               int             `json:"quantity,omitempty" yaml:"quantity,omitempty" validate:"gte=0"`
	Weight                 *measure.Weight `json:"weight,omitempty" yaml:"weight,omitempty"`
	Value                  float64         `json:"value,omitempty" yaml:"value,omitempty" validate:"gte=0"`
	WeightIgnoredForSkills bool            `json:"weight_ignored_for_skills,omitempty" yaml:"weight_ignored_for_skills,omitempty"`
	Weapons                []WeaponData    `json:"weapons,omitempty" yaml:"weapons,omitempty" validate:"dive"`

	Features  []FeatureData  `json:"features,omitempty" yaml:"features,omitempty" validate:"dive"`
	Modifiers []ModifierData `json:"modifiers,omitempty" yaml:"modifiers,omitempty" validate:"dive"`
	Children  []RowData      `json:"children,omitempty" yaml:"children,omitempty" validate:"dive"`
}

// WeaponData is one attack mode of an equipment row
type WeaponData struct {
	Usage          string `json:"usage,omitempty" yaml:"usage,omitempty"`
	Damage         string `json:"damage" yaml:"damage" validate:"required,oneof=thr sw"`
	Modifier       int    `json:"modifier,omitempty" yaml:"modifier,omitempty"`
	Skill          string `json:"skill,omitempty" yaml:"skill,omitempty"`
	Specialization string `json:"specialization,omitempty" yaml:"specialization,omitempty"`
}

// ModifierData is a trait modifier
type ModifierData struct {
	ID       string        `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Disabled bool          `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Levels   int           `json:"levels,omitempty" yaml:"levels,omitempty"`
	CostType string        `json:"cost_type,omitempty" yaml:"cost_type,omitempty" validate:"omitempty,oneof=percentage points multiplier"`
	Affects  string        `json:"affects,omitempty" yaml:"affects,omitempty" validate:"omitempty,oneof=total base_only levels_only"`
	Cost     float64       `json:"cost,omitempty" yaml:"cost,omitempty"`
	Features []FeatureData `json:"features,omitempty" yaml:"features,omitempty" validate:"dive"`
}

// FeatureData is every feature kind flattened into one record; Type picks
// which fields are read. DR bonuses take their specialization from
// Specialization.Qualifier.
type FeatureData struct {
	Type           string           `json:"type" yaml:"type" validate:"required,oneof=attribute_bonus skill_bonus skill_point_bonus spell_bonus spell_point_bonus weapon_bonus cost_reduction reaction_bonus conditional_modifier dr_bonus contained_weight_reduction"`
	Attribute      string           `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Limitation     string           `json:"limitation,omitempty" yaml:"limitation,omitempty" validate:"omitempty,oneof=lifting_only striking_only throwing_only"`
	Selection      string           `json:"selection,omitempty" yaml:"selection,omitempty"`
	Match          string           `json:"match,omitempty" yaml:"match,omitempty" validate:"omitempty,oneof=all_colleges college_name power_source_name spell_name"`
	Name           criteria.String  `json:"name,omitzero" yaml:"name,omitempty"`
	Specialization criteria.String  `json:"specialization,omitzero" yaml:"specialization,omitempty"`
	Categories     criteria.String  `json:"categories,omitzero" yaml:"categories,omitempty"`
	RelativeLevel  criteria.Numeric `json:"relative_level,omitzero" yaml:"relative_level,omitempty"`
	PerDie         bool             `json:"per_die,omitempty" yaml:"per_die,omitempty"`
	Amount         float64          `json:"amount,omitempty" yaml:"amount,omitempty"`
	PerLevel       float64          `json:"per_level,omitempty" yaml:"per_level,omitempty"`
	Percentage     int              `json:"percentage,omitempty" yaml:"percentage,omitempty" validate:"gte=0"`
	FixedPounds    float64          `json:"fixed_pounds,omitempty" yaml:"fixed_pounds,omitempty" validate:"gte=0"`
	Situation      string           `json:"situation,omitempty" yaml:"situation,omitempty"`
	Location       string           `json:"location,omitempty" yaml:"location,omitempty"`
}

// Decode reads a document in the given format. Unknown fields are rejected.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, "failed to decode json sheet")
		}
	case YAML, "":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, sheeterr.InvalidArgument("sheet document is empty")
			}
			return nil, sheeterr.WrapWithCode(err, sheeterr.CodeInvalidArgument, "failed to decode yaml sheet")
		}
	default:
		return nil, sheeterr.InvalidArgumentf("unknown document format %q", format)
	}
	return &doc, nil
}

// Encode writes the document in the given format
func (d *Document) Encode(w io.Writer, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return sheeterr.Wrap(err, "failed to encode json sheet")
		}
	case YAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return sheeterr.Wrap(err, "failed to encode yaml sheet")
		}
		if err := enc.Close(); err != nil {
			return sheeterr.Wrap(err, "failed to encode yaml sheet")
		}
	default:
		return sheeterr.InvalidArgumentf("unknown document format %q", format)
	}
	return nil
}

// Validate checks the document's structure. The first failing field is
// reported in the error's "field" metadata.
func (d *Document) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return sheeterr.Validationf("invalid sheet: %s failed %q", first.Namespace(), first.Tag()).
			WithMeta(sheeterr.MetaField, first.Namespace())
	}
	return sheeterr.Wrap(err, "invalid sheet")
}

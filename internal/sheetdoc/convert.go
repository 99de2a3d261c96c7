package sheetdoc

import (
	"strings"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/attribute"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/measure"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/rules"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/sheet"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/trait"
	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/events"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/metrics"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/uuid"
)

// Options are the collaborators a live sheet is built with
type Options struct {
	Defaults      rules.Settings   // Settings used where the document has none
	Defs          []attribute.Def  // Optional, defaults to attribute.StandardDefs
	UUIDGenerator uuid.Generator   // Optional, ids for rows without one
	Bus           *events.Bus      // Optional
	Recorder      metrics.Recorder // Optional
}

// RuleSettings merges the document's overrides onto defaults
func (d *Document) RuleSettings(defaults rules.Settings) (rules.Settings, error) {
	s := defaults
	if d.Settings == nil {
		return s.Normalize(), nil
	}
	if d.Settings.DamageProgression != "" {
		p, err := rules.ParseDamageProgression(d.Settings.DamageProgression)
		if err != nil {
			return rules.Settings{}, sheeterr.WrapWithCode(err, sheeterr.CodeValidation, "invalid settings").
				WithMeta(sheeterr.MetaField, "settings.damage_progression")
		}
		s.DamageProgression = p
	}
	if d.Settings.WeightUnits != "" {
		u, err := measure.ParseWeightUnit(d.Settings.WeightUnits)
		if err != nil {
			return rules.Settings{}, sheeterr.WrapWithCode(err, sheeterr.CodeValidation, "invalid settings").
				WithMeta(sheeterr.MetaField, "settings.weight_units")
		}
		s.WeightUnits = u
	}
	if d.Settings.UseSimpleMetricConversions != nil {
		s.UseSimpleMetricConversions = *d.Settings.UseSimpleMetricConversions
	}
	return s.Normalize(), nil
}

// ToSheet validates the document and builds a live sheet from it
func (d *Document) ToSheet(opts *Options) (*sheet.Sheet, error) {
	if opts == nil {
		opts = &Options{Defaults: rules.DefaultSettings()}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	settings, err := d.RuleSettings(opts.Defaults)
	if err != nil {
		return nil, err
	}

	store := trait.NewStore(&trait.StoreConfig{UUIDGenerator: opts.UUIDGenerator})
	lists := []struct {
		list trait.List
		rows []RowData
	}{
		{trait.Advantages, d.Advantages},
		{trait.Skills, d.Skills},
		{trait.Spells, d.Spells},
		{trait.CarriedEquipment, d.CarriedEquipment},
		{trait.OtherEquipment, d.OtherEquipment},
		{trait.Notes, d.Notes},
	}
	for _, l := range lists {
		for i := range l.rows {
			row, err := l.rows[i].toRow()
			if err != nil {
				return nil, sheeterr.Wrapf(err, "invalid %s row %d", l.list, i)
			}
			if err := store.Add(l.list, "", row); err != nil {
				return nil, sheeterr.Wrapf(err, "failed to add %s row %d", l.list, i)
			}
		}
	}

	defs := opts.Defs
	if len(defs) == 0 {
		defs = attribute.StandardDefs()
	}
	known := attribute.NewSet(defs)
	attrs := make([]attribute.Attribute, 0, len(d.Attributes))
	for _, a := range d.Attributes {
		if _, ok := known.Def(a.ID); !ok {
			return nil, sheeterr.NotFoundf("attribute %q is not defined", a.ID).
				WithMeta(sheeterr.MetaAttributeID, a.ID)
		}
		attrs = append(attrs, attribute.Attribute{ID: a.ID, Adj: a.Adj, Damage: a.Damage})
	}

	return sheet.New(&sheet.Config{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		TotalPoints: d.TotalPoints,
		Profile:     sheet.Profile{SizeModifier: d.SizeModifier},
		Settings:    settings,
		Defs:        defs,
		Attributes:  attrs,
		Store:       store,
		Bus:         opts.Bus,
		Recorder:    opts.Recorder,
	}), nil
}

// FromSheet captures a live sheet as a document
func FromSheet(s *sheet.Sheet) *Document {
	settings := s.Settings()
	simple := settings.UseSimpleMetricConversions
	d := &Document{
		ID:           s.ID,
		OwnerID:      s.OwnerID,
		Name:         s.Name,
		TotalPoints:  s.TotalPoints(),
		SizeModifier: s.Profile().SizeModifier,
		Settings: &SettingsData{
			DamageProgression:          string(settings.DamageProgression),
			WeightUnits:                string(settings.WeightUnits),
			UseSimpleMetricConversions: &simple,
		},
	}

	attrs := s.Attributes()
	for _, id := range attrs.IDs() {
		a := attrs.Attribute(id)
		if a.Adj == 0 && a.Damage == 0 {
			continue
		}
		d.Attributes = append(d.Attributes, AttributeData{ID: id, Adj: a.Adj, Damage: a.Damage})
	}

	store := s.Store()
	d.Advantages = fromRows(store.Rows(trait.Advantages))
	d.Skills = fromRows(store.Rows(trait.Skills))
	d.Spells = fromRows(store.Rows(trait.Spells))
	d.CarriedEquipment = fromRows(store.Rows(trait.CarriedEquipment))
	d.OtherEquipment = fromRows(store.Rows(trait.OtherEquipment))
	d.Notes = fromRows(store.Rows(trait.Notes))
	return d
}

func (r *RowData) toRow() (*trait.Row, error) {
	row := &trait.Row{
		ID:                     r.ID,
		Type:                   trait.Type(r.Type),
		Name:                   r.Name,
		Specialization:         r.Specialization,
		Categories:             r.Categories,
		Container:              trait.ContainerType(r.Container),
		Disabled:               r.Disabled,
		Leveled:                r.Leveled,
		Levels:                 r.Levels,
		BasePoints:             r.BasePoints,
		PointsPerLevel:         r.PointsPerLevel,
		RoundCostDown:          r.RoundCostDown,
		SelfControl:            trait.SelfControlRoll(r.SelfControl),
		SelfControlAdj:         trait.SelfControlAdjustment(r.SelfControlAdj),
		Points:                 r.Points,
		RelativeLevel:          r.RelativeLevel,
		Attribute:              strings.ToLower(r.Attribute),
		Difficulty:             trait.Difficulty(r.Difficulty),
		EncPenaltyMult:         r.EncPenaltyMult,
		College:                r.College,
		PowerSource:            r.PowerSource,
		Equipped:               r.Equipped,
		Quantity:               r.Quantity,
		Value:                  r.Value,
		WeightIgnoredForSkills: r.WeightIgnoredForSkills,
	}
	if r.Weight != nil {
		row.Weight = *r.Weight
	}
	for _, w := range r.Weapons {
		row.Weapons = append(row.Weapons, trait.Weapon{
			Usage:          w.Usage,
			Damage:         trait.DamageBase(w.Damage),
			Modifier:       w.Modifier,
			Skill:          w.Skill,
			Specialization: w.Specialization,
		})
	}

	var err error
	if row.Features, err = toFeatures(r.Features); err != nil {
		return nil, err
	}
	for i := range r.Modifiers {
		m := r.Modifiers[i]
		mod := &trait.Modifier{
			ID:       m.ID,
			Name:     m.Name,
			Disabled: m.Disabled,
			Levels:   m.Levels,
			CostType: trait.CostType(m.CostType),
			Affects:  trait.Affects(m.Affects),
			Cost:     m.Cost,
		}
		if mod.Features, err = toFeatures(m.Features); err != nil {
			return nil, err
		}
		row.Modifiers = append(row.Modifiers, mod)
	}
	for i := range r.Children {
		child, err := r.Children[i].toRow()
		if err != nil {
			return nil, err
		}
		row.Children = append(row.Children, child)
	}
	return row, nil
}

func fromRows(rows []*trait.Row) []RowData {
	if len(rows) == 0 {
		return nil
	}
	out := make([]RowData, 0, len(rows))
	for _, r := range rows {
		data := RowData{
			ID:                     r.ID,
			Type:                   string(r.Type),
			Name:                   r.Name,
			Specialization:         r.Specialization,
			Categories:             r.Categories,
			Container:              string(r.Container),
			Disabled:               r.Disabled,
			Leveled:                r.Leveled,
			Levels:                 r.Levels,
			BasePoints:             r.BasePoints,
			PointsPerLevel:         r.PointsPerLevel,
			RoundCostDown:          r.RoundCostDown,
			SelfControl:            int(r.SelfControl),
			SelfControlAdj:         string(r.SelfControlAdj),
			Points:                 r.Points,
			RelativeLevel:          r.RelativeLevel,
			Attribute:              r.Attribute,
			Difficulty:             string(r.Difficulty),
			EncPenaltyMult:         r.EncPenaltyMult,
			College:                r.College,
			PowerSource:            r.PowerSource,
			Equipped:               r.Equipped,
			Quantity:               r.Quantity,
			Value:                  r.Value,
			WeightIgnoredForSkills: r.WeightIgnoredForSkills,
			Features:               fromFeatures(r.Features),
			Children:               fromRows(r.Children),
		}
		for _, w := range r.Weapons {
			data.Weapons = append(data.Weapons, WeaponData{
				Usage:          w.Usage,
				Damage:         string(w.Damage),
				Modifier:       w.Modifier,
				Skill:          w.Skill,
				Specialization: w.Specialization,
			})
		}
		if r.Weight.Value != 0 {
			w := r.Weight
			data.Weight = &w
		}
		for _, m := range r.Modifiers {
			data.Modifiers = append(data.Modifiers, ModifierData{
				ID:       m.ID,
				Name:     m.Name,
				Disabled: m.Disabled,
				Levels:   m.Levels,
				CostType: string(m.CostType),
				Affects:  string(m.Affects),
				Cost:     m.Cost,
				Features: fromFeatures(m.Features),
			})
		}
		out = append(out, data)
	}
	return out
}

func toFeatures(data []FeatureData) ([]feature.Feature, error) {
	if len(data) == 0 {
		return nil, nil
	}
	out := make([]feature.Feature, 0, len(data))
	for i := range data {
		f, err := data[i].ToFeature()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func fromFeatures(features []feature.Feature) []FeatureData {
	if len(features) == 0 {
		return nil
	}
	out := make([]FeatureData, 0, len(features))
	for _, f := range features {
		out = append(out, FeatureFromDomain(f))
	}
	return out
}

// ToFeature converts the record into its feature variant
func (f *FeatureData) ToFeature() (feature.Feature, error) {
	amount := feature.LeveledAmount{Amount: f.Amount, PerLevel: f.PerLevel}
	switch feature.Kind(f.Type) {
	case feature.KindAttributeBonus:
		if f.Attribute == "" {
			return nil, sheeterr.Validation("attribute bonus requires an attribute").WithMeta(sheeterr.MetaField, "attribute")
		}
		return feature.AttributeBonus{Attribute: f.Attribute, Limitation: feature.Limitation(f.Limitation), Amount: amount}, nil
	case feature.KindSkillBonus:
		sel := feature.SkillSelection(f.Selection)
		if sel == "" {
			sel = feature.SkillsWithName
		}
		if sel != feature.SkillsWithName && sel != feature.WeaponsWithName {
			return nil, sheeterr.Validationf("unknown skill selection %q", f.Selection).WithMeta(sheeterr.MetaField, "selection")
		}
		return feature.SkillBonus{Selection: sel, Name: f.Name, Specialization: f.Specialization, Categories: f.Categories, Amount: amount}, nil
	case feature.KindSkillPointBonus:
		return feature.SkillPointBonus{Name: f.Name, Specialization: f.Specialization, Categories: f.Categories, Amount: amount}, nil
	case feature.KindSpellBonus:
		return feature.SpellBonus{Match: spellMatch(f.Match), Name: f.Name, Categories: f.Categories, Amount: amount}, nil
	case feature.KindSpellPointBonus:
		return feature.SpellPointBonus{Match: spellMatch(f.Match), Name: f.Name, Categories: f.Categories, Amount: amount}, nil
	case feature.KindWeaponBonus:
		sel := feature.WeaponSelection(f.Selection)
		if sel == "" {
			sel = feature.WithRequiredSkill
		}
		if sel != feature.WithRequiredSkill && sel != feature.WithName {
			return nil, sheeterr.Validationf("unknown weapon selection %q", f.Selection).WithMeta(sheeterr.MetaField, "selection")
		}
		return feature.WeaponBonus{
			Selection:      sel,
			Name:           f.Name,
			Specialization: f.Specialization,
			RelativeLevel:  f.RelativeLevel,
			Categories:     f.Categories,
			PerDie:         f.PerDie,
			Amount:         amount,
		}, nil
	case feature.KindCostReduction:
		return feature.CostReduction{Attribute: f.Attribute, Percentage: f.Percentage}, nil
	case feature.KindReactionBonus:
		return feature.ReactionBonus{Situation: f.Situation, Amount: amount}, nil
	case feature.KindConditionalModifier:
		return feature.ConditionalModifier{Situation: f.Situation, Amount: amount}, nil
	case feature.KindDRBonus:
		return feature.DRBonus{Location: f.Location, Specialization: f.Specialization.Qualifier, Amount: amount}, nil
	case feature.KindContainedWeightReduction:
		return feature.ContainedWeightReduction{Percentage: f.Percentage, FixedPounds: f.FixedPounds}, nil
	}
	return nil, sheeterr.Validationf("unknown feature type %q", f.Type).WithMeta(sheeterr.MetaField, "type")
}

func spellMatch(s string) feature.SpellMatch {
	if s == "" {
		return feature.AllColleges
	}
	return feature.SpellMatch(s)
}

// FeatureFromDomain flattens a feature into a record
func FeatureFromDomain(f feature.Feature) FeatureData {
	data := FeatureData{Type: string(f.Kind())}
	setAmount := func(a feature.LeveledAmount) {
		data.Amount, data.PerLevel = a.Amount, a.PerLevel
	}

	switch v := f.(type) {
	case feature.AttributeBonus:
		data.Attribute, data.Limitation = v.Attribute, string(v.Limitation)
		setAmount(v.Amount)
	case feature.SkillBonus:
		data.Selection = string(v.Selection)
		data.Name, data.Specialization, data.Categories = v.Name, v.Specialization, v.Categories
		setAmount(v.Amount)
	case feature.SkillPointBonus:
		data.Name, data.Specialization, data.Categories = v.Name, v.Specialization, v.Categories
		setAmount(v.Amount)
	case feature.SpellBonus:
		data.Match, data.Name, data.Categories = string(v.Match), v.Name, v.Categories
		setAmount(v.Amount)
	case feature.SpellPointBonus:
		data.Match, data.Name, data.Categories = string(v.Match), v.Name, v.Categories
		setAmount(v.Amount)
	case feature.WeaponBonus:
		data.Selection = string(v.Selection)
		data.Name, data.Specialization, data.Categories = v.Name, v.Specialization, v.Categories
		data.RelativeLevel, data.PerDie = v.RelativeLevel, v.PerDie
		setAmount(v.Amount)
	case feature.CostReduction:
		data.Attribute, data.Percentage = v.Attribute, v.Percentage
	case feature.ReactionBonus:
		data.Situation = v.Situation
		setAmount(v.Amount)
	case feature.ConditionalModifier:
		data.Situation = v.Situation
		setAmount(v.Amount)
	case feature.DRBonus:
		data.Location = v.Location
		data.Specialization.Qualifier = v.Specialization
		setAmount(v.Amount)
	case feature.ContainedWeightReduction:
		data.Percentage, data.FixedPounds = v.Percentage, v.FixedPounds
	}
	return data
}

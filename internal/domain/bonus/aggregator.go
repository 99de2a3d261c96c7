// Package bonus sums the features in a feature map that apply to a given
// attribute, skill, spell, weapon or hit location.
package bonus

import (
	"math"
	"sort"
	"strings"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/criteria"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/feature"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/featuremap"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/trait"
)

// MaxCostReduction bounds the total cost reduction percentage
const MaxCostReduction = 80

// SkillSource exposes the skill rows used to find relative skill levels.
// *trait.Store satisfies it.
type SkillSource interface {
	Rows(list trait.List) []*trait.Row
}

// Aggregator answers bonus queries against one pass's feature map
type Aggregator struct {
	Map    *featuremap.Map
	Skills SkillSource
}

// Result is the set of entries a query matched, their amounts and the total
type Result struct {
	Entries []featuremap.Entry
	Amounts []float64
	Total   float64
}

// IntegerTotal sums the amounts, each truncated toward zero
func (r Result) IntegerTotal() int {
	total := 0
	for _, v := range r.Amounts {
		total += int(math.Trunc(v))
	}
	return total
}

// Sources lists the row names the entries came from
func (r Result) Sources() []string {
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Source.RowName)
	}
	return out
}

// Situational is a reaction or conditional modifier grouped by situation
type Situational struct {
	Situation string
	Amount    int
	Sources   []string
}

// NewAggregator creates an aggregator over m
func NewAggregator(m *featuremap.Map, skills SkillSource) *Aggregator {
	return &Aggregator{Map: m, Skills: skills}
}

func (a *Aggregator) lookup(keys ...string) []featuremap.Entry {
	if a == nil {
		return nil
	}
	var out []featuremap.Entry
	for _, k := range keys {
		out = append(out, a.Map.Lookup(k)...)
	}
	return out
}

func (r *Result) add(e featuremap.Entry, amount float64, tooltip *Tooltip) {
	r.Entries = append(r.Entries, e)
	r.Amounts = append(r.Amounts, amount)
	r.Total += amount
	tooltip.Add(e.Source.RowName, amount)
}

// AttributeBonusFor sums the attribute bonuses stored under key
func (a *Aggregator) AttributeBonusFor(key string, tooltip *Tooltip) float64 {
	var total float64
	for _, e := range a.lookup(key) {
		if b, ok := e.Feature.(feature.AttributeBonus); ok {
			amount := b.Amount.Effective(e.Level)
			total += amount
			tooltip.Add(e.Source.RowName, amount)
		}
	}
	return total
}

// IntegerBonusFor sums the attribute bonuses under key, each truncated
// toward zero before it is added
func (a *Aggregator) IntegerBonusFor(key string, tooltip *Tooltip) int {
	total := 0
	for _, e := range a.lookup(key) {
		if b, ok := e.Feature.(feature.AttributeBonus); ok {
			total += intAmount(b.Amount, e.Level, e.Source.RowName, tooltip)
		}
	}
	return total
}

func intAmount(amount feature.LeveledAmount, level float64, source string, tooltip *Tooltip) int {
	v := amount.Effective(level)
	tooltip.Add(source, v)
	return int(math.Trunc(v))
}

// CostReductionFor sums cost reductions under key, clamped to [0, 80]
func (a *Aggregator) CostReductionFor(key string) int {
	total := 0
	for _, e := range a.lookup(key) {
		if cr, ok := e.Feature.(feature.CostReduction); ok {
			total += cr.Percentage
		}
	}
	return ClampCostReduction(total)
}

// ClampCostReduction saturates a percentage into [0, 80]
func ClampCostReduction(pct int) int {
	return min(max(pct, 0), MaxCostReduction)
}

func nameKeys(prefix, name string) []string {
	return []string{prefix + "/" + strings.ToLower(name), prefix + "*"}
}

// SkillBonusFor sums skill level bonuses for the named skill
func (a *Aggregator) SkillBonusFor(name, specialization string, categories []string, tooltip *Tooltip) int {
	total := 0
	for _, e := range a.lookup(nameKeys(feature.SkillNameKey, name)...) {
		b, ok := e.Feature.(feature.SkillBonus)
		if !ok || b.Selection == feature.WeaponsWithName {
			continue
		}
		if b.Name.Matches(name) && b.Specialization.Matches(specialization) && b.Categories.MatchesList(categories...) {
			total += intAmount(b.Amount, e.Level, e.Source.RowName, tooltip)
		}
	}
	return total
}

// SkillPointBonusFor sums point bonuses for the named skill
func (a *Aggregator) SkillPointBonusFor(name, specialization string, categories []string, tooltip *Tooltip) int {
	total := 0
	for _, e := range a.lookup(nameKeys(feature.SkillPointsKey, name)...) {
		b, ok := e.Feature.(feature.SkillPointBonus)
		if !ok {
			continue
		}
		if b.Name.Matches(name) && b.Specialization.Matches(specialization) && b.Categories.MatchesList(categories...) {
			total += intAmount(b.Amount, e.Level, e.Source.RowName, tooltip)
		}
	}
	return total
}

// WeaponSkillBonusesFor returns skill bonuses that target a named weapon
func (a *Aggregator) WeaponSkillBonusesFor(weaponName, usage string, categories []string, tooltip *Tooltip) Result {
	var r Result
	for _, e := range a.lookup(nameKeys(feature.WeaponNamedPrefix+feature.SkillNameKey, weaponName)...) {
		b, ok := e.Feature.(feature.SkillBonus)
		if !ok || b.Selection != feature.WeaponsWithName {
			continue
		}
		if b.Name.Matches(weaponName) && b.Specialization.Matches(usage) && b.Categories.MatchesList(categories...) {
			r.add(e, b.Amount.Effective(e.Level), tooltip)
		}
	}
	return r
}

type spellFeature struct {
	match  feature.SpellMatch
	name   criteria.String
	cats   criteria.String
	amount feature.LeveledAmount
}

func asSpell(f feature.Feature, points bool) (spellFeature, bool) {
	if points {
		if b, ok := f.(feature.SpellPointBonus); ok {
			return spellFeature{b.Match, b.Name, b.Categories, b.Amount}, true
		}
		return spellFeature{}, false
	}
	if b, ok := f.(feature.SpellBonus); ok {
		return spellFeature{b.Match, b.Name, b.Categories, b.Amount}, true
	}
	return spellFeature{}, false
}

// SpellBonusFor sums level bonuses for a spell: every all-college bonus,
// the best single college, the power source and the spell's own name
func (a *Aggregator) SpellBonusFor(name, powerSource string, colleges, categories []string, tooltip *Tooltip) int {
	return a.spellBonus("spell.", false, name, powerSource, colleges, categories, tooltip)
}

// SpellPointBonusFor is SpellBonusFor for spell point bonuses
func (a *Aggregator) SpellPointBonusFor(name, powerSource string, colleges, categories []string, tooltip *Tooltip) int {
	return a.spellBonus(feature.SpellPointsPrefix, true, name, powerSource, colleges, categories, tooltip)
}

func (a *Aggregator) spellBonus(prefix string, points bool, name, powerSource string, colleges, categories []string, tooltip *Tooltip) int {
	sum := func(keys []string, match feature.SpellMatch, qualifier string, tip *Tooltip) int {
		total := 0
		for _, e := range a.lookup(keys...) {
			s, ok := asSpell(e.Feature, points)
			if !ok || s.match != match || !s.cats.MatchesList(categories...) {
				continue
			}
			if match != feature.AllColleges && !s.name.Matches(qualifier) {
				continue
			}
			total += intAmount(s.amount, e.Level, e.Source.RowName, tip)
		}
		return total
	}

	total := sum([]string{prefix + "college"}, feature.AllColleges, "", tooltip)

	var (
		best    int
		bestTip *Tooltip
		found   bool
	)
	for _, college := range colleges {
		var tip *Tooltip
		if tooltip != nil {
			tip = NewTooltip()
		}
		v := sum(nameKeys(prefix+"college", college), feature.CollegeName, college, tip)
		if !found || v > best {
			best, bestTip, found = v, tip, true
		}
	}
	if found {
		total += best
		if tooltip != nil && bestTip != nil {
			tooltip.sb.WriteString(bestTip.String())
		}
	}

	total += sum(nameKeys(prefix+"power_source", powerSource), feature.PowerSourceName, powerSource, tooltip)
	total += sum(nameKeys(prefix+"name", name), feature.SpellName, name, tooltip)
	return total
}

// SkillRelativeLevel is the row's relative level from its points plus the
// skill bonuses that match it. Rows without points report false.
func (a *Aggregator) SkillRelativeLevel(r *trait.Row) (int, bool) {
	level, ok := r.SkillRelativeLevel()
	if !ok {
		return 0, false
	}
	return level + a.SkillBonusFor(r.Name, r.Specialization, r.Categories, nil), true
}

// bestRelativeLevel scans skills and techniques with points that share the
// name and, when given, the specialization. The first skill wins ties.
func (a *Aggregator) bestRelativeLevel(name, specialization string) (int, bool) {
	if a == nil || a.Skills == nil {
		return 0, false
	}
	best, found := 0, false
	trait.Walk(a.Skills.Rows(trait.Skills), func(r *trait.Row) bool {
		if r.IsContainer() || (r.Type != trait.Skill && r.Type != trait.Technique) {
			return true
		}
		if !strings.EqualFold(r.Name, name) {
			return true
		}
		if specialization != "" && !strings.EqualFold(r.Specialization, specialization) {
			return true
		}
		rsl, ok := a.SkillRelativeLevel(r)
		if !ok {
			return true
		}
		if !found || rsl > best {
			best, found = rsl, true
		}
		return true
	})
	return best, found
}

// WeaponDamageBonusesFor returns damage bonuses for weapons using the named
// skill. Bonuses gated on relative skill level are checked against the best
// matching skill; with no matching skill nothing applies. Per-die bonuses
// are evaluated at dieCount.
func (a *Aggregator) WeaponDamageBonusesFor(skillName, specialization string, categories []string, dieCount int, tooltip *Tooltip) Result {
	var r Result
	rsl, ok := a.bestRelativeLevel(skillName, specialization)
	if !ok {
		return r
	}
	for _, e := range a.lookup(nameKeys(feature.WeaponDamageKey, skillName)...) {
		b, ok := e.Feature.(feature.WeaponBonus)
		if !ok || b.Selection == feature.WithName {
			continue
		}
		if b.Name.Matches(skillName) && b.Specialization.Matches(specialization) &&
			b.RelativeLevel.Matches(rsl) && b.Categories.MatchesList(categories...) {
			r.add(e, weaponAmount(b, e.Level, dieCount), tooltip)
		}
	}
	return r
}

// NamedWeaponDamageBonusesFor returns damage bonuses that target a weapon by name
func (a *Aggregator) NamedWeaponDamageBonusesFor(weaponName, usage string, categories []string, dieCount int, tooltip *Tooltip) Result {
	var r Result
	for _, e := range a.lookup(nameKeys(feature.WeaponNamedPrefix+"damage", weaponName)...) {
		b, ok := e.Feature.(feature.WeaponBonus)
		if !ok || b.Selection != feature.WithName {
			continue
		}
		if b.Name.Matches(weaponName) && b.Specialization.Matches(usage) && b.Categories.MatchesList(categories...) {
			r.add(e, weaponAmount(b, e.Level, dieCount), tooltip)
		}
	}
	return r
}

func weaponAmount(b feature.WeaponBonus, level float64, dieCount int) float64 {
	if b.PerDie {
		level = float64(dieCount)
	}
	return b.Amount.Effective(level)
}

// DRBonusesFor adds the DR bonuses for a hit location into the map, keyed by
// lower-case specialization ("all" when none)
func (a *Aggregator) DRBonusesFor(location string, into map[string]int) map[string]int {
	if into == nil {
		into = make(map[string]int)
	}
	for _, e := range a.lookup(feature.HitLocationPrefix + strings.ToLower(location)) {
		b, ok := e.Feature.(feature.DRBonus)
		if !ok {
			continue
		}
		spec := strings.ToLower(b.Specialization)
		if spec == "" {
			spec = "all"
		}
		into[spec] += int(math.Trunc(b.Amount.Effective(e.Level)))
	}
	return into
}

// Reactions groups reaction bonuses by situation
func (a *Aggregator) Reactions() []Situational {
	return a.situational(feature.ReactionKey)
}

// ConditionalModifiers groups conditional modifiers by situation
func (a *Aggregator) ConditionalModifiers() []Situational {
	return a.situational(feature.ConditionalKey)
}

func (a *Aggregator) situational(key string) []Situational {
	groups := make(map[string]*Situational)
	for _, e := range a.lookup(key) {
		var (
			situation string
			amount    feature.LeveledAmount
		)
		switch b := e.Feature.(type) {
		case feature.ReactionBonus:
			situation, amount = b.Situation, b.Amount
		case feature.ConditionalModifier:
			situation, amount = b.Situation, b.Amount
		default:
			continue
		}
		k := strings.ToLower(situation)
		g, ok := groups[k]
		if !ok {
			g = &Situational{Situation: situation}
			groups[k] = g
		}
		g.Amount += int(math.Trunc(amount.Effective(e.Level)))
		g.Sources = append(g.Sources, e.Source.RowName)
	}

	out := make([]Situational, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Situation) < strings.ToLower(out[j].Situation)
	})
	return out
}

package sheet

import (
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/attribute"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/bonus"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/encumbrance"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/points"
	domain "github.com/KirkDiggler/gurps-sheet-engine/internal/domain/sheet"
)

// AttributeSummary is the resolved view of one attribute
type AttributeSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Points    int     `json:"points"`
	Current   *int    `json:"current,omitempty"`
	Threshold string  `json:"threshold,omitempty"`
}

// EncumbranceRow is the move, dodge and carry limit at one encumbrance level
type EncumbranceRow struct {
	Level        string `json:"level"`
	Move         int    `json:"move"`
	Dodge        int    `json:"dodge"`
	MaximumCarry string `json:"maximum_carry"`
}

// SkillSummary is a skill or technique with points in it
type SkillSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization,omitempty"`
	Attribute      string `json:"attribute"`
	Level          int    `json:"level"`
	RelativeLevel  int    `json:"relative_level"`
	Points         int    `json:"points"`
}

// WeaponSummary is one attack mode of a carried weapon
type WeaponSummary struct {
	Name    string   `json:"name"`
	Usage   string   `json:"usage,omitempty"`
	Skill   string   `json:"skill,omitempty"`
	Damage  string   `json:"damage"`
	Sources []string `json:"sources,omitempty"`
}

// Summary is a plain view of every derived value on a sheet
type Summary struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id,omitempty"`
	Name    string `json:"name"`

	Attributes []AttributeSummary `json:"attributes"`

	TotalPoints   int           `json:"total_points"`
	Points        points.Budget `json:"points"`
	SpentPoints   int           `json:"spent_points"`
	UnspentPoints int           `json:"unspent_points"`

	WeightCarried          string           `json:"weight_carried"`
	WeightCarriedForSkills string           `json:"weight_carried_for_skills"`
	WealthCarried          float64          `json:"wealth_carried"`
	WealthNotCarried       float64          `json:"wealth_not_carried"`
	Encumbrance            string           `json:"encumbrance"`
	EncumbranceForSkills   string           `json:"encumbrance_for_skills"`
	EncumbranceTable       []EncumbranceRow `json:"encumbrance_table"`

	Thrust    string            `json:"thrust"`
	Swing     string            `json:"swing"`
	BasicLift string            `json:"basic_lift"`
	Lifts     map[string]string `json:"lifts"`

	Skills  []SkillSummary  `json:"skills,omitempty"`
	Weapons []WeaponSummary `json:"weapons,omitempty"`

	Special              attribute.Special   `json:"special"`
	Reactions            []bonus.Situational `json:"reactions,omitempty"`
	ConditionalModifiers []bonus.Situational `json:"conditional_modifiers,omitempty"`
}

// Summarize reads every derived value from s
func Summarize(s *domain.Sheet) *Summary {
	special := s.Special()

	out := &Summary{
		ID:                     s.ID,
		OwnerID:                s.OwnerID,
		Name:                   s.Name,
		TotalPoints:            s.TotalPoints(),
		Points:                 s.Points(),
		SpentPoints:            s.SpentPoints(),
		UnspentPoints:          s.UnspentPoints(),
		WeightCarried:          s.WeightCarried(false).String(),
		WeightCarriedForSkills: s.WeightCarried(true).String(),
		WealthCarried:          s.WealthCarried(),
		WealthNotCarried:       s.WealthNotCarried(),
		Encumbrance:            s.EncumbranceLevel(false).String(),
		EncumbranceForSkills:   s.EncumbranceLevel(true).String(),
		Thrust:                 s.Thrust().String(),
		Swing:                  s.Swing().String(),
		BasicLift:              s.BasicLift().String(),
		Lifts: map[string]string{
			"one_handed":     s.OneHandedLift().String(),
			"two_handed":     s.TwoHandedLift().String(),
			"shove":          s.ShoveAndKnockOver().String(),
			"running_shove":  s.RunningShoveAndKnockOver().String(),
			"carry_on_back":  s.CarryOnBack().String(),
			"shift_slightly": s.ShiftSlightly().String(),
		},
		Special:              special,
		Reactions:            s.Reactions(),
		ConditionalModifiers: s.ConditionalModifiers(),
	}

	for _, def := range s.Attributes().Defs() {
		a := AttributeSummary{
			ID:     def.ID,
			Name:   def.Name,
			Value:  s.AttributeValue(def.ID),
			Points: s.AttributePoints(def.ID),
		}
		if def.Type == attribute.Pool {
			current := s.AttributeCurrent(def.ID)
			a.Current = &current
			if t := s.AttributeThreshold(def.ID); t != nil {
				a.Threshold = t.State
			}
		}
		out.Attributes = append(out.Attributes, a)
	}

	for _, level := range encumbrance.All() {
		out.EncumbranceTable = append(out.EncumbranceTable, EncumbranceRow{
			Level:        level.String(),
			Move:         s.Move(level),
			Dodge:        s.Dodge(level),
			MaximumCarry: s.MaximumCarry(level).String(),
		})
	}

	for _, lvl := range s.SkillLevels() {
		out.Skills = append(out.Skills, SkillSummary{
			ID:             lvl.Row.ID,
			Name:           lvl.Row.Name,
			Specialization: lvl.Row.Specialization,
			Attribute:      lvl.Attribute,
			Level:          lvl.Level,
			RelativeLevel:  lvl.RelativeLevel,
			Points:         lvl.Row.Points,
		})
	}

	for _, w := range s.Weapons() {
		out.Weapons = append(out.Weapons, WeaponSummary{
			Name:    w.Row.Name,
			Usage:   w.Weapon.Usage,
			Skill:   w.Weapon.Skill,
			Damage:  w.Damage.String(),
			Sources: w.Sources,
		})
	}

	return out
}

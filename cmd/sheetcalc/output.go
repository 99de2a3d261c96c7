package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/events"
	sheetsvc "github.com/KirkDiggler/gurps-sheet-engine/internal/services/sheet"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(w io.Writer, s *sheetsvc.Summary, asJSON bool) error {
	if asJSON {
		return printJSON(w, s)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t(%s)\n", s.Name, s.ID)
	fmt.Fprintf(tw, "Points\t%d spent, %d unspent of %d\n", s.SpentPoints, s.UnspentPoints, s.TotalPoints)
	fmt.Fprintf(tw, "\tattributes %d, advantages %d, disadvantages %d, quirks %d, skills %d, spells %d\n",
		s.Points.Attributes, s.Points.Advantages, s.Points.Disadvantages, s.Points.Quirks, s.Points.Skills, s.Points.Spells)
	fmt.Fprintln(tw)

	for _, a := range s.Attributes {
		line := fmt.Sprintf("%s\t%g\t[%d]", a.Name, a.Value, a.Points)
		if a.Current != nil {
			line += fmt.Sprintf("\tcurrent %d", *a.Current)
			if a.Threshold != "" {
				line += " (" + a.Threshold + ")"
			}
		}
		fmt.Fprintln(tw, line)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Thrust\t%s\n", s.Thrust)
	fmt.Fprintf(tw, "Swing\t%s\n", s.Swing)
	fmt.Fprintf(tw, "Basic Lift\t%s\n", s.BasicLift)
	fmt.Fprintf(tw, "Carried\t%s (%s for skills), $%g\n", s.WeightCarried, s.WeightCarriedForSkills, s.WealthCarried)
	fmt.Fprintf(tw, "Not carried\t$%g\n", s.WealthNotCarried)
	fmt.Fprintf(tw, "Encumbrance\t%s (%s for skills)\n", s.Encumbrance, s.EncumbranceForSkills)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Level\tMove\tDodge\tMax Carry")
	for _, row := range s.EncumbranceTable {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", row.Level, row.Move, row.Dodge, row.MaximumCarry)
	}

	if len(s.Skills) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Skill\tLevel\tRelative\tPoints")
		for _, sk := range s.Skills {
			name := sk.Name
			if sk.Specialization != "" {
				name += " (" + sk.Specialization + ")"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s%+d\t[%d]\n", name, sk.Level, strings.ToUpper(sk.Attribute), sk.RelativeLevel, sk.Points)
		}
	}
	if len(s.Weapons) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Weapon\tUsage\tDamage")
		for _, w := range s.Weapons {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", w.Name, w.Usage, w.Damage)
		}
	}
	fmt.Fprintln(tw)

	for _, r := range s.Reactions {
		fmt.Fprintf(tw, "Reaction\t%+d %s\n", r.Amount, r.Situation)
	}
	for _, c := range s.ConditionalModifiers {
		fmt.Fprintf(tw, "Conditional\t%+d %s\n", c.Amount, c.Situation)
	}
	return tw.Flush()
}

func printChanges(w io.Writer, changes []events.Change, asJSON bool) error {
	if asJSON {
		if changes == nil {
			changes = []events.Change{}
		}
		return printJSON(w, changes)
	}
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "No derived values changed")
		return err
	}
	for _, c := range changes {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			return err
		}
	}
	return nil
}

func printAttribute(w io.Writer, a *sheetsvc.AttributeSummary, asJSON bool) error {
	if asJSON {
		return printJSON(w, a)
	}
	if a.Current != nil {
		_, err := fmt.Fprintf(w, "%s: %g (current %d) [%d]\n", a.Name, a.Value, *a.Current, a.Points)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %g [%d]\n", a.Name, a.Value, a.Points)
	return err
}

// withSuggestion appends a "did you mean" hint carried in the error metadata
func withSuggestion(err error) error {
	if suggestion, ok := sheeterr.GetMeta(err)[sheeterr.MetaSuggestion].(string); ok {
		return fmt.Errorf("%w (did you mean %q?)", err, suggestion)
	}
	return err
}

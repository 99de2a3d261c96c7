package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/config"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/dice"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/sheet"
	sheetsvc "github.com/KirkDiggler/gurps-sheet-engine/internal/services/sheet"
)

func newRootCmd() *cobra.Command {
	var (
		a       *app
		asJSON  bool
		ownerID string
		unequip bool
		disable bool
	)
	roller := dice.NewRandomRoller()

	rootCmd := &cobra.Command{
		Use:          "sheetcalc",
		Short:        "Resolve and store GURPS character sheets",
		Long:         `sheetcalc reads GURPS character sheet documents, resolves every attribute, bonus and derived value, and keeps sheets in Redis when REDIS_URL is set.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a, err = newApp(cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	calcCmd := &cobra.Command{
		Use:   "calc [file]",
		Short: "Resolve a sheet document and print its derived values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, live, err := a.loadFile(args[0])
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), sheetsvc.Summarize(live), asJSON)
		},
	}

	saveCmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Validate a sheet document and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := a.loadFile(args[0])
			if err != nil {
				return err
			}
			if ownerID != "" {
				doc.OwnerID = ownerID
			}
			summary, err := a.service.Create(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved sheet %s (%s)\n", summary.ID, summary.Name)
			return nil
		},
	}
	saveCmd.Flags().StringVar(&ownerID, "owner", "", "owner ID, overrides the document's owner_id")

	showCmd := &cobra.Command{
		Use:   "show [sheet-id]",
		Short: "Print the derived values of a stored sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.service.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), summary, asJSON)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list [owner-id]",
		Short: "List the sheets stored for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := a.service.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, s := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d/%d points\n", s.ID, s.Name, s.SpentPoints, s.TotalPoints)
			}
			return nil
		},
	}

	equipCmd := &cobra.Command{
		Use:   "equip [sheet-id] [row-id]",
		Short: "Equip an equipment row, or unequip it with --off",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := a.service.SetEquipped(cmd.Context(), args[0], args[1], !unequip)
			if err != nil {
				return err
			}
			return printChanges(cmd.OutOrStdout(), changes, asJSON)
		},
	}
	equipCmd.Flags().BoolVar(&unequip, "off", false, "unequip instead")

	enableCmd := &cobra.Command{
		Use:   "enable [sheet-id] [row-id]",
		Short: "Enable an advantage row, or disable it with --off",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := a.service.SetEnabled(cmd.Context(), args[0], args[1], !disable)
			if err != nil {
				return err
			}
			return printChanges(cmd.OutOrStdout(), changes, asJSON)
		},
	}
	enableCmd.Flags().BoolVar(&disable, "off", false, "disable instead")

	quantityCmd := &cobra.Command{
		Use:   "quantity [sheet-id] [row-id] [count]",
		Short: "Change how many of an equipment row are carried",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid count %q: %w", args[2], err)
			}
			changes, err := a.service.SetQuantity(cmd.Context(), args[0], args[1], count)
			if err != nil {
				return err
			}
			return printChanges(cmd.OutOrStdout(), changes, asJSON)
		},
	}

	attrCmd := &cobra.Command{
		Use:   "attr [sheet-id] [attribute-id]",
		Short: "Print one resolved attribute",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			attr, err := a.service.Attribute(cmd.Context(), args[0], args[1])
			if err != nil {
				return withSuggestion(err)
			}
			return printAttribute(cmd.OutOrStdout(), attr, asJSON)
		},
	}

	rollCmd := &cobra.Command{
		Use:       "roll [sheet-id|file] [thrust|swing]",
		Short:     "Roll a sheet's thrust or swing damage",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"thrust", "swing"},
		RunE: func(cmd *cobra.Command, args []string) error {
			live, err := resolveSheet(cmd, a, args[0])
			if err != nil {
				return err
			}

			var expr dice.Dice
			switch strings.ToLower(args[1]) {
			case "thrust":
				expr = live.Thrust()
			case "swing":
				expr = live.Swing()
			default:
				return fmt.Errorf("unknown damage type %q, want thrust or swing", args[1])
			}

			result, err := dice.Roll(roller, expr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v = %d\n", args[1], expr, result.Rolls, result.Scaled)
			return nil
		},
	}

	rootCmd.AddCommand(calcCmd, saveCmd, showCmd, listCmd, equipCmd, enableCmd, quantityCmd, attrCmd, rollCmd)
	return rootCmd
}

// resolveSheet treats ref as a path when a file exists there and as a stored
// sheet id otherwise
func resolveSheet(cmd *cobra.Command, a *app, ref string) (*sheet.Sheet, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		_, live, err := a.loadFile(ref)
		return live, err
	}
	return a.service.Load(cmd.Context(), ref)
}

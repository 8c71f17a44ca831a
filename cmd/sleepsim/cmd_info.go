package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/simulation"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version, "commit": commit})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sleepsim version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}

type recipeInfo struct {
	Name        string  `json:"name"`
	Size        int     `json:"size"`
	Value       int     `json:"value"`
	Bonus       float64 `json:"bonus"`
	Ingredients string  `json:"ingredients"`
}

func newRecipesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes <curry|salad|dessert>",
		Short: "List the recipes of a meal type, best first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := gamedata.ParseMealType(args[0])
			if err != nil {
				return err
			}
			svc, _, err := newService(cmd, "")
			if err != nil {
				return err
			}
			c := svc.Catalog

			var rows []recipeInfo
			for _, r := range c.RecipesFor(mt) {
				parts := make([]string, len(r.Ingredients))
				for i, ia := range r.Ingredients {
					parts[i] = fmt.Sprintf("%s x%g", c.Ingredients[ia.Ingredient].Name, ia.Amount)
				}
				rows = append(rows, recipeInfo{Name: r.Name, Size: r.Size, Value: r.Value, Bonus: r.Bonus, Ingredients: strings.Join(parts, ", ")})
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-32s %5s %7s %6s  %s\n", "Recipe", "Size", "Value", "Bonus", "Ingredients")
			fmt.Fprintf(out, "%-32s %5s %7s %6s  %s\n", strings.Repeat("-", 32), "-----", "-------", "------", "-----------")
			for _, r := range rows {
				fmt.Fprintf(out, "%-32s %5d %7d %5.0f%%  %s\n", r.Name, r.Size, r.Value, r.Bonus, r.Ingredients)
			}
			return nil
		},
	}
}

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rules as an editable YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("output")
			svc, _, err := newService(cmd, "")
			if err != nil {
				return err
			}
			if path != "" {
				return svc.Config.WriteYAML(path)
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), svc.Config.Rules())
			}
			data, err := svc.Config.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func printSimple(cmd *cobra.Command, members []simulation.SimpleMemberResult, team float64) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-16s %10s %12s %8s %10s\n", "Member", "Berries", "Ingredients", "Procs", "Strength")
	fmt.Fprintf(out, "%-16s %10s %12s %8s %10s\n", "----------------", "----------", "------------", "--------", "----------")
	for _, m := range members {
		name := m.ExternalID
		if name == "" {
			name = m.Species
		}
		fmt.Fprintf(out, "%-16s %10.1f %12.1f %8.2f %10.0f\n", name, m.Berries, m.Ingredients, m.SkillProcs, m.Strength)
	}
	fmt.Fprintf(out, "%-16s %10s %12s %8s %10s\n", "----------------", "----------", "------------", "--------", "----------")
	fmt.Fprintf(out, "%-16s %10s %12s %8s %10.0f\n", "TEAM", "", "", "", team)
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/report"
)

const teamHelp = `The team file ('-' reads stdin) looks like:

  iterations: 1000
  settings:
    camp: false
    bedtime: "23:00"
    wakeup: "07:00"
    meal_type: curry
    pot_size: 57
  members:
    - species: PIKACHU
      level: 60
      ingredients: [FANCY_APPLE, WARMING_GINGER, FANCY_EGG]
      nature: ADAMANT
      subskills: [HELPING_SPEED_M, BERRY_FINDING_S]
      skill_level: 4`

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <team.yaml>",
		Short: "Run the Monte Carlo simulation for a team",
		Long:  "Run the Monte Carlo simulation for a team.\n\n" + teamHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cachePath, _ := cmd.Flags().GetString("cache")
			csvDir, _ := cmd.Flags().GetString("csv")
			events, _ := cmd.Flags().GetBool("events")
			iterations, _ := cmd.Flags().GetInt("iterations")
			workers, _ := cmd.Flags().GetInt("workers")
			simple, _ := cmd.Flags().GetBool("simple")

			svc, closeCache, err := newService(cmd, cachePath)
			if err != nil {
				return err
			}
			defer closeCache()
			if cmd.Flags().Changed("workers") {
				svc.Config.Simulation.Workers = workers
			}

			req, err := loadRequest(cmd, args[0])
			if err != nil {
				return err
			}
			if iterations > 0 {
				req.Team.Iterations = iterations
			}
			req.EventLog = events

			resp, err := svc.Simulate(cmd.Context(), req)
			if err != nil {
				return err
			}

			if csvDir != "" {
				if err := report.WriteDir(csvDir, resp.Results, resp.Events); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote CSV files to %s\n", csvDir)
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput(cmd) && simple:
				return writeJSON(out, resp.Simple)
			case jsonOutput(cmd):
				return writeJSON(out, resp)
			case simple:
				printSimple(cmd, resp.Simple.Members, resp.Simple.TeamStrength)
			default:
				fmt.Fprint(out, report.FormatResults(resp.Results))
			}
			if resp.Cached {
				fmt.Fprintln(cmd.ErrOrStderr(), "(cached)")
			}
			return nil
		},
	}
	cmd.Flags().Int("iterations", 0, "Override the team file's iteration count")
	cmd.Flags().Int("workers", 0, "Parallel workers (0 = one per CPU)")
	cmd.Flags().String("cache", "", "SQLite file caching finished results")
	cmd.Flags().String("csv", "", "Also write CSV files into this directory")
	cmd.Flags().Bool("events", false, "Record the event log (single worker, written with --csv or --json)")
	cmd.Flags().Bool("simple", false, "Only print per-member totals")
	return cmd
}

func newIVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iv <team.yaml> <member-id>",
		Short: "Simulate a team and report one member's share",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeCache, err := newService(cmd, "")
			if err != nil {
				return err
			}
			defer closeCache()

			req, err := loadRequest(cmd, args[0])
			if err != nil {
				return err
			}
			iv, err := svc.IV(cmd.Context(), req, args[1])
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), iv)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s -> %.0f\n", iv.Member.Species, iv.Member.Strength.Total())
			fmt.Fprintf(out, "Ingredient share: %.1f%%\n", iv.IngredientShare*100)
			fmt.Fprintf(out, "Strength share: %.1f%%\n", iv.StrengthShare*100)
			fmt.Fprintf(out, "Team: %.0f\n", iv.TeamStrength.Mean)
			return nil
		},
	}
	return cmd
}

func newExpectedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expected <team.yaml> [member]",
		Short: "Estimate one member's day without rolling for helps",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			member := 0
			if len(args) == 2 {
				var err error
				if member, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid member index %q", args[1])
				}
			}

			svc, closeCache, err := newService(cmd, "")
			if err != nil {
				return err
			}
			defer closeCache()

			req, err := loadRequest(cmd, args[0])
			if err != nil {
				return err
			}
			e, err := svc.Expected(req, member)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), e)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.FormatExpected(e))
			return nil
		},
	}
	return cmd
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/config"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/logging"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/service"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/store"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sleepsim",
		Short: "Team production and cooking simulator",
		Long: `sleepsim simulates a week of helping, skill activations and cooking
for a team of up to five helpers and reports each member's expected output
and strength.

Teams are described in YAML or JSON; see 'sleepsim simulate --help'.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("rules", "", "Rules file overriding the built-in defaults")
	rootCmd.PersistentFlags().String("data", "", "Game data file (default: embedded)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newExpectedCmd(),
		newIVCmd(),
		newRecipesCmd(),
		newRulesCmd(),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService builds a service from the global flags. cachePath may be empty.
func newService(cmd *cobra.Command, cachePath string) (*service.Service, func(), error) {
	level, _ := cmd.Flags().GetString("log-level")
	rules, _ := cmd.Flags().GetString("rules")
	data, _ := cmd.Flags().GetString("data")

	logger := logging.NewLogger(level, cmd.ErrOrStderr())
	svc, err := service.New(rules, data, logger)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {}
	if cachePath != "" {
		cache, err := store.Open(cmd.Context(), cachePath)
		if err != nil {
			return nil, nil, err
		}
		svc.Cache = cache
		closer = func() { cache.Close() }
	}
	return svc, closer, nil
}

func loadRequest(cmd *cobra.Command, path string) (service.Request, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return service.Request{}, fmt.Errorf("reading team file: %w", err)
	}
	tf, err := config.ParseTeam(data)
	if err != nil {
		return service.Request{}, err
	}
	return service.Request{Team: tf}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonOutput(cmd *cobra.Command) bool {
	j, _ := cmd.Flags().GetBool("json")
	return j
}

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"harmonia/internal/config"
	"harmonia/internal/logging"
	"harmonia/internal/reconcile"
	"harmonia/internal/store"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Run a matching pass for one provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				return fmt.Errorf("--provider is required")
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return err
				}

				stats, err := reconcile.New(cfg, st, logger).Run(cmd.Context(), provider)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s (%s) finished in %s\n", stats.RunID, stats.Provider, stats.Elapsed.Round(timePrecision))
				fmt.Fprintf(out, "Tracks: %d  Files: %d  Previously matched: %d  New matches: %d\n",
					stats.Tracks, stats.Files, stats.PreviouslyMatched, stats.NewMatches)

				names := make([]string, 0, len(stats.PerStrategy))
				for name := range stats.PerStrategy {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %s: %d\n", name, stats.PerStrategy[name])
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider namespace to reconcile")
	return cmd
}

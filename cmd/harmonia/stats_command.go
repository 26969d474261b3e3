package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"harmonia/internal/config"
	"harmonia/internal/matching"
	"harmonia/internal/store"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var provider string
	var byTier bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show match counts grouped by confidence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				var scope *string
				if provider != "" {
					scope = &provider
				}

				total, err := st.CountMatches(cmd.Context(), scope)
				if err != nil {
					return err
				}

				var rows [][]string
				if byTier {
					counts, err := st.MatchTierCounts(cmd.Context(), scope)
					if err != nil {
						return err
					}
					for _, tier := range []matching.Tier{
						matching.TierCertain, matching.TierHigh,
						matching.TierModerate, matching.TierLow,
					} {
						if count, ok := counts[tier]; ok {
							rows = append(rows, []string{string(tier), strconv.Itoa(count)})
						}
					}
				} else {
					counts, err := st.MatchConfidenceCounts(cmd.Context(), scope)
					if err != nil {
						return err
					}
					methods := make([]string, 0, len(counts))
					for method := range counts {
						methods = append(methods, method)
					}
					sort.Strings(methods)
					for _, method := range methods {
						rows = append(rows, []string{method, strconv.Itoa(counts[method])})
					}
				}

				out := cmd.OutOrStdout()
				label := "all providers"
				if scope != nil {
					label = provider
				}
				fmt.Fprintf(out, "Matches (%s): %d\n", label, total)

				header := "method"
				if byTier {
					header = "tier"
				}
				if stdoutIsTerminal() {
					fmt.Fprintln(out, renderTable(
						[]string{header, "count"},
						rows,
						[]columnAlignment{alignLeft, alignRight},
					))
					return nil
				}
				for _, row := range rows {
					fmt.Fprintf(out, "%s=%s\n", row[0], row[1])
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Restrict counts to one provider")
	cmd.Flags().BoolVar(&byTier, "by-tier", false, "Fold method details down to confidence tiers")
	return cmd
}

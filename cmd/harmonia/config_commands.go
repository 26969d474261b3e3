package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"harmonia/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "library_dir = %s\n", cfg.Paths.LibraryDir)
			fmt.Fprintf(out, "data_dir = %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "log_dir = %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "database = %s\n", cfg.DatabasePath())
			fmt.Fprintf(out, "lock_timeout = %ds\n", cfg.Database.LockTimeout)
			fmt.Fprintf(out, "fuzzy_threshold = %.2f\n", cfg.Matching.FuzzyThreshold)
			fmt.Fprintf(out, "duration_tolerance = %ds\n", cfg.Matching.DurationTolerance)
			fmt.Fprintf(out, "use_year = %t\n", cfg.Matching.UseYear)
			fmt.Fprintf(out, "strategies = %s\n", strings.Join(cfg.Matching.Strategies, ", "))
			fmt.Fprintf(out, "max_candidates_per_track = %d\n", cfg.Matching.MaxCandidatesPerTrack)
			fmt.Fprintf(out, "skip_unknown_duration = %t\n", cfg.Matching.SkipUnknownDuration)
			fmt.Fprintf(out, "log_format = %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "log_level = %s\n", cfg.Logging.Level)
			return nil
		},
	}
}

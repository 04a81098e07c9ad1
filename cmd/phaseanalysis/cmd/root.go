package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const (
	// DefaultConfigDir holds config.yaml, the base configuration every run starts from.
	DefaultConfigDir = "./config/phaseanalysis"

	configFlag    = "config"
	configDirFlag = "configDir"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "phaseanalysis",
		Short:        "phaseanalysis finds pairs of HPC jobs with similar I/O behaviour.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringSlice(
		configFlag,
		[]string{},
		"Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)",
	)
	cmd.PersistentFlags().String(configDirFlag, DefaultConfigDir, "Directory holding the base config.yaml")

	cmd.AddCommand(
		runCmd(),
		migrateCmd(),
		compareCmd(),
		versionCmd(),
	)

	return cmd
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mistral-io/phaseanalysis/internal/common/build"
)

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 1, 1, ' ', 0)
			fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
			fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
			fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
			fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
			return w.Flush()
		},
	}
	return cmd
}

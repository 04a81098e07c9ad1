package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mistral-io/phaseanalysis/internal/common/app"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/sink"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the output tables of the configured database sinks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return sink.Migrate(app.CreateContextWithShutdown(), c.Output)
		},
	}
	return cmd
}

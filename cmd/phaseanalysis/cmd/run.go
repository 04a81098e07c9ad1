package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mistral-io/phaseanalysis/internal/common/app"
	"github.com/mistral-io/phaseanalysis/internal/common/config"
	"github.com/mistral-io/phaseanalysis/internal/common/logging"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compare every pair of jobs in the dataset and write out the similar pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := app.CreateContextWithShutdown()
			_, err = phaseanalysis.Run(ctx, c)
			if err != nil {
				logging.WithStacktrace(ctx.Log, err).Error("Analysis failed")
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("dataset", "", "Path of the CSV dataset to analyse")
	flags.String("output", "", "Path of the CSV file to write similar pairs to")
	flags.StringSlice("sinks", []string{}, "Output destinations, any of csv, sqlite, postgres and clickhouse")
	flags.Int("nrows", 0, "Maximum number of jobs to compare")
	flags.Int("batchSize", 0, "Number of published batches per reporting cycle")
	flags.Float64("minSimilarity", 0, "Minimum similarity for a pair to be written")
	flags.Int("workers", 0, "Number of comparison workers, 0 for one per CPU")
	flags.Bool("gateOnChannels", false, "Let channel similarity alone qualify a pair")

	config.AnnotateConfigKey(flags, "dataset", "dataset.path")
	config.AnnotateConfigKey(flags, "output", "output.csv.path")
	config.AnnotateConfigKey(flags, "sinks", "output.sinks")
	config.AnnotateConfigKey(flags, "nrows", "nrows")
	config.AnnotateConfigKey(flags, "batchSize", "batchSize")
	config.AnnotateConfigKey(flags, "minSimilarity", "minSimilarity")
	config.AnnotateConfigKey(flags, "workers", "numWorkers")
	config.AnnotateConfigKey(flags, "gateOnChannels", "gateOnChannels")

	return cmd
}

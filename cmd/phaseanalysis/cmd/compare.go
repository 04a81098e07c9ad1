package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/phases"
	"github.com/mistral-io/phaseanalysis/internal/similarity"
	"github.com/mistral-io/phaseanalysis/pkg/coding"
)

func compareCmd() *cobra.Command {
	var minPhaseLength int
	cmd := &cobra.Command{
		Use:   "compare <coding> <coding>",
		Short: "Score the similarity of two codings, e.g. compare 256:256:0:0:38 256:0:0:38",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := coding.Decode(args[0])
			if err != nil {
				return errors.WithMessage(err, "first coding")
			}
			b, err := coding.Decode(args[1])
			if err != nil {
				return errors.WithMessage(err, "second coding")
			}
			detector := phases.NewDetector(minPhaseLength)
			pa, pb := detector.Detect(a), detector.Detect(b)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 1, 1, ' ', 0)
			fmt.Fprintf(w, "Edit distance:\t%d\n", similarity.EditDistance(a, b))
			fmt.Fprintf(w, "Similarity:\t%.3f\n", similarity.Similarity1D(a, b))
			fmt.Fprintf(w, "Phases:\t%d / %d\n", len(pa), len(pb))
			fmt.Fprintf(w, "Phase similarity:\t%.3f\n", phases.JobSimilarity(pa, pb))
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&minPhaseLength, "minPhaseLength", 1, "Runs of activity shorter than this are not phases")
	return cmd
}

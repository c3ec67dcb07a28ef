package main

import (
	"fmt"

	"github.com/lyra-ai/mentor/internal/abtest"
	"github.com/spf13/cobra"
)

func newSampleSizeCommand() *cobra.Command {
	var lift float64

	cmd := &cobra.Command{
		Use:   "samplesize <current-rate>",
		Short: "Estimate recipients per version for an email A/B test",
		Long: `Estimate how many recipients each version of an A/B test needs.

The current rate is read from the leading percentage, so "22% open rate"
and "3.5" both work. Results are clamped to 500-10000.`,
		Example: `  mentor samplesize "22% open rate"
  mentor samplesize 3.5% --lift 0.3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := abtest.ParseRate(args[0])
			if err != nil {
				return err
			}
			n := abtest.EstimateSampleSize(rate, lift)
			fmt.Fprintf(cmd.OutOrStdout(), "%d recipients per version\n", n) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().Float64Var(&lift, "lift", abtest.DefaultLift, "Relative lift to detect")
	return cmd
}

package main

import (
	"fmt"

	"github.com/lyra-ai/mentor/internal/abtest"
	"github.com/lyra-ai/mentor/internal/export"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/spf13/cobra"
)

func newSuggestCommand() *cobra.Command {
	var (
		scenarioID string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <element>",
		Short: "Suggest A/B test variations for an email element",
		Long: `Suggest three A/B test variations for one element of an email.

Elements: subject, cta, opening, format. With a configured generator the
variations are tailored to the scenario; otherwise built-in examples are
shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			element, err := abtest.FindElement(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var sc models.Scenario
			if scenarioID != "" {
				r, err := resolveRubric(cfg, "abtest")
				if err != nil {
					return err
				}
				var ok bool
				if sc, ok = r.Scenario(scenarioID); !ok {
					return fmt.Errorf("rubric %s has no scenario %q", r.Name, scenarioID)
				}
			}

			gen, closeGen, err := newGenerator(cfg)
			if err != nil {
				return err
			}
			defer closeGen() //nolint:errcheck

			s := abtest.Suggest(cmd.Context(), gen, element, sc)
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := export.FormatJSON(s.Variations)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data)) //nolint:errcheck
				return nil
			}

			fmt.Fprintf(out, "\n%s: %s\n", element.Name, element.Description) //nolint:errcheck
			if s.Fallback {
				fmt.Fprintln(out, "(built-in examples)") //nolint:errcheck
			}
			for i, v := range s.Variations {
				fmt.Fprintf(out, "\n%d. A: %s\n   B: %s\n   Why: %s\n", i+1, v.A, v.B, v.Hypothesis) //nolint:errcheck
			}
			fmt.Fprintln(out) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioID, "scenario", "", "abtest scenario id to tailor suggestions to")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print variations as JSON")
	return cmd
}

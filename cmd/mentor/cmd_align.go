package main

import (
	"fmt"
	"strings"

	"github.com/lyra-ai/mentor/internal/alignment"
	"github.com/lyra-ai/mentor/internal/export"
	"github.com/spf13/cobra"
)

func newAlignCommand() *cobra.Command {
	var (
		engaged []string
		vision  string
		asJSON  bool
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "align [scenario] [strategy]",
		Short: "Score stakeholder alignment for a change strategy",
		Long: `Score how well a change strategy aligns the stakeholders of a scenario.

Each stakeholder contributes the strategy's effectiveness for their stance,
plus a bonus when engaged, weighted by influence. A vision statement longer
than 50 characters adds a further bonus. Use --list to see the scenarios
and strategies.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list || len(args) < 2 {
				printAlignmentCatalog(cmd)
				if !list {
					return fmt.Errorf("a scenario and a strategy are required")
				}
				return nil
			}

			sc, err := alignment.FindScenario(args[0])
			if err != nil {
				return err
			}
			st, err := alignment.FindStrategy(args[1])
			if err != nil {
				return err
			}

			actions := alignment.EngageAll(sc)
			if cmd.Flags().Changed("engage") {
				selected := map[string]string{}
				for _, id := range engaged {
					resp, ok := actions[id]
					if !ok {
						return fmt.Errorf("scenario %s has no stakeholder %q", sc.ID, id)
					}
					selected[id] = resp
				}
				actions = selected
			}

			res := alignment.Calculate(sc, st, actions, vision)
			if asJSON {
				data, err := export.FormatJSON(res)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data)) //nolint:errcheck
				return nil
			}

			fmt.Fprintf(out, "\n%s with %q: %d/100\n\n", sc.Title, st.Name, res.Score) //nolint:errcheck
			for _, sh := range res.Stakeholders {
				mark := " "
				if sh.Engaged {
					mark = "✓"
				}
				fmt.Fprintf(out, "  %s %s %3d  %s\n", mark, padRight(truncateName(sh.Name, 24), 24), sh.Alignment, sh.Category) //nolint:errcheck
			}
			if res.VisionBonus {
				fmt.Fprintf(out, "\n  +%d for a clear vision statement\n", alignment.VisionBonus) //nolint:errcheck
			}
			fmt.Fprintln(out) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&engaged, "engage", nil, "Stakeholder ids to engage (default: all)")
	cmd.Flags().StringVar(&vision, "vision", "", "Vision statement for the change")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&list, "list", false, "List scenarios and strategies")

	return cmd
}

func printAlignmentCatalog(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Scenarios:") //nolint:errcheck
	for _, sc := range alignment.Scenarios() {
		var ids []string
		for _, sh := range sc.Stakeholders {
			ids = append(ids, sh.ID)
		}
		fmt.Fprintf(out, "  %-16s %s (stakeholders: %s)\n", sc.ID, sc.Title, strings.Join(ids, ", ")) //nolint:errcheck
	}
	fmt.Fprintln(out, "Strategies:") //nolint:errcheck
	for _, st := range alignment.Strategies() {
		fmt.Fprintf(out, "  %-16s %s\n", st.ID, st.Name) //nolint:errcheck
	}
}

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mentor",
		Short: "Mentor - practice and score professional writing",
		Long: `Mentor scores drafts against rubrics of weighted heuristic criteria and
walks you through practice scenarios one at a time.

Scores are deterministic and computed offline. An optional language model
(OpenAI or GitHub Copilot) adds coaching and A/B test suggestions; without
one, built-in advice is used.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newRubricsCommand())
	cmd.AddCommand(newPracticeCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newAlignCommand())
	cmd.AddCommand(newSampleSizeCommand())
	cmd.AddCommand(newSuggestCommand())
	cmd.AddCommand(newPrefsCommand())
	cmd.AddCommand(newMCPCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

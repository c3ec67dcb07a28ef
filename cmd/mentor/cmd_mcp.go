package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lyra-ai/mentor/internal/mcp"
	"github.com/lyra-ai/mentor/internal/rubrics"
	"github.com/spf13/cobra"
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server on stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout so assistants and
editors can score text with mentor's rubrics.

Tools:
  score_text              Score a draft against a rubric
  list_rubrics            List the built-in rubrics
  estimate_sample_size    Recipients per version for an email A/B test
  stakeholder_alignment   Score a change strategy against a scenario`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dirs := cfg.RubricDirs()

			// stdout carries the protocol, so logs go to stderr.
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			s := mcp.New(mcp.Options{
				Version:       version,
				DefaultRubric: cfg.Scoring.Rubric,
				Resolve: func(ref string) (*rubrics.Rubric, error) {
					return rubrics.ResolveIn(ref, dirs)
				},
				Logger: logger,
			})

			fmt.Fprintln(os.Stderr, "MCP server running on stdio")
			return mcp.ServeStdio(s)
		},
	}
}

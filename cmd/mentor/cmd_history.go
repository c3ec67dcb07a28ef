package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lyra-ai/mentor/internal/session"
	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "View practice session logs",
		Long: `View practice session event logs.

Logs are NDJSON files written by "mentor practice" when session logging is
enabled. They record session start, each scenario, every analysis, and
completion.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryViewCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded practice logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				dir = cfg.SessionDir()
			}

			out := cmd.OutOrStdout()
			files, err := session.ListLogs(dir)
			if errors.Is(err, os.ErrNotExist) || (err == nil && len(files) == 0) {
				fmt.Fprintln(out, "No practice logs found.") //nolint:errcheck
				return nil
			}
			if err != nil {
				return fmt.Errorf("listing practice logs: %w", err)
			}

			fmt.Fprintf(out, "%-48s %-8s %s\n", "File", "Events", "Modified") //nolint:errcheck
			fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────────────")
			for _, f := range files {
				fmt.Fprintf(out, "%-48s %-8d %s\n", f.Name, f.NumEvents, f.ModTime.Format("2006-01-02 15:04:05")) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to search (default: session.log_dir from .mentor.yaml)")

	return cmd
}

func newHistoryViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <log-file>",
		Short: "Show a practice session timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := session.ReadEvents(args[0])
			if err != nil {
				return fmt.Errorf("reading practice log: %w", err)
			}
			session.RenderTimeline(cmd.OutOrStdout(), events)
			return nil
		},
	}
}

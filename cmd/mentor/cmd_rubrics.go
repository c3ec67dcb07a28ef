package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lyra-ai/mentor/internal/export"
	"github.com/lyra-ai/mentor/internal/rubrics"
	"github.com/lyra-ai/mentor/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRubricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rubrics",
		Short: "List, inspect and validate rubrics",
		Long: `List, inspect and validate scoring rubrics.

Built-in rubrics are always available. Directories listed under
paths.rubrics in .mentor.yaml are searched for <name>.yaml first.`,
	}

	cmd.AddCommand(newRubricsListCommand())
	cmd.AddCommand(newRubricsShowCommand())
	cmd.AddCommand(newRubricsValidateCommand())

	return cmd
}

func newRubricsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available rubrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s %-10s %-9s %s\n", padRight("Name", 16), "Threshold", "Criteria", "Source")
			fmt.Fprintln(out, strings.Repeat("─", 65))
			for _, name := range rubrics.Builtins() {
				r, err := rubrics.Builtin(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %-10d %-9d %s\n", padRight(r.Name, 16), r.PassThreshold(), len(r.Criteria), "built-in") //nolint:errcheck
			}

			for _, dir := range cfg.RubricDirs() {
				files, err := rubrics.ListDir(dir)
				if err != nil {
					return err
				}
				for _, f := range files {
					r, err := rubrics.Load(f)
					if err != nil {
						fmt.Fprintf(out, "%s %-10s %-9s %s\n", padRight("(invalid)", 16), "-", "-", f) //nolint:errcheck
						continue
					}
					fmt.Fprintf(out, "%s %-10d %-9d %s\n", padRight(r.Name, 16), r.PassThreshold(), len(r.Criteria), f) //nolint:errcheck
				}
			}
			return nil
		},
	}
}

func newRubricsShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <name-or-file>",
		Short: "Print a rubric's criteria and scenarios",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			r, err := resolveRubric(cfg, args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "json":
				data, err = export.FormatJSON(r)
				data = append(data, '\n')
			case "yaml":
				data, err = yaml.Marshal(r)
			default:
				return fmt.Errorf("invalid format %q: must be yaml or json", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml|json")
	return cmd
}

func newRubricsValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check rubric files against the schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, p := range args {
				errs, err := validation.ValidateRubricFile(p)
				if err != nil {
					return err
				}
				if len(errs) == 0 {
					// Schema-valid files can still fail to build criteria.
					if _, err := rubrics.Load(p); err != nil {
						errs = append(errs, err.Error())
					}
				}
				if len(errs) == 0 {
					fmt.Fprintf(out, "✅ %s\n", p) //nolint:errcheck
					continue
				}
				failed++
				fmt.Fprintf(out, "❌ %s\n", p) //nolint:errcheck
				for _, e := range errs {
					fmt.Fprintf(out, "   %s\n", e) //nolint:errcheck
				}
			}
			if failed > 0 {
				return errors.New(pluralize(failed, "rubric") + " failed validation")
			}
			return nil
		},
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lyra-ai/mentor/internal/criteria"
	"github.com/lyra-ai/mentor/internal/export"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/lyra-ai/mentor/internal/notify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type scoreFlags struct {
	rubric   string
	scenario string
	text     string
	fields   map[string]string
	format   string
	gate     bool
	copy     bool
	out      string
}

func newScoreCommand() *cobra.Command {
	flags := &scoreFlags{format: "text"}

	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score a draft against a rubric",
		Long: `Score a draft against a rubric and print per-criterion results.

The draft comes from --text, a file argument, or stdin ("-" or no argument).
Field-based rubrics such as abtest take --field name=value instead.

Use --gate in scripts: the command exits 1 when the score is below the
rubric (or scenario) threshold.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScoreCommand(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.rubric, "rubric", "r", "", "Built-in rubric name or rubric file (default from .mentor.yaml)")
	cmd.Flags().StringVar(&flags.scenario, "scenario", "", "Scenario id whose thresholds apply")
	cmd.Flags().StringVar(&flags.text, "text", "", "Draft text to score")
	cmd.Flags().StringToStringVar(&flags.fields, "field", nil, "Named selection, e.g. --field version_a='Hello' (repeatable)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format: text|json|yaml")
	cmd.Flags().BoolVar(&flags.gate, "gate", false, "Exit 1 when the score is below the threshold")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "Copy a plain-text report to the clipboard")
	cmd.Flags().StringVarP(&flags.out, "output", "o", "", "Also write the report to a file (.json for JSON, .gz to compress)")

	return cmd
}

func runScoreCommand(cmd *cobra.Command, args []string, flags *scoreFlags) error {
	switch flags.format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid format %q: must be text, json or yaml", flags.format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := resolveRubric(cfg, flags.rubric)
	if err != nil {
		return err
	}
	scorer, err := r.Scorer()
	if err != nil {
		return err
	}

	if flags.scenario != "" {
		sc, ok := r.Scenario(flags.scenario)
		if !ok {
			return fmt.Errorf("rubric %s has no scenario %q", r.Name, flags.scenario)
		}
		scorer = scorer.WithThreshold(sc.Thresholds.Pass)
	}

	text, err := readDraft(cmd, args, flags)
	if err != nil {
		return err
	}

	result := scorer.Score(&criteria.Input{Text: text, Fields: flags.fields})

	out := cmd.OutOrStdout()
	switch flags.format {
	case "json":
		data, err := export.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data)) //nolint:errcheck
	case "yaml":
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		_, _ = out.Write(data)
	default:
		renderResult(out, result)
	}

	exportResult(cmd, flags, r.Title, text, result)

	if flags.gate && !result.Passed {
		return &GateFailureError{
			Score:     result.OverallScore,
			Threshold: result.Threshold,
			Critical:  result.Count(models.CategoryCritical),
		}
	}
	return nil
}

// readDraft picks the draft source. Field-only input needs no text.
func readDraft(cmd *cobra.Command, args []string, flags *scoreFlags) (string, error) {
	if flags.text != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("--text and a file argument are mutually exclusive")
		}
		return flags.text, nil
	}
	if len(args) == 0 && len(flags.fields) > 0 {
		return "", nil
	}

	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("reading draft: %w", err)
	}
	return string(data), nil
}

// exportResult is fire-and-forget: failures are reported on stderr and never
// change the exit code.
func exportResult(cmd *cobra.Command, flags *scoreFlags, title, text string, result *models.ScoreResult) {
	if !flags.copy && flags.out == "" {
		return
	}
	n := &notify.Console{W: cmd.ErrOrStderr()}
	ctx := cmd.Context()
	report := export.TextPayload(title, export.FormatText(title, text, result))

	if flags.copy {
		export.Send(ctx, newClipboardSink(), report, n)
	}
	if flags.out != "" {
		p := report
		if isJSONPath(flags.out) {
			data, err := export.FormatJSON(result)
			if err != nil {
				n.Notify(notify.LevelError, err.Error())
				return
			}
			p = export.Payload{Title: title, ContentType: export.ContentJSON, Body: data}
		}
		export.Send(ctx, &export.FileSink{Path: flags.out}, p, n)
	}
}

var newClipboardSink = func() export.Sink { return export.NewClipboardSink() }

func isJSONPath(p string) bool {
	p = strings.TrimSuffix(strings.ToLower(p), ".gz")
	return strings.HasSuffix(p, ".json")
}

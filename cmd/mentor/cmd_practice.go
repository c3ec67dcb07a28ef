package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lyra-ai/mentor/internal/abtest"
	"github.com/lyra-ai/mentor/internal/coach"
	"github.com/lyra-ai/mentor/internal/export"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/lyra-ai/mentor/internal/notify"
	"github.com/lyra-ai/mentor/internal/projectconfig"
	"github.com/lyra-ai/mentor/internal/rubrics"
	"github.com/lyra-ai/mentor/internal/session"
	"github.com/lyra-ai/mentor/internal/spinner"
	"github.com/lyra-ai/mentor/internal/wizard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type practiceFlags struct {
	rubric     string
	sessionLog bool
	copy       bool
	out        string
}

// prompter is the subset of wizard.Prompter the practice loop needs.
type prompter interface {
	Draft(sc models.Scenario, prev wizard.Draft, minChars int) (wizard.Draft, error)
	Next(passed bool, last bool) (wizard.Choice, error)
}

var newPrompter = func(in io.Reader, out io.Writer) prompter {
	return wizard.New(in, out)
}

func newPracticeCommand() *cobra.Command {
	flags := &practiceFlags{}

	cmd := &cobra.Command{
		Use:   "practice [rubric]",
		Short: "Work through a rubric's practice scenarios",
		Long: `Work through a rubric's practice scenarios one at a time.

For each scenario you write a draft, see how it scores, get coaching, and
choose whether to revise or move on. Passed scenarios are saved and
summarized when the session ends.

Enable session.session_log in .mentor.yaml (or pass --session-log) to
record an event log you can replay with "mentor history".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.rubric = args[0]
			}
			return runPracticeCommand(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.sessionLog, "session-log", false, "Record a practice event log")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "Copy the session summary to the clipboard when done")
	cmd.Flags().StringVarP(&flags.out, "output", "o", "", "Write the session summary to a file when done (.json for JSON)")

	return cmd
}

func runPracticeCommand(cmd *cobra.Command, flags *practiceFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := resolveRubric(cfg, flags.rubric)
	if err != nil {
		return err
	}
	if len(r.Scenarios) == 0 {
		return fmt.Errorf("rubric %s has no practice scenarios", r.Name)
	}
	scorer, err := r.Scorer()
	if err != nil {
		return err
	}

	gen, closeGen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	defer closeGen() //nolint:errcheck

	var summary *models.CompletionSummary
	id := session.NewSessionID()
	driver, err := session.NewDriver(session.Config{
		SessionID: id,
		Scenarios: r.Scenarios,
		Scorer:    scorer,
		MinChars:  driverMinChars(cfg, r),
		OnComplete: func(s models.CompletionSummary) {
			summary = &s
		},
	})
	if err != nil {
		return err
	}

	logger, err := practiceLogger(cfg, flags, id)
	if err != nil {
		return err
	}
	sess := session.New(id, r.Name, driver, logger)
	sess.Start(cmd.Context())
	defer sess.Close() //nolint:errcheck

	out := cmd.OutOrStdout()
	toasts := &notify.Console{W: cmd.ErrOrStderr()}
	p := &practice{
		sess:     sess,
		rubric:   r,
		cfg:      cfg,
		prompter: newPrompter(cmd.InOrStdin(), out),
		coach:    coach.New(gen, toasts),
		thinking: gen != nil,
		out:      out,
		errOut:   cmd.ErrOrStderr(),
	}
	if err := p.run(cmd.Context()); err != nil {
		return err
	}

	if summary == nil {
		fmt.Fprintln(out, "\nSession ended early.")                       //nolint:errcheck
		fmt.Fprint(out, export.SummaryText(driver.Summary(sess.State()))) //nolint:errcheck
		return nil
	}

	text := export.SummaryText(*summary)
	fmt.Fprintf(out, "\n🎉 All scenarios complete!\n%s", text) //nolint:errcheck
	exportSummary(cmd.Context(), flags, r.Title, *summary, text, toasts)
	return nil
}

type practice struct {
	sess     *session.Session
	rubric   *rubrics.Rubric
	cfg      *projectconfig.ProjectConfig
	prompter prompter
	coach    *coach.Coach
	thinking bool
	out      io.Writer
	errOut   io.Writer
}

func (p *practice) run(ctx context.Context) error {
	total := len(p.sess.Driver().Scenarios())
	var draft wizard.Draft
	shown := -1

	for {
		st := p.sess.State()
		if st.Phase == session.PhaseComplete {
			return nil
		}
		sc := p.sess.Scenario()
		if st.ScenarioIndex != shown {
			p.present(sc, st.ScenarioIndex, total)
			shown = st.ScenarioIndex
			draft = wizard.Draft{}
		}

		d, err := p.prompter.Draft(sc, draft, minCharsFor(p.cfg, p.rubric, sc))
		if err != nil {
			return err
		}
		draft = d
		p.apply(sc, d)

		st = p.sess.Dispatch(session.Analyze{})
		if st.Phase != session.PhaseAnalyzed {
			fmt.Fprintln(p.out, "That draft isn't ready for analysis yet. Keep going!") //nolint:errcheck
			continue
		}

		renderResult(p.out, st.Result)
		fmt.Fprintf(p.out, "💬 %s\n\n", p.advise(ctx, sc, st.Result)) //nolint:errcheck

		choice, err := p.prompter.Next(st.Result.Passed, st.ScenarioIndex == total-1)
		if err != nil {
			return err
		}
		switch choice {
		case wizard.ChoiceNext:
			p.sess.Dispatch(session.Advance{})
		case wizard.ChoiceRestart:
			p.sess.Dispatch(session.Restart{})
			shown = -1
		case wizard.ChoiceQuit:
			return nil
		}
	}
}

func (p *practice) present(sc models.Scenario, index, total int) {
	title := sc.Title
	if title == "" {
		title = sc.ID
	}
	fmt.Fprintf(p.out, "\n── Scenario %d of %d: %s ──\n\n%s\n", index+1, total, title, sc.Context) //nolint:errcheck
	if sc.Prompt != "" {
		fmt.Fprintf(p.out, "\n%s\n", sc.Prompt) //nolint:errcheck
	}
	for _, c := range sc.Constraints {
		fmt.Fprintf(p.out, "  • %s\n", c) //nolint:errcheck
	}
	if _, ok := sc.Metadata["current"]; ok {
		if n, err := abtest.EstimateForScenario(sc, 0); err == nil {
			fmt.Fprintf(p.out, "\nCurrent performance: %s. Suggested sample size: %d per version.\n", sc.Metadata["current"], n) //nolint:errcheck
		}
	}
	fmt.Fprintln(p.out) //nolint:errcheck
}

// apply replaces the session draft and selections with d.
func (p *practice) apply(sc models.Scenario, d wizard.Draft) {
	p.sess.Dispatch(session.Edit{Text: d.Text})
	for _, name := range sc.Fields {
		p.sess.Dispatch(session.Select{Field: name, Value: d.Fields[name]})
	}
}

func (p *practice) advise(ctx context.Context, sc models.Scenario, result *models.ScoreResult) string {
	stop := func() {}
	if p.thinking && isTerminal(p.errOut) {
		stop = spinner.Start(p.errOut, "Asking your coach...")
	}
	res := p.coach.Advise(ctx, sc, result)
	stop()
	return res.Content
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func driverMinChars(cfg *projectconfig.ProjectConfig, r *rubrics.Rubric) int {
	if r.MinChars > 0 {
		return r.MinChars
	}
	return cfg.Scoring.MinChars
}

// minCharsFor mirrors the driver's rule so the form rejects short drafts
// before they reach it.
func minCharsFor(cfg *projectconfig.ProjectConfig, r *rubrics.Rubric, sc models.Scenario) int {
	if sc.Thresholds.MinChars > 0 {
		return sc.Thresholds.MinChars
	}
	if n := driverMinChars(cfg, r); n > 0 {
		return n
	}
	return session.DefaultMinChars
}

func practiceLogger(cfg *projectconfig.ProjectConfig, flags *practiceFlags, id string) (session.Logger, error) {
	if !flags.sessionLog && !cfg.SessionLogEnabled() {
		return session.NopLogger{}, nil
	}
	l, err := session.NewJSONLogger(session.DefaultLogPath(cfg.SessionDir(), id))
	if err != nil {
		return nil, fmt.Errorf("creating session log: %w", err)
	}
	return l, nil
}

func exportSummary(ctx context.Context, flags *practiceFlags, title string, sum models.CompletionSummary, text string, n notify.Notifier) {
	if title == "" {
		title = "Practice summary"
	}
	if flags.copy {
		export.Send(ctx, newClipboardSink(), export.TextPayload(title, text), n)
	}
	if flags.out == "" {
		return
	}
	p := export.TextPayload(title, text)
	if isJSONPath(flags.out) {
		data, err := export.FormatJSON(sum)
		if err != nil {
			n.Notify(notify.LevelError, err.Error())
			return
		}
		p = export.Payload{Title: title, ContentType: export.ContentJSON, Body: data}
	}
	export.Send(ctx, &export.FileSink{Path: flags.out}, p, n)
}

// Package wizard collects drafts and navigation choices from the learner
// with huh forms.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/huh"
	"github.com/lyra-ai/mentor/internal/models"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Draft is what the learner submitted for one scenario.
type Draft struct {
	Text   string
	Fields map[string]string
}

// Choice is what to do after an analysis.
type Choice string

const (
	ChoiceNext    Choice = "next"
	ChoiceRevise  Choice = "revise"
	ChoiceRestart Choice = "restart"
	ChoiceQuit    Choice = "quit"
)

// Prompter runs forms against a reader and writer.
type Prompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

// New returns a Prompter. Input that is not a terminal (tests, pipes) gets
// huh's accessible line-based mode.
func New(in io.Reader, out io.Writer) *Prompter {
	f, ok := in.(*os.File)
	return &Prompter{
		in:         in,
		out:        out,
		accessible: !ok || !term.IsTerminal(int(f.Fd())),
	}
}

// Draft asks for the scenario's draft text, or for each of its fields when
// it names any. prev pre-fills the form for revisions.
func (p *Prompter) Draft(sc models.Scenario, prev Draft, minChars int) (Draft, error) {
	var (
		fields []huh.Field
		text   = prev.Text
		values = make(map[string]*string, len(sc.Fields))
	)

	if len(sc.Fields) == 0 {
		fields = append(fields, huh.NewText().
			Title(scenarioTitle(sc)).
			Description(sc.Prompt).
			Placeholder("Write your draft here").
			CharLimit(0).
			Value(&text).
			Validate(MinLength(minChars)))
	} else {
		for _, name := range sc.Fields {
			v := prev.Fields[name]
			values[name] = &v
			fields = append(fields, huh.NewInput().
				Title(FieldLabel(name)).
				Value(&v).
				Validate(Required(FieldLabel(name))))
		}
	}

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithInput(p.in).
		WithOutput(p.out).
		WithAccessible(p.accessible)
	if err := form.Run(); err != nil {
		return Draft{}, fmt.Errorf("draft form failed: %w", err)
	}

	d := Draft{Text: strings.TrimSpace(text)}
	if len(values) > 0 {
		d.Fields = make(map[string]string, len(values))
		for name, v := range values {
			d.Fields[name] = strings.TrimSpace(*v)
		}
	}
	return d, nil
}

// Next asks what to do after an analysis.
func (p *Prompter) Next(passed bool, last bool) (Choice, error) {
	choice := ChoiceRevise
	sel := huh.NewSelect[Choice]().
		Title("What next?").
		Options(ChoiceOptions(passed, last)...).
		Value(&choice)

	form := huh.NewForm(huh.NewGroup(sel)).
		WithInput(p.in).
		WithOutput(p.out).
		WithAccessible(p.accessible)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("choice form failed: %w", err)
	}
	return choice, nil
}

// ChoiceOptions lists the choices offered after an analysis, most likely
// first.
func ChoiceOptions(passed bool, last bool) []huh.Option[Choice] {
	next := "Next scenario"
	if last {
		next = "Finish"
	}
	if passed {
		return []huh.Option[Choice]{
			huh.NewOption(next, ChoiceNext),
			huh.NewOption("Revise draft", ChoiceRevise),
			huh.NewOption("Quit", ChoiceQuit),
		}
	}
	return []huh.Option[Choice]{
		huh.NewOption("Revise draft", ChoiceRevise),
		huh.NewOption(next+" anyway", ChoiceNext),
		huh.NewOption("Start over", ChoiceRestart),
		huh.NewOption("Quit", ChoiceQuit),
	}
}

// MinLength rejects drafts shorter than n runes after trimming.
func MinLength(n int) func(string) error {
	return func(s string) error {
		have := utf8.RuneCountInString(strings.TrimSpace(s))
		if have == 0 {
			return fmt.Errorf("draft is required")
		}
		if have < n {
			return fmt.Errorf("draft needs at least %d characters (have %d)", n, have)
		}
		return nil
	}
}

// Required rejects blank values.
func Required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(label))
		}
		return nil
	}
}

var titleCaser = cases.Title(language.English)

// FieldLabel turns a field name like "version_a" into "Version A".
func FieldLabel(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

func scenarioTitle(sc models.Scenario) string {
	if sc.Title != "" {
		return sc.Title
	}
	return "Your draft"
}

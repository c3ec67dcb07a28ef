// Package session drives a learner through an ordered list of practice
// scenarios: draft, analyze, advance, and finally report completion.
package session

import (
	"fmt"
	"maps"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lyra-ai/mentor/internal/criteria"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/lyra-ai/mentor/internal/scoring"
)

// Phase is the driver's position within the current scenario.
type Phase string

const (
	PhasePresenting Phase = "presenting"
	PhaseDrafting   Phase = "drafting"
	PhaseAnalyzed   Phase = "analyzed"
	PhaseComplete   Phase = "complete"
)

// DefaultMinChars is the trimmed draft length analysis needs when the
// scenario names no required fields.
const DefaultMinChars = 50

// draftExcerptRunes bounds the draft text kept in a saved result.
const draftExcerptRunes = 120

// State is the whole progression state. It is a value: Reduce never
// mutates the State it is given.
type State struct {
	ScenarioIndex int                 `json:"scenario_index"`
	Phase         Phase               `json:"phase"`
	Draft         string              `json:"draft,omitempty"`
	Selections    map[string]string   `json:"selections,omitempty"`
	Result        *models.ScoreResult `json:"result,omitempty"`

	Saved          []models.SavedResult `json:"saved,omitempty"`
	Elapsed        time.Duration        `json:"elapsed"`
	CompletionSent bool                 `json:"completion_sent"`
}

// Action is a user or clock input to the driver.
type Action interface {
	actionName() string
}

// Edit replaces the draft text.
type Edit struct{ Text string }

// Select sets a named selection. An empty value clears it.
type Select struct{ Field, Value string }

// Analyze scores the current draft.
type Analyze struct{}

// Advance acknowledges the result and moves on.
type Advance struct{}

// Tick adds wall-clock time to the session.
type Tick struct{ Delta time.Duration }

// Restart goes back to the first scenario with no saved results.
type Restart struct{}

func (Edit) actionName() string    { return "edit" }
func (Select) actionName() string  { return "select" }
func (Analyze) actionName() string { return "analyze" }
func (Advance) actionName() string { return "advance" }
func (Tick) actionName() string    { return "tick" }
func (Restart) actionName() string { return "restart" }

// CompletionFunc receives the session summary when the last scenario is
// acknowledged. Its outcome is not inspected.
type CompletionFunc func(models.CompletionSummary)

// Config configures a Driver.
type Config struct {
	SessionID string
	Scenarios []models.Scenario
	Scorer    *scoring.Scorer

	// MinChars applies to scenarios that set no min_chars of their own.
	MinChars int

	// OnComplete runs inside Reduce; under a Session it must not call back
	// into that Session.
	OnComplete CompletionFunc
}

// Driver owns the transition rules. It holds configuration only; all
// progress lives in State.
type Driver struct {
	sessionID  string
	scenarios  []models.Scenario
	scorer     *scoring.Scorer
	minChars   int
	onComplete CompletionFunc
}

// NewDriver validates cfg and returns a Driver.
func NewDriver(cfg Config) (*Driver, error) {
	if len(cfg.Scenarios) == 0 {
		return nil, fmt.Errorf("at least one scenario is required")
	}
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("a scorer is required")
	}
	d := &Driver{
		sessionID:  cfg.SessionID,
		scenarios:  cfg.Scenarios,
		scorer:     cfg.Scorer,
		minChars:   cfg.MinChars,
		onComplete: cfg.OnComplete,
	}
	if d.minChars <= 0 {
		d.minChars = DefaultMinChars
	}
	return d, nil
}

// Initial is the state at first entry to the first scenario.
func (d *Driver) Initial() State {
	return State{Phase: PhasePresenting}
}

func (d *Driver) Scenarios() []models.Scenario { return d.scenarios }

// Scenario returns the scenario the state points at.
func (d *Driver) Scenario(s State) models.Scenario {
	return d.scenarios[s.ScenarioIndex]
}

// CanAnalyze reports whether the draft is ready for scoring. Scenarios with
// required fields need every field filled; others need MinChars of text.
func (d *Driver) CanAnalyze(s State) bool {
	if s.Phase != PhaseDrafting {
		return false
	}
	sc := d.Scenario(s)
	if len(sc.Fields) > 0 {
		for _, f := range sc.Fields {
			if strings.TrimSpace(s.Selections[f]) == "" {
				return false
			}
		}
		return true
	}
	return len(strings.TrimSpace(s.Draft)) >= d.minCharsFor(sc)
}

func (d *Driver) minCharsFor(sc models.Scenario) int {
	if sc.Thresholds.MinChars > 0 {
		return sc.Thresholds.MinChars
	}
	return d.minChars
}

// Reduce applies a to s and returns the next state. Invalid transitions
// return s unchanged. The only side effect is the completion callback,
// which fires on the single transition into PhaseComplete.
func (d *Driver) Reduce(s State, a Action) State {
	if s.Phase == PhaseComplete {
		if _, ok := a.(Restart); ok {
			return d.restart(s)
		}
		return s
	}

	switch a := a.(type) {
	case Edit:
		s.Draft = a.Text
		s.Result = nil
		s.Phase = PhaseDrafting
	case Select:
		next := maps.Clone(s.Selections)
		if next == nil {
			next = map[string]string{}
		}
		if a.Value == "" {
			delete(next, a.Field)
		} else {
			next[a.Field] = a.Value
		}
		if len(next) == 0 {
			next = nil
		}
		s.Selections = next
		s.Result = nil
		s.Phase = PhaseDrafting
	case Analyze:
		if !d.CanAnalyze(s) {
			return s
		}
		return d.analyze(s)
	case Advance:
		if s.Phase != PhaseAnalyzed {
			return s
		}
		if s.ScenarioIndex < len(d.scenarios)-1 {
			return State{
				ScenarioIndex:  s.ScenarioIndex + 1,
				Phase:          PhasePresenting,
				Saved:          s.Saved,
				Elapsed:        s.Elapsed,
				CompletionSent: s.CompletionSent,
			}
		}
		return d.complete(s)
	case Tick:
		if a.Delta > 0 {
			s.Elapsed += a.Delta
		}
	case Restart:
		return d.restart(s)
	}
	return s
}

func (d *Driver) analyze(s State) State {
	sc := d.Scenario(s)
	scorer := d.scorer.WithThreshold(sc.Thresholds.Pass)

	in := &criteria.Input{Text: s.Draft, Fields: maps.Clone(s.Selections)}
	s.Result = scorer.Score(in)
	s.Phase = PhaseAnalyzed

	if s.Result.Passed {
		s.Saved = upsertSaved(s.Saved, models.SavedResult{
			ScenarioID:    sc.ID,
			ScenarioIndex: s.ScenarioIndex,
			Context:       sc.Context,
			Score:         s.Result.OverallScore,
			KeyInputs:     keyInputs(s),
		})
	}
	return s
}

// upsertSaved keeps one entry per scenario; a later pass replaces the
// earlier one. The input slice is never written to.
func upsertSaved(saved []models.SavedResult, r models.SavedResult) []models.SavedResult {
	out := make([]models.SavedResult, 0, len(saved)+1)
	replaced := false
	for _, prev := range saved {
		if prev.ScenarioIndex == r.ScenarioIndex {
			out = append(out, r)
			replaced = true
			continue
		}
		out = append(out, prev)
	}
	if !replaced {
		out = append(out, r)
	}
	return out
}

func keyInputs(s State) map[string]string {
	ki := maps.Clone(s.Selections)
	if draft := strings.TrimSpace(s.Draft); draft != "" {
		if ki == nil {
			ki = map[string]string{}
		}
		ki["draft"] = excerpt(draft, draftExcerptRunes)
	}
	return ki
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}

func (d *Driver) complete(s State) State {
	s.Phase = PhaseComplete
	if s.CompletionSent {
		return s
	}
	s.CompletionSent = true
	if d.onComplete != nil {
		d.onComplete(d.Summary(s))
	}
	return s
}

func (d *Driver) restart(s State) State {
	next := d.Initial()
	next.CompletionSent = s.CompletionSent
	return next
}

// Summary reports progress so far.
func (d *Driver) Summary(s State) models.CompletionSummary {
	sum := models.CompletionSummary{
		SessionID:          d.sessionID,
		TimeSpent:          s.Elapsed,
		ScenariosCompleted: len(s.Saved),
		TotalScenarios:     len(d.scenarios),
		Saved:              s.Saved,
	}
	if len(s.Saved) > 0 {
		total := 0
		for _, r := range s.Saved {
			total += r.Score
		}
		sum.AverageScore = float64(total) / float64(len(s.Saved))
	}
	return sum
}

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lyra-ai/mentor/internal/models"
)

// TickInterval is how often a started Session adds elapsed time.
const TickInterval = time.Second

// Session serialises actions against one Driver and records transitions
// to a Logger. It is safe for concurrent use.
type Session struct {
	id     string
	rubric string
	driver *Driver
	logger Logger

	mu    sync.Mutex
	state State

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// New starts a session at the driver's initial state. A nil logger
// discards events.
func New(id, rubric string, d *Driver, logger Logger) *Session {
	if logger == nil {
		logger = NopLogger{}
	}
	if id == "" {
		id = NewSessionID()
	}
	s := &Session{
		id:     id,
		rubric: rubric,
		driver: d,
		logger: logger,
		state:  d.Initial(),
	}
	s.log(EventSessionStart, SessionStartData(rubric, len(d.Scenarios())))
	s.logScenario(s.state)
	return s
}

func (s *Session) ID() string      { return s.id }
func (s *Session) Driver() *Driver { return s.driver }

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Scenario returns the scenario currently in progress.
func (s *Session) Scenario() models.Scenario {
	return s.driver.Scenario(s.State())
}

// Dispatch applies an action and returns the resulting state. Dispatches
// are serialised, so at most one analysis runs at a time.
func (s *Session) Dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state
	next := s.driver.Reduce(prev, a)
	s.state = next
	s.mu.Unlock()

	s.record(prev, next, a)
	return next
}

func (s *Session) record(prev, next State, a Action) {
	if _, ok := a.(Tick); ok {
		return
	}
	slog.Debug("session transition", "session", s.id, "action", a.actionName(),
		"from", prev.Phase, "to", next.Phase, "scenario", next.ScenarioIndex)

	switch {
	case isRestart(a):
		s.log(EventSessionRestart, nil)
		s.logScenario(next)
	case next.Phase == PhaseAnalyzed && prev.Phase != PhaseAnalyzed:
		r := next.Result
		s.log(EventAnalysis, AnalysisData(s.driver.Scenario(next).ID,
			r.OverallScore, r.Threshold, r.Passed, r.Count(models.CategoryCritical)))
	case next.ScenarioIndex != prev.ScenarioIndex:
		s.logScenario(next)
	case next.Phase == PhaseComplete && prev.Phase != PhaseComplete:
		sum := s.driver.Summary(next)
		s.log(EventSessionComplete, SessionCompleteData(sum.ScenariosCompleted, sum.TotalScenarios, sum.AverageScore, sum.TimeSpent))
	}
}

func isRestart(a Action) bool {
	_, ok := a.(Restart)
	return ok
}

func (s *Session) logScenario(st State) {
	sc := s.driver.Scenario(st)
	s.log(EventScenarioStart, ScenarioStartData(st.ScenarioIndex, sc.ID, sc.Title))
}

func (s *Session) log(t EventType, data map[string]any) {
	ev := NewEvent(t, data)
	ev.SessionID = s.id
	if err := s.logger.Log(ev); err != nil {
		slog.Warn("failed to write session event", "session", s.id, "type", t, "error", err)
	}
}

// Start runs the elapsed-time ticker until ctx is done or Close is called.
func (s *Session) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Dispatch(Tick{Delta: TickInterval})
			}
		}
	}()
}

// Close stops the ticker and closes the logger.
func (s *Session) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return s.logger.Close()
}

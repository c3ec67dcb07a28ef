package session

import "time"

// EventType identifies the kind of session event.
type EventType string

const (
	EventSessionStart    EventType = "session_start"
	EventScenarioStart   EventType = "scenario_start"
	EventAnalysis        EventType = "analysis"
	EventSessionComplete EventType = "session_complete"
	EventSessionRestart  EventType = "session_restart"
	EventError           EventType = "error"
)

// Event is a single timestamped entry in a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

func SessionStartData(rubric string, scenarioCount int) map[string]any {
	return map[string]any{
		"rubric":         rubric,
		"scenario_count": scenarioCount,
	}
}

func ScenarioStartData(index int, id, title string) map[string]any {
	return map[string]any{
		"index": index,
		"id":    id,
		"title": title,
	}
}

// AnalysisData summarises one scored draft.
func AnalysisData(scenarioID string, score, threshold int, passed bool, critical int) map[string]any {
	return map[string]any{
		"scenario_id": scenarioID,
		"score":       score,
		"threshold":   threshold,
		"passed":      passed,
		"critical":    critical,
	}
}

func SessionCompleteData(completed, total int, average float64, elapsed time.Duration) map[string]any {
	return map[string]any{
		"completed":     completed,
		"total":         total,
		"average_score": average,
		"elapsed_ms":    elapsed.Milliseconds(),
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{
		"message": message,
	}
	for k, v := range details {
		d[k] = v
	}
	return d
}

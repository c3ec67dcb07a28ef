package models

import "time"

// Scenario is one unit of practice: a context to write against, optional
// constraints, and per-scenario overrides of the rubric thresholds.
// Scenarios are reference data and are never mutated during a session.
type Scenario struct {
	ID          string             `yaml:"id" json:"id"`
	Title       string             `yaml:"title" json:"title"`
	Context     string             `yaml:"context" json:"context"`
	Prompt      string             `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Constraints []string           `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Thresholds  ScenarioThresholds `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	// Fields lists the named selections the exercise requires before analysis,
	// e.g. "version_a" and "hypothesis" for an A/B design.
	Fields   []string          `yaml:"fields,omitempty" json:"fields,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// ScenarioThresholds overrides rubric defaults. A nil Pass and a zero
// MinChars inherit.
type ScenarioThresholds struct {
	Pass     *int `yaml:"pass,omitempty" json:"pass,omitempty"`
	MinChars int  `yaml:"min_chars,omitempty" json:"min_chars,omitempty"`
}

// SavedResult is the compact, display-only summary kept for a passed scenario.
type SavedResult struct {
	ScenarioID    string            `json:"scenario_id"`
	ScenarioIndex int               `json:"scenario_index"`
	Context       string            `json:"context"`
	Score         int               `json:"score"`
	KeyInputs     map[string]string `json:"key_inputs,omitempty"`
}

// CompletionSummary is handed to the completion callback once per session.
type CompletionSummary struct {
	SessionID          string        `json:"session_id,omitempty"`
	TimeSpent          time.Duration `json:"time_spent"`
	ScenariosCompleted int           `json:"scenarios_completed"`
	TotalScenarios     int           `json:"total_scenarios"`
	AverageScore       float64       `json:"average_score"`
	Saved              []SavedResult `json:"saved"`
}

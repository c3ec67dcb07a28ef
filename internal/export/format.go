package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lyra-ai/mentor/internal/models"
	"github.com/segmentio/encoding/json"
)

// FormatJSON renders v as indented JSON.
func FormatJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return data, nil
}

// FormatText renders a scored draft as a plain-text report suitable for
// pasting into email or a document.
func FormatText(title, draft string, result *models.ScoreResult) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(title + "\n")
		sb.WriteString(strings.Repeat("=", len([]rune(title))) + "\n\n")
	}
	if draft = strings.TrimSpace(draft); draft != "" {
		sb.WriteString(draft + "\n\n")
	}
	if result == nil {
		return strings.TrimRight(sb.String(), "\n") + "\n"
	}

	status := "needs work"
	if result.Passed {
		status = "passed"
	}
	fmt.Fprintf(&sb, "Score: %d/100 (target %d, %s)\n", result.OverallScore, result.Threshold, status)
	for _, c := range result.Criteria {
		fmt.Fprintf(&sb, "  %-24s %3d  %s\n", c.Name, c.Score, c.Category)
	}
	if len(result.Recommendations) > 0 {
		sb.WriteString("\nNext steps:\n")
		for _, r := range result.Recommendations {
			fmt.Fprintf(&sb, "  - %s\n", r)
		}
	}
	return sb.String()
}

// SummaryText renders a finished practice session.
func SummaryText(s models.CompletionSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Completed %d of %d scenarios, average score %.1f, time %s\n",
		s.ScenariosCompleted, s.TotalScenarios, s.AverageScore, s.TimeSpent.Round(time.Second))
	for _, r := range s.Saved {
		fmt.Fprintf(&sb, "  %d. %s  %d\n", r.ScenarioIndex+1, r.Context, r.Score)
	}
	return sb.String()
}

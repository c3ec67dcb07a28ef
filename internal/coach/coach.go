// Package coach turns a score into short mentor feedback.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lyra-ai/mentor/internal/generation"
	"github.com/lyra-ai/mentor/internal/models"
	"github.com/lyra-ai/mentor/internal/notify"
)

const mentorContext = "You are Lyra, a warm and practical writing mentor for nonprofit professionals. " +
	"Reply in plain text with at most three short, specific suggestions."

// maxFallbackTips caps how many recommendations the canned advice lists.
const maxFallbackTips = 3

// Coach writes mentor narrative for a scored draft.
type Coach struct {
	gen      generation.Generator
	notifier notify.Notifier
}

// New creates a Coach. A nil generator always uses the canned advice; a nil
// notifier drops toasts.
func New(gen generation.Generator, notifier notify.Notifier) *Coach {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Coach{gen: gen, notifier: notifier}
}

// Advise returns generated feedback for result, or FallbackAdvice when
// generation fails. A real failure (not simply an unconfigured generator)
// is also toast-notified.
func (c *Coach) Advise(ctx context.Context, sc models.Scenario, result *models.ScoreResult) generation.Result {
	req := &generation.Request{
		Prompt:  Prompt(sc, result),
		Context: mentorContext,
	}

	res := generation.GenerateOr(ctx, c.gen, req, FallbackAdvice(result))
	if res.Fallback && !errors.Is(res.Err, generation.ErrNoGenerator) {
		c.notifier.Notify(notify.LevelWarning, "Mentor feedback is unavailable right now; showing built-in tips.")
	}
	return res
}

// Prompt describes the scenario and score for the generator.
func Prompt(sc models.Scenario, result *models.ScoreResult) string {
	var sb strings.Builder
	title := sc.Title
	if title == "" {
		title = sc.ID
	}
	fmt.Fprintf(&sb, "Scenario: %s\n", title)
	fmt.Fprintf(&sb, "Context: %s\n", sc.Context)
	if sc.Prompt != "" {
		fmt.Fprintf(&sb, "Task: %s\n", sc.Prompt)
	}

	if result != nil {
		fmt.Fprintf(&sb, "Score: %d/100 (target %d)\n", result.OverallScore, result.Threshold)
		for _, cat := range []models.Category{models.CategoryStrength, models.CategoryConcern, models.CategoryCritical} {
			items := result.Items(cat)
			if len(items) == 0 {
				continue
			}
			names := make([]string, len(items))
			for i, it := range items {
				names[i] = it.Title
			}
			fmt.Fprintf(&sb, "%s: %s\n", categoryLabel(cat), strings.Join(names, "; "))
		}
		if len(result.Recommendations) > 0 {
			sb.WriteString("Recommendations:\n")
			for _, r := range result.Recommendations {
				fmt.Fprintf(&sb, "- %s\n", r)
			}
		}
	}

	sb.WriteString("\nWrite brief mentor feedback: name one thing to keep and the single most important change.")
	return sb.String()
}

func categoryLabel(c models.Category) string {
	switch c {
	case models.CategoryStrength:
		return "Strengths"
	case models.CategoryConcern:
		return "Concerns"
	default:
		return "Critical"
	}
}

// FallbackAdvice is the canned feedback built from the score alone.
func FallbackAdvice(result *models.ScoreResult) string {
	if result == nil {
		return "Write a draft and analyze it to get feedback."
	}
	if result.Passed && len(result.Recommendations) == 0 && result.Count(models.CategoryConcern) == 0 {
		return fmt.Sprintf("Great work! Your score of %d meets the %d target.", result.OverallScore, result.Threshold)
	}

	var sb strings.Builder
	if result.Passed {
		fmt.Fprintf(&sb, "Nice work, %d meets the %d target. To push further:", result.OverallScore, result.Threshold)
	} else {
		fmt.Fprintf(&sb, "Your score is %d (target %d). Focus on:", result.OverallScore, result.Threshold)
	}

	tips := result.Recommendations
	if len(tips) == 0 {
		for _, it := range result.Items(models.CategoryConcern) {
			tips = append(tips, it.Suggestion)
		}
	}
	if len(tips) > maxFallbackTips {
		tips = tips[:maxFallbackTips]
	}
	for _, t := range tips {
		fmt.Fprintf(&sb, "\n- %s", t)
	}
	return sb.String()
}

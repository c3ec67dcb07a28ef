package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/lyra-ai/mentor/internal/models"
	"github.com/mattn/go-runewidth"
)

const nameColumnWidth = 28

var categoryIcons = map[models.Category]string{
	models.CategoryStrength: "✅",
	models.CategoryConcern:  "⚠️",
	models.CategoryCritical: "❌",
}

// renderResult prints a score breakdown for the terminal.
func renderResult(w io.Writer, result *models.ScoreResult) {
	status := "✅ Passed"
	if !result.Passed {
		status = "❌ Needs work"
	}
	fmt.Fprintf(w, "\nScore: %d/100 (target %d)  %s\n\n", result.OverallScore, result.Threshold, status) //nolint:errcheck

	for _, c := range result.Criteria {
		bar := scoreBar(c.Score, 20)
		fmt.Fprintf(w, "  %s %s %3d  %s\n", //nolint:errcheck
			categoryIcon(c.Category), padRight(truncateName(c.Name, nameColumnWidth), nameColumnWidth), c.Score, bar)
	}

	var notes []models.FeedbackItem
	for _, f := range result.FeedbackItems {
		if f.Category != models.CategoryStrength {
			notes = append(notes, f)
		}
	}
	if len(notes) > 0 {
		fmt.Fprintf(w, "\nFeedback:\n") //nolint:errcheck
		for _, f := range notes {
			fmt.Fprintf(w, "  %s %s: %s\n", categoryIcon(f.Category), f.Title, f.Description) //nolint:errcheck
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Fprintf(w, "\nRecommendations:\n") //nolint:errcheck
		for _, r := range result.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r) //nolint:errcheck
		}
	}
	fmt.Fprintln(w) //nolint:errcheck
}

func categoryIcon(c models.Category) string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return "•"
}

// scoreBar draws score out of 100 as a bar of the given width.
func scoreBar(score, width int) string {
	filled := score * width / 100
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// truncateName shortens a name to maxWidth display columns, ending in "…"
// when cut.
func truncateName(name string, maxWidth int) string {
	if runewidth.StringWidth(name) <= maxWidth {
		return name
	}
	return runewidth.Truncate(name, maxWidth, "…")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

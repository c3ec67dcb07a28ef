package models

import (
	"fmt"
	"strings"
)

// Category is the feedback band a criterion score falls into.
type Category string

const (
	CategoryStrength Category = "strength"
	CategoryConcern  Category = "concern"
	CategoryCritical Category = "critical"
)

var categoryRank = map[Category]int{
	CategoryStrength: 0,
	CategoryConcern:  1,
	CategoryCritical: 2,
}

func (c Category) String() string {
	return string(c)
}

// Severity orders categories from strength (0) to critical (2).
// Unknown categories report -1.
func (c Category) Severity() int {
	if r, ok := categoryRank[c]; ok {
		return r
	}
	return -1
}

// ParseCategory converts a flag or file value to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strength":
		return CategoryStrength, nil
	case "concern":
		return CategoryConcern, nil
	case "critical":
		return CategoryCritical, nil
	default:
		return "", fmt.Errorf("invalid category %q: must be strength, concern, or critical", s)
	}
}

// FeedbackItem is the classified, human-readable outcome for one criterion.
type FeedbackItem struct {
	CriterionID string   `json:"criterion_id"`
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// CriterionScore records a single criterion's sub-score alongside the weight
// it contributed with.
type CriterionScore struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	Weight   float64  `json:"weight"`
	Category Category `json:"category"`
}

// ScoreResult is produced fresh by every analysis and never mutated afterwards.
type ScoreResult struct {
	Rubric       string           `json:"rubric,omitempty"`
	OverallScore int              `json:"overall_score"`
	Threshold    int              `json:"threshold"`
	PerCriterion map[string]int   `json:"per_criterion"`
	Criteria     []CriterionScore `json:"criteria"`
	// FeedbackItems follows criterion declaration order.
	FeedbackItems   []FeedbackItem `json:"feedback"`
	Recommendations []string       `json:"recommendations"`
	Passed          bool           `json:"passed"`
}

// Count returns how many feedback items landed in the given category.
func (r *ScoreResult) Count(c Category) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, item := range r.FeedbackItems {
		if item.Category == c {
			n++
		}
	}
	return n
}

// HasCritical reports whether any criterion fell into the critical band.
func (r *ScoreResult) HasCritical() bool {
	return r.Count(CategoryCritical) > 0
}

// Items returns the feedback items in the given category, preserving order.
func (r *ScoreResult) Items(c Category) []FeedbackItem {
	if r == nil {
		return nil
	}
	var items []FeedbackItem
	for _, item := range r.FeedbackItems {
		if item.Category == c {
			items = append(items, item)
		}
	}
	return items
}

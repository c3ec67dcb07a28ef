package scoring

import (
	"fmt"
	"strings"

	"github.com/lyra-ai/mentor/internal/criteria"
	"github.com/lyra-ai/mentor/internal/models"
)

// Bands holds the lower bounds of the strength and concern bands. Scores
// below Concern are critical.
type Bands struct {
	Strength int `yaml:"strength" json:"strength"`
	Concern  int `yaml:"concern" json:"concern"`
}

// DefaultBands are the cutoffs most exercises use.
var DefaultBands = Bands{Strength: 80, Concern: 60}

// Validate checks the band ordering.
func (b Bands) Validate() error {
	if b.Concern < criteria.MinScore || b.Strength > criteria.MaxScore {
		return fmt.Errorf("bands must lie within [%d, %d], got concern=%d strength=%d",
			criteria.MinScore, criteria.MaxScore, b.Concern, b.Strength)
	}
	if b.Concern > b.Strength {
		return fmt.Errorf("concern band (%d) must not exceed strength band (%d)", b.Concern, b.Strength)
	}
	return nil
}

// Category returns the band a score falls into.
func (b Bands) Category(score int) models.Category {
	switch {
	case score >= b.Strength:
		return models.CategoryStrength
	case score >= b.Concern:
		return models.CategoryConcern
	default:
		return models.CategoryCritical
	}
}

// Classify turns one criterion evaluation into a feedback item. Concern and
// critical items carry an improvement suggestion.
func Classify(b Bands, c criteria.Criterion, ev criteria.Evaluation) models.FeedbackItem {
	item := models.FeedbackItem{
		CriterionID: c.ID(),
		Category:    b.Category(ev.Score),
		Description: ev.Feedback,
	}

	desc := strings.ToLower(c.Description())
	switch item.Category {
	case models.CategoryStrength:
		item.Title = "Strong " + c.Name()
	case models.CategoryConcern:
		item.Title = "Moderate " + c.Name()
		item.Suggestion = "Consider strengthening: " + desc
	default:
		item.Title = "Weak " + c.Name()
		item.Suggestion = "Critical need: " + desc
	}
	return item
}

// Recommendation is the aggregate line recorded for a critical criterion.
func Recommendation(c criteria.Criterion) string {
	return fmt.Sprintf("Improve %s: %s", strings.ToLower(c.Name()), strings.ToLower(c.Description()))
}

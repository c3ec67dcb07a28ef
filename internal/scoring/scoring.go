// Package scoring aggregates weighted criterion sub-scores into a composite
// quality score and classifies each criterion into a feedback band.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/lyra-ai/mentor/internal/criteria"
	"github.com/lyra-ai/mentor/internal/models"
)

const (
	DefaultThreshold = 70

	// DefaultWeightTolerance is how far a weight sum may drift from 1.0
	// before CheckWeights complains.
	DefaultWeightTolerance = 0.01
)

// Hint adds a targeted recommendation when a criterion scores below a cutoff.
type Hint struct {
	Criterion string `yaml:"criterion" json:"criterion"`
	Below     int    `yaml:"below" json:"below"`
	Message   string `yaml:"message" json:"message"`
}

// Options configures a Scorer. A nil Threshold falls back to
// DefaultThreshold and zero Bands to DefaultBands; a threshold of 0 is valid
// and passes every draft without a critical criterion.
type Options struct {
	Name      string
	Threshold *int
	Bands     Bands
	Hints     []Hint
}

// Scorer is a weighted-criteria scorer. It holds no mutable state, so one
// instance may be shared freely.
type Scorer struct {
	name      string
	threshold int
	bands     Bands
	hints     []Hint
	criteria  []criteria.Criterion
}

// NewScorer builds a Scorer over the given criteria, evaluated in order.
func NewScorer(opts Options, cs ...criteria.Criterion) (*Scorer, error) {
	s := &Scorer{
		name:      opts.Name,
		threshold: DefaultThreshold,
		bands:     opts.Bands,
		hints:     opts.Hints,
		criteria:  cs,
	}
	if opts.Threshold != nil {
		s.threshold = *opts.Threshold
	}
	if s.bands == (Bands{}) {
		s.bands = DefaultBands
	}

	if s.threshold < criteria.MinScore || s.threshold > criteria.MaxScore {
		return nil, fmt.Errorf("threshold must lie within [%d, %d], got %d", criteria.MinScore, criteria.MaxScore, s.threshold)
	}
	if err := s.bands.Validate(); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, c := range cs {
		if seen[c.ID()] {
			return nil, fmt.Errorf("duplicate criterion id %q", c.ID())
		}
		seen[c.ID()] = true
	}
	for _, h := range s.hints {
		if !seen[h.Criterion] {
			return nil, fmt.Errorf("hint references unknown criterion %q", h.Criterion)
		}
	}

	return s, nil
}

func (s *Scorer) Name() string                   { return s.name }
func (s *Scorer) Threshold() int                 { return s.threshold }
func (s *Scorer) Bands() Bands                   { return s.bands }
func (s *Scorer) Criteria() []criteria.Criterion { return s.criteria }

// WithThreshold returns a copy of s gated at a different threshold, clamped
// to the score range. A nil threshold keeps the current one.
func (s *Scorer) WithThreshold(threshold *int) *Scorer {
	cp := *s
	if threshold != nil {
		cp.threshold = min(max(*threshold, criteria.MinScore), criteria.MaxScore)
	}
	return &cp
}

// ScoreText scores a plain draft with no named fields.
func (s *Scorer) ScoreText(text string) *models.ScoreResult {
	return s.Score(&criteria.Input{Text: text})
}

// Score evaluates every criterion against the input and aggregates the
// results. The overall score is the weighted sum rounded half-up once, at
// the end; an empty criteria list scores 0. The result passes only when the
// overall score reaches the threshold and no criterion is critical.
func (s *Scorer) Score(in *criteria.Input) *models.ScoreResult {
	result := &models.ScoreResult{
		Rubric:          s.name,
		Threshold:       s.threshold,
		PerCriterion:    make(map[string]int, len(s.criteria)),
		Criteria:        make([]models.CriterionScore, 0, len(s.criteria)),
		FeedbackItems:   make([]models.FeedbackItem, 0, len(s.criteria)),
		Recommendations: []string{},
	}

	var weighted float64
	for _, c := range s.criteria {
		ev := c.Evaluate(in)
		item := Classify(s.bands, c, ev)

		result.PerCriterion[c.ID()] = ev.Score
		result.Criteria = append(result.Criteria, models.CriterionScore{
			ID:       c.ID(),
			Name:     c.Name(),
			Score:    ev.Score,
			Weight:   c.Weight(),
			Category: item.Category,
		})
		result.FeedbackItems = append(result.FeedbackItems, item)
		if item.Category == models.CategoryCritical {
			result.Recommendations = append(result.Recommendations, Recommendation(c))
		}

		weighted += float64(ev.Score) * c.Weight()
	}

	for _, h := range s.hints {
		if result.PerCriterion[h.Criterion] < h.Below {
			result.Recommendations = append(result.Recommendations, h.Message)
		}
	}

	result.OverallScore = criteria.Clamp(roundHalfUp(weighted))
	result.Passed = result.OverallScore >= s.threshold && !result.HasCritical()

	return result
}

// roundHalfUp absorbs float noise from weight products (0.2 × 70 is not
// exactly 14) before rounding.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5 + 1e-9)
}

// CheckWeights reports whether the criteria weights sum to 1.0 within
// tolerance.
func CheckWeights(cs []criteria.Criterion, tolerance float64) error {
	if len(cs) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultWeightTolerance
	}

	var sum float64
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		sum += c.Weight()
		parts = append(parts, fmt.Sprintf("%s=%g", c.ID(), c.Weight()))
	}
	if math.Abs(sum-1) > tolerance {
		return fmt.Errorf("criterion weights sum to %.3f, not 1.0 (%s)", sum, strings.Join(parts, ", "))
	}
	return nil
}

// Package criteria evaluates named, independently scorable dimensions of
// text quality. Every evaluator is deterministic, never errors for any input,
// and reports a score clamped to [0, 100].
package criteria

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

type Kind string

const (
	KindHeuristic         Kind = "heuristic"
	KindKeyword           Kind = "keyword"
	KindRegex             Kind = "regex"
	KindFieldLength       Kind = "field_length"
	KindFieldContains     Kind = "field_contains"
	KindDistinctFields    Kind = "distinct_fields"
	KindNumericRange      Kind = "numeric_range"
	KindMarkdownStructure Kind = "markdown_structure"
)

// Kinds lists every supported kind in documentation order.
func Kinds() []Kind {
	return []Kind{
		KindHeuristic,
		KindKeyword,
		KindRegex,
		KindFieldLength,
		KindFieldContains,
		KindDistinctFields,
		KindNumericRange,
		KindMarkdownStructure,
	}
}

const (
	MinScore = 0
	MaxScore = 100

	// DefaultPassAt is the sub-score above which the pass feedback is used.
	DefaultPassAt = 70
)

// Input is what a criterion evaluates: the free-form draft plus any named
// selections the exercise collects alongside it.
type Input struct {
	Text   string
	Fields map[string]string
}

// Field returns a named selection, or "" when absent.
func (in *Input) Field(name string) string {
	if in == nil || in.Fields == nil {
		return ""
	}
	return in.Fields[name]
}

// Evaluation is one criterion's verdict on an input.
type Evaluation struct {
	Score    int
	Feedback string
}

// Criterion is the interface for all evaluators.
type Criterion interface {
	ID() string
	Name() string
	Description() string
	Weight() float64
	Kind() Kind

	// Evaluate scores the input. It must not panic or error for any input.
	Evaluate(in *Input) Evaluation
}

// Feedback holds the two canned messages a criterion picks between.
type Feedback struct {
	Pass   string `yaml:"pass,omitempty" json:"pass,omitempty"`
	Fail   string `yaml:"fail,omitempty" json:"fail,omitempty"`
	PassAt *int   `yaml:"pass_at,omitempty" json:"pass_at,omitempty"`
}

// Spec is the declarative form of a criterion as it appears in rubric files.
type Spec struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Weight      float64        `yaml:"weight" json:"weight"`
	Kind        Kind           `yaml:"kind" json:"kind"`
	Params      map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	Feedback    Feedback       `yaml:"feedback,omitempty" json:"feedback,omitempty"`
}

// base carries the identity fields shared by every kind.
type base struct {
	id          string
	name        string
	description string
	weight      float64
	feedback    Feedback
}

func (b *base) ID() string          { return b.id }
func (b *base) Name() string        { return b.name }
func (b *base) Description() string { return b.description }
func (b *base) Weight() float64     { return b.weight }

// verdict wraps a raw score with the clamped value and matching feedback.
func (b *base) verdict(raw float64) Evaluation {
	score := Clamp(raw)

	passAt := DefaultPassAt
	if b.feedback.PassAt != nil {
		passAt = *b.feedback.PassAt
	}

	fb := b.feedback.Fail
	if score > passAt {
		fb = b.feedback.Pass
	}
	return Evaluation{Score: score, Feedback: fb}
}

// Create builds a criterion from its declarative spec. Errors describe
// configuration problems only.
func Create(spec Spec) (Criterion, error) {
	if strings.TrimSpace(spec.ID) == "" {
		return nil, fmt.Errorf("criterion id is required")
	}
	if spec.Weight < 0 || spec.Weight > 1 {
		return nil, fmt.Errorf("criterion %q: weight must be within [0, 1], got %g", spec.ID, spec.Weight)
	}

	b := base{
		id:          spec.ID,
		name:        spec.Name,
		description: spec.Description,
		weight:      spec.Weight,
		feedback:    spec.Feedback,
	}
	if b.name == "" {
		b.name = spec.ID
	}

	switch spec.Kind {
	case KindHeuristic:
		var v HeuristicArgs
		if err := decode(spec, &v); err != nil {
			return nil, err
		}
		return newHeuristic(b, v)
	case KindKeyword:
		var v KeywordArgs
		if err := decode(spec, &v); err != nil {
			return nil, err
		}
		return newKeyword(b, v), nil
	case KindRegex:
		var v RegexArgs
		if err := decode(spec, &v); err != nil {
			return nil, err
		}
		return newRegex(b, v)
	case KindFieldLength:
		var v FieldLengthArgs
		if err := decode(spec, &v); err != nil {
			return nil, err
		}
		return newFieldLength(b, v)
	case KindFieldContains:
		var v FieldContainsArgs
		if err := decode(spec, &v); err != nil {
			return nil, err
		}
		return newFieldContains(b, v)
	case KindDistinctFields:
		var v DistinctFieldsArgs
		if err := decode(spec, &v); err != nil {
			return nil, err
		}
		return newDistinctFields(b, v)
	case KindNumericRange:
		var v NumericRangeArgs
		if err := decode(spec, &v); err != nil {
			return nil, err
		}
		return newNumericRange(b, v)
	case KindMarkdownStructure:
		var v MarkdownStructureArgs
		if err := decode(spec, &v); err != nil {
			return nil, err
		}
		return newMarkdownStructure(b, v), nil
	default:
		return nil, fmt.Errorf("criterion %q: '%s' is not a valid criterion kind", spec.ID, spec.Kind)
	}
}

func decode(spec Spec, out any) error {
	if err := mapstructure.Decode(spec.Params, out); err != nil {
		return fmt.Errorf("criterion %q: decoding %s params: %w", spec.ID, spec.Kind, err)
	}
	return nil
}

// Clamp rounds half-up and bounds a raw score to [MinScore, MaxScore].
// NaN and -Inf floor to MinScore; +Inf caps at MaxScore.
func Clamp(raw float64) int {
	if math.IsNaN(raw) || raw <= MinScore {
		return MinScore
	}
	if raw >= MaxScore {
		return MaxScore
	}
	return int(math.Floor(raw + 0.5))
}
